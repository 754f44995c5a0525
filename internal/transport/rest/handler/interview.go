package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mockinterview/internal/model"
	"mockinterview/internal/service"
	"mockinterview/internal/transport/rest/middleware"
)

const multipartMemory = 8 << 20

// InterviewHandler handles interview endpoints
type InterviewHandler struct {
	interviewSvc  *service.InterviewService
	maxAudioBytes int64
	logger        *zap.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService, maxAudioBytes int64, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviewSvc:  interviewSvc,
		maxAudioBytes: maxAudioBytes,
		logger:        logger,
	}
}

// submitAnswerBody is the JSON form of an answer; audio is base64 encoded
type submitAnswerBody struct {
	model.SubmitAnswerRequest
	AudioBase64 string `json:"audio"`
}

// Start handles POST /v1/interviews
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.interviewSvc.StartSession(r.Context(), middleware.GetUserID(r.Context()), model.ParseMode(req.Mode))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /v1/interviews
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.interviewSvc.ListSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /v1/interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.interviewSvc.GetSession(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// NextQuestion handles GET /v1/interviews/{id}/question
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	next, err := h.interviewSvc.NextQuestion(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, next)
}

// SubmitAnswer handles POST /v1/interviews/{id}/answers
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+multipartMemory)

	req, err := h.decodeAnswer(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.SessionID = mux.Vars(r)["id"]

	resp, err := h.interviewSvc.SubmitAnswer(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /v1/interviews/{id}/stats
func (h *InterviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.interviewSvc.GetStats(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Delete handles DELETE /v1/interviews/{id}
func (h *InterviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.interviewSvc.DeleteSession(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeAnswer reads either a JSON body or a multipart form with an "audio" file
func (h *InterviewHandler) decodeAnswer(r *http.Request) (*model.SubmitAnswerRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, err
		}
		req := &model.SubmitAnswerRequest{
			Question:  r.FormValue("current_question"),
			Response:  r.FormValue("response"),
			InputType: model.InputType(r.FormValue("inputType")),
		}
		file, _, err := r.FormFile("audio")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return nil, err
		default:
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, h.maxAudioBytes+1))
			if err != nil {
				return nil, err
			}
			if int64(len(data)) > h.maxAudioBytes {
				return nil, &http.MaxBytesError{Limit: h.maxAudioBytes}
			}
			req.Audio = data
			if req.InputType == "" {
				req.InputType = model.InputAudio
			}
		}
		return req, nil
	}

	var body submitAnswerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errors.New("invalid request body")
	}
	req := body.SubmitAnswerRequest
	if body.AudioBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body.AudioBase64))
		if err != nil {
			return nil, errors.New("audio must be base64 encoded")
		}
		req.Audio = data
		if req.InputType == "" {
			req.InputType = model.InputAudio
		}
	}
	return &req, nil
}
