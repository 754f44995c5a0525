package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "mockinterview/docs"
	"mockinterview/internal/service"
	"mockinterview/internal/transport/rest/handler"
	"mockinterview/internal/transport/rest/middleware"
	"mockinterview/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	InterviewService *service.InterviewService
	WSHub            *ws.Hub
	AllowedOrigins   []string
	MaxAudioBytes    int64
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
	interviewHandler := handler.NewInterviewHandler(c.InterviewService, c.MaxAudioBytes, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.InterviewService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.Logging(c.Logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")
	v1.HandleFunc("/docs/swagger.json", swaggerDoc).Methods("GET")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/interviews/{id}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Candidate routes (require user auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/interviews", interviewHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/interviews", interviewHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/interviews/{id}", interviewHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/interviews/{id}", interviewHandler.Delete).Methods("DELETE", "OPTIONS")
	userRoutes.HandleFunc("/interviews/{id}/question", interviewHandler.NextQuestion).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/interviews/{id}/answers", interviewHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/interviews/{id}/stats", interviewHandler.Stats).Methods("GET", "OPTIONS")

	return r
}

func swaggerDoc(w http.ResponseWriter, _ *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api documentation unavailable"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	origins := strings.Join(allowedOrigins, ", ")
	if origins == "" {
		origins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
