// Package docs registers the OpenAPI document of the interview API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/guest": {
            "post": {
                "summary": "Issue a bearer token for a new anonymous candidate",
                "security": [],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokenResponse"}}}
            }
        },
        "/interviews": {
            "get": {
                "summary": "List the caller's interviews, newest first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.SessionSummary"}}}}
            },
            "post": {
                "summary": "Start an interview",
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/model.StartSessionRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.StartSessionResponse"}}}
            }
        },
        "/interviews/{id}": {
            "get": {
                "summary": "Interview with its ordered answers",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionDetail"}}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "summary": "Delete an interview with its answers and audio",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/interviews/{id}/question": {
            "get": {
                "summary": "Pending question of an interview",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.NextQuestionResponse"}}}
            }
        },
        "/interviews/{id}/answers": {
            "post": {
                "summary": "Submit an answer as JSON, or multipart with an audio file field",
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/model.SubmitAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SubmitAnswerResponse"}},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Interview completed or busy"},
                    "503": {"description": "Storage unavailable, retryable"}
                }
            }
        },
        "/interviews/{id}/stats": {
            "get": {
                "summary": "Aggregate statistics of an interview",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SessionStats"}}}
            }
        },
        "/ws/interviews/{id}": {
            "get": {
                "summary": "WebSocket stream of interview events (token query parameter)",
                "security": [],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "token", "required": true, "type": "string"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "model.TokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "userId": {"type": "string"}, "expiresAt": {"type": "integer"}}
        },
        "model.StartSessionRequest": {
            "type": "object",
            "properties": {"mode": {"type": "string", "enum": ["text", "audio"]}}
        },
        "model.StartSessionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "next_question": {"type": "string"},
                "question_number": {"type": "integer"},
                "total_questions": {"type": "integer"},
                "interview_mode": {"type": "string"}
            }
        },
        "model.SubmitAnswerRequest": {
            "type": "object",
            "properties": {
                "current_question": {"type": "string"},
                "response": {"type": "string"},
                "inputType": {"type": "string", "enum": ["text", "audio"]},
                "audio": {"type": "string", "format": "byte"}
            }
        },
        "model.SubmitAnswerResponse": {
            "type": "object",
            "properties": {
                "completed": {"type": "boolean"},
                "next_question": {"type": "string"},
                "question_number": {"type": "integer"},
                "stats": {"$ref": "#/definitions/model.SessionStats"},
                "sentiment": {"type": "string"},
                "category": {"type": "string"},
                "score": {"type": "number"}
            }
        },
        "model.NextQuestionResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "next_question": {"type": "string"},
                "question_number": {"type": "integer"},
                "completed": {"type": "boolean"}
            }
        },
        "model.SessionSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "startTime": {"type": "string"},
                "questionCount": {"type": "integer"},
                "totalScore": {"type": "number"},
                "completed": {"type": "boolean"},
                "interviewMode": {"type": "string"}
            }
        },
        "model.SessionDetail": {
            "type": "object",
            "properties": {"session": {"type": "object"}, "responses": {"type": "array", "items": {"type": "object"}}}
        },
        "model.SessionStats": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "total_questions": {"type": "integer"},
                "average_score": {"type": "number"},
                "average_response_length": {"type": "number"},
                "sentiment_distribution": {"type": "object", "additionalProperties": {"type": "integer"}},
                "category_distribution": {"type": "object", "additionalProperties": {"type": "integer"}},
                "response_lengths": {"type": "array", "items": {"type": "integer"}},
                "detailed_responses": {"type": "array", "items": {"type": "object"}},
                "completed": {"type": "boolean"},
                "interview_mode": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Mock Interview API",
	Description:      "Adaptive mock interview sessions with text and audio answers",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
