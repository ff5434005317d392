// Package docs is generated by swag from the handler annotations.
// Regenerate with: swag init -g cmd/web/main.go
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
    "paths": {
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация студента или компании",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "409": {"description": "Email уже занят", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход по email и паролю",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/postings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["postings"],
                "summary": "Лента вакансий",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"},
                    {"type": "string", "name": "employment_type", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PostingListResponse"}}
                }
            }
        },
        "/api/v1/postings/{id}/similar": {
            "get": {
                "produces": ["application/json"],
                "tags": ["postings"],
                "summary": "Похожие вакансии",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.SimilarPosting"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/students/{studentId}/applications": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["applications"],
                "summary": "Откликнуться на вакансию",
                "parameters": [
                    {"type": "string", "name": "studentId", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SubmitApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ApplicationResponse"}},
                    "409": {"description": "Активная заявка уже есть", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}},
                    "422": {"description": "Вакансия не принимает заявки", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/admin/postings/{id}/decision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Одобрить или отклонить вакансию",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PostingResponse"}},
                    "409": {"description": "Вакансия уже рассмотрена", "schema": {"$ref": "#/definitions/apperrors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperrors.ErrorResponse": {"type": "object", "properties": {"error": {"type": "object"}}},
        "dto.RegisterRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}, "first_name": {"type": "string"}, "last_name": {"type": "string"}, "school": {"type": "string"}, "company_name": {"type": "string"}, "industry": {"type": "string"}}},
        "dto.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "dto.AuthResponse": {"type": "object", "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}, "expires_at": {"type": "string"}}},
        "dto.PostingResponse": {"type": "object", "properties": {"id": {"type": "string"}, "company_id": {"type": "string"}, "title": {"type": "string"}, "status": {"type": "string"}}},
        "dto.PostingListResponse": {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/dto.PostingResponse"}}, "total": {"type": "integer"}, "page": {"type": "integer"}, "page_size": {"type": "integer"}}},
        "dto.SimilarPosting": {"type": "object", "properties": {"id": {"type": "string"}, "title": {"type": "string"}, "score": {"type": "integer"}, "reasons": {"type": "array", "items": {"type": "string"}}}},
        "dto.DecisionRequest": {"type": "object", "properties": {"decision": {"type": "string"}, "reason": {"type": "string"}}},
        "dto.SubmitApplicationRequest": {"type": "object", "properties": {"posting_id": {"type": "string"}, "cv_id": {"type": "string"}, "cover_letter": {"type": "string"}}},
        "dto.ApplicationResponse": {"type": "object", "properties": {"id": {"type": "string"}, "student_id": {"type": "string"}, "posting_id": {"type": "string"}, "status": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Placement Portal API",
	Description:      "API портала стажировок: вакансии, заявки студентов, модерация.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
