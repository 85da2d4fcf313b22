// Package docs registers the Swagger document served at /swagger/*any.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/api/v1/calendar/connect": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Start the consent flow",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "name": "scope", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/calendar/oauth/callback": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Consent redirect target",
                "parameters": [
                    {"type": "string", "name": "code", "in": "query", "required": true},
                    {"type": "string", "name": "state", "in": "query", "required": true},
                    {"type": "string", "name": "error", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Code rejected"}}
            }
        },
        "/api/v1/calendar/authorize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Exchange an authorization code for a stored credential",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Code rejected"}}
            }
        },
        "/api/v1/calendar/tokens/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Force an access token refresh",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Re-authorization required"}, "404": {"description": "User not registered"}}
            }
        },
        "/api/v1/calendar/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "List events in a local time range",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "query", "required": true},
                    {"type": "string", "name": "start", "in": "query", "required": true},
                    {"type": "string", "name": "end", "in": "query", "required": true},
                    {"type": "string", "name": "timezone", "in": "query", "required": true},
                    {"type": "string", "name": "calendar_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Re-authorization required"}, "404": {"description": "User not registered"}, "502": {"description": "Provider error"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Calendar"],
                "summary": "Create an event",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Re-authorization required"}, "404": {"description": "User not registered"}, "502": {"description": "Provider error"}}
            }
        },
        "/health": {"get": {"produces": ["application/json"], "tags": ["Health"], "summary": "Health Check", "responses": {"200": {"description": "API is healthy"}}}},
        "/ready": {"get": {"produces": ["application/json"], "tags": ["Health"], "summary": "Readiness Check", "responses": {"200": {"description": "API is ready"}, "503": {"description": "Token store unavailable"}}}},
        "/live": {"get": {"produces": ["application/json"], "tags": ["Health"], "summary": "Liveness Check", "responses": {"200": {"description": "API is alive"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Calendar Integration API",
	Description:      "Connects users' Google Calendars and reads or books events in their local time.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
