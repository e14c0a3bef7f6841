// Package docs registers the OpenAPI description served by gin-swagger.
// Regenerate with `swag init -g cmd/api/main.go -o internal/docs`.
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "User registered and token generated"}, "400": {"description": "Invalid input"}, "409": {"description": "Email already registered"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "User authenticated and token generated"}, "401": {"description": "Invalid credentials"}, "423": {"description": "Account locked"}}}},
        "/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Get user profile", "responses": {"200": {"description": "User profile"}}}},
        "/groups": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "List groups", "responses": {"200": {"description": "Groups"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Create a group", "responses": {"201": {"description": "Group created"}}}
        },
        "/groups/{groupId}/users": {"post": {"security": [{"BearerAuth": []}], "tags": ["groups"], "summary": "Add a group member", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"204": {"description": "Member added"}}}},
        "/groups/{groupId}/sources": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sources"], "summary": "List sources", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "Sources"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["sources"], "summary": "Create a source", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"201": {"description": "Source created"}}}
        },
        "/groups/{groupId}/sources/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["sources"], "summary": "Get a source", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Source"}, "404": {"description": "Source not found"}}}},
        "/groups/{groupId}/expenses": {"post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Create an expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"201": {"description": "Expense created"}, "400": {"description": "Invalid input or division"}}}},
        "/groups/{groupId}/expenses/month": {"get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "List expenses of a month", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "integer", "name": "year", "in": "query", "required": true}, {"type": "integer", "name": "month", "in": "query", "required": true}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "Expenses"}}}},
        "/groups/{groupId}/expenses/division": {"post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Preview an expense division", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}], "responses": {"200": {"description": "Division"}}}},
        "/groups/{groupId}/expenses/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Get an expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Expense"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Update an expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Expense updated"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Expense deleted"}}}
        },
        "/groups/{groupId}/expenses/{id}/recurring": {"post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Make an expense recurring", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Series created"}}}},
        "/groups/{groupId}/expenses/recurring/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Update a recurring expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}, {"enum": ["single", "all", "after"], "type": "string", "name": "target", "in": "query", "required": true}], "responses": {"200": {"description": "Occurrences updated"}, "409": {"description": "Concurrent update"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Delete a recurring expense", "parameters": [{"type": "string", "name": "groupId", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}, {"enum": ["single", "all", "after"], "type": "string", "name": "target", "in": "query", "required": true}], "responses": {"200": {"description": "Occurrences deleted"}, "409": {"description": "Concurrent update"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Bookkeeper API",
	Description:      "Shared expense bookkeeping for groups: exact money, share based divisions and recurring expenses.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
