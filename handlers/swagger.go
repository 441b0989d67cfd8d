package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the status API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>statusboard - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Writes need the shared secret verbatim in the Authorization header.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "statusboard", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "sharedSecret": { "type": "apiKey", "in": "header", "name": "Authorization" } },
    "schemas": {
      "Status": { "type": "object", "properties": { "id": {"type":"string"}, "title": {"type":"string"}, "body": {"type":"string"}, "date": {"type":"string","format":"date-time"} } },
      "StatusInput": { "type": "object", "required": ["title","body"], "properties": { "title": {"type":"string"}, "body": {"type":"string"} } },
      "Error": { "type": "object", "properties": { "code": {"type":"string"}, "message": {"type":"string"} } }
    }
  },
  "paths": {
    "/": {
      "get": { "summary": "List statuses, newest first", "responses": { "200": { "description": "statuses" } } },
      "post": {
        "summary": "Create a status",
        "security": [ { "sharedSecret": [] } ],
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/StatusInput"} } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "missing title or body" }, "401": { "description": "unauthorized" } }
      },
      "delete": { "summary": "Rejected: an id is required", "responses": { "400": { "description": "missing id" } } }
    },
    "/list": { "get": { "summary": "Alias of GET /", "responses": { "200": { "description": "statuses" } } } },
    "/latest": { "get": { "summary": "Most recent status", "responses": { "200": { "description": "status" }, "404": { "description": "no statuses" } } } },
    "/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
      "get": { "summary": "Get a status", "responses": { "200": { "description": "status" }, "404": { "description": "not found" } } },
      "put": {
        "summary": "Replace title and body; returns the previous snapshot",
        "security": [ { "sharedSecret": [] } ],
        "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/StatusInput"} } } },
        "responses": { "200": { "description": "updated" }, "400": { "description": "missing title or body" }, "401": { "description": "unauthorized" }, "404": { "description": "not found" } }
      },
      "delete": {
        "summary": "Delete a status; returns the deleted snapshot",
        "security": [ { "sharedSecret": [] } ],
        "responses": { "200": { "description": "deleted" }, "401": { "description": "unauthorized" }, "404": { "description": "not found" } }
      },
      "post": { "summary": "Rejected: use PUT", "responses": { "405": { "description": "method not allowed" } } }
    },
    "/statuses": { "get": { "summary": "Legacy alias of GET /", "responses": { "200": { "description": "statuses" } } } },
    "/status": {
      "get": { "summary": "Legacy alias of GET /latest", "responses": { "200": { "description": "status" } } },
      "post": { "summary": "Legacy create", "security": [ { "sharedSecret": [] } ], "responses": { "201": { "description": "created" }, "422": { "description": "missing title or body" } } }
    },
    "/status/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
      "get": { "summary": "Legacy alias of GET /{id}", "responses": { "200": { "description": "status" } } },
      "put": { "summary": "Legacy alias of PUT /{id}", "security": [ { "sharedSecret": [] } ], "responses": { "200": { "description": "updated" } } },
      "delete": { "summary": "Legacy alias of DELETE /{id}", "security": [ { "sharedSecret": [] } ], "responses": { "200": { "description": "deleted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
