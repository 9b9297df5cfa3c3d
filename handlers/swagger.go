package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
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
    <title>newsdesk API</title>
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

// Routes marked with security need "Authorization: Bearer <id token>".
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "newsdesk", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } },
      "InsertResult": { "type": "object", "properties": { "acknowledged": {"type":"boolean"}, "insertedId": {"type":"string"} } },
      "DeleteResult": { "type": "object", "properties": { "acknowledged": {"type":"boolean"}, "deletedCount": {"type":"integer"} } },
      "RequestStatus": { "type": "object", "properties": { "exists": {"type":"boolean"}, "status": {"type":"string","nullable":true}, "isPublisher": {"type":"boolean"} } }
    }
  },
  "paths": {
    "/users/{email}": {
      "put": { "summary": "Upsert own profile", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" }, "403": { "description": "not your account" } } },
      "get": { "summary": "Get user", "responses": { "200": { "description": "user" }, "404": { "description": "User not found" } } }
    },
    "/users": { "get": { "summary": "List users (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "users" } } } },
    "/users/admin/{email}": { "patch": { "summary": "Grant admin role (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" } } } },
    "/subscribe/{email}": {
      "post": {
        "summary": "Grant premium for duration minutes",
        "security": [{"bearer":[]}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"duration":{"type":"number"}}}}}},
        "responses": { "200": { "description": "success, user, premiumUntil" }, "400": { "description": "Invalid duration" }, "404": { "description": "User not found" } }
      }
    },
    "/articles": {
      "get": { "summary": "Approved articles; publisher, tag, search, sort, limit", "responses": { "200": { "description": "articles" } } },
      "post": { "summary": "Post an article", "security": [{"bearer":[]}], "responses": { "200": { "description": "insert result" }, "403": { "description": "Normal user can post only 1 article." } } }
    },
    "/articles/{id}": {
      "get": { "summary": "Read an article (counts a view)", "responses": { "200": { "description": "article" }, "404": { "description": "Article not found" } } },
      "put": { "summary": "Edit own article", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" } } },
      "delete": { "summary": "Delete own article", "security": [{"bearer":[]}], "responses": { "200": { "description": "delete result" } } }
    },
    "/trending": { "get": { "summary": "Top approved articles by views", "responses": { "200": { "description": "articles" } } } },
    "/latest": { "get": { "summary": "Newest approved articles", "responses": { "200": { "description": "articles" } } } },
    "/premium-articles": { "get": { "summary": "Approved premium articles", "security": [{"bearer":[]}], "responses": { "200": { "description": "articles" } } } },
    "/my-articles/{email}": { "get": { "summary": "Articles by author", "security": [{"bearer":[]}], "responses": { "200": { "description": "articles" } } } },
    "/admin/articles": { "get": { "summary": "All articles (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "articles" } } } },
    "/admin/articles/approve/{id}": { "patch": { "summary": "Approve article (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" } } } },
    "/admin/articles/decline/{id}": { "patch": { "summary": "Decline article with reason (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" } } } },
    "/admin/articles/premium/{id}": { "patch": { "summary": "Mark article premium (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "update result" } } } },
    "/admin/article-requests/count-pending": { "get": { "summary": "Pending article count (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "count" } } } },
    "/publishers": {
      "get": { "summary": "Publishers with approved article counts", "responses": { "200": { "description": "publishers" } } },
      "post": { "summary": "Create publisher (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "insert result" }, "409": { "description": "This person is already a publisher" } } }
    },
    "/publishers/check-email/{email}": { "get": { "summary": "Is email a publisher", "responses": { "200": { "description": "exists" } } } },
    "/admin/publishers/{id}": { "delete": { "summary": "Delete publisher (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "delete result" } } } },
    "/publisher-request": {
      "post": {
        "summary": "Request publisher status",
        "security": [{"bearer":[]}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"logo":{"type":"string"},"reason":{"type":"string"}}}}}},
        "responses": { "200": { "description": "insert result" }, "409": { "description": "Already a publisher | Already requested" } }
      }
    },
    "/publisher-request/check": { "get": { "summary": "Own request status", "security": [{"bearer":[]}], "responses": { "200": { "description": "exists, status, isPublisher" } } } },
    "/admin/publisher-requests": { "get": { "summary": "Pending requests (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "requests" } } } },
    "/admin/publisher-requests/approve/{id}": { "patch": { "summary": "Approve request (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "success" }, "404": { "description": "Request not found" } } } },
    "/admin/publisher-requests/decline/{id}": { "patch": { "summary": "Decline request (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "delete result" } } } },
    "/admin/publisher-requests/count-pending": { "get": { "summary": "Pending request count (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "count" } } } },
    "/admin/publisher-requests/events": { "get": { "summary": "Request audit trail (admin)", "security": [{"bearer":[]}], "responses": { "200": { "description": "events" } } } },
    "/stats": { "get": { "summary": "Dashboard counts", "responses": { "200": { "description": "total, normal, premium, publishers, articles, pendingArticles" } } } },
    "/auth/me": { "get": { "summary": "Verified identity", "security": [{"bearer":[]}], "responses": { "200": { "description": "principal and profile" } } } },
    "/auth/logout": { "post": { "summary": "Revoke the presented token", "security": [{"bearer":[]}], "responses": { "200": { "description": "logged out" } } } },
    "/uploads": { "post": { "summary": "Upload an image (multipart file)", "security": [{"bearer":[]}], "responses": { "200": { "description": "key and url" }, "503": { "description": "uploads not configured" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
