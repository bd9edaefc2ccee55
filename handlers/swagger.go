package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the hotel API.
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
    <title>hotelbook API docs</title>
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

// Minimal OpenAPI document describing the owner listing endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "hotelbook my-hotels", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "bearer": { "type": "http", "scheme": "bearer" },
      "cookie": { "type": "apiKey", "in": "cookie", "name": "auth_token" }
    },
    "schemas": {
      "Hotel": {
        "type": "object",
        "properties": {
          "_id": {"type":"string"}, "userId": {"type":"string"}, "name": {"type":"string"},
          "city": {"type":"string"}, "country": {"type":"string"}, "description": {"type":"string"},
          "type": {"type":"string"}, "adultCount": {"type":"integer"}, "childCount": {"type":"integer"},
          "facilities": {"type":"array","items":{"type":"string"}}, "pricePerNight": {"type":"number"},
          "starRating": {"type":"integer"}, "imageUrls": {"type":"array","items":{"type":"string"}},
          "lastUpdated": {"type":"string","format":"date-time"}
        }
      },
      "HotelForm": {
        "type": "object",
        "properties": {
          "name": {"type":"string"}, "city": {"type":"string"}, "country": {"type":"string"},
          "description": {"type":"string"}, "type": {"type":"string"}, "pricePerNight": {"type":"number"},
          "starRating": {"type":"integer"}, "adultCount": {"type":"integer"}, "childCount": {"type":"integer"},
          "facilities": {"type":"array","items":{"type":"string"}},
          "imageUrls": {"type":"array","items":{"type":"string"}},
          "imageFiles": {"type":"array","items":{"type":"string","format":"binary"}}
        }
      },
      "Message": { "type": "object", "properties": { "message": {"type":"string"} } },
      "ValidationError": {
        "type": "object",
        "properties": {
          "message": {"type":"string"},
          "errors": {"type":"array","items":{"type":"object","properties":{"field":{"type":"string"},"message":{"type":"string"}}}}
        }
      }
    }
  },
  "security": [ { "bearer": [] }, { "cookie": [] } ],
  "paths": {
    "/api/my-hotels": {
      "post": {
        "summary": "Create a hotel owned by the caller",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/HotelForm"} } } },
        "responses": {
          "201": { "description": "created", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Hotel"} } } },
          "400": { "description": "invalid input", "content": { "application/json": { "schema": {"$ref":"#/components/schemas/ValidationError"} } } },
          "504": { "description": "image upload timed out" },
          "500": { "description": "Something went wrong" }
        }
      },
      "get": {
        "summary": "List the caller's hotels",
        "responses": { "200": { "description": "hotels", "content": { "application/json": { "schema": {"type":"array","items":{"$ref":"#/components/schemas/Hotel"}} } } }, "500": { "description": "Error fetching hotels" } }
      }
    },
    "/api/my-hotels/{id}": {
      "get": {
        "summary": "Get one of the caller's hotels",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": {"type":"string"} } ],
        "responses": { "200": { "description": "hotel" }, "404": { "description": "Hotel not found" }, "500": { "description": "Error fetching hotel" } }
      }
    },
    "/api/my-hotels/{hotelId}": {
      "put": {
        "summary": "Update one of the caller's hotels; new images are placed before retained imageUrls",
        "parameters": [ { "name": "hotelId", "in": "path", "required": true, "schema": {"type":"string"} } ],
        "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/HotelForm"} } } },
        "responses": { "201": { "description": "updated hotel" }, "400": { "description": "invalid input" }, "404": { "description": "Hotel not found" }, "504": { "description": "image upload timed out" }, "500": { "description": "Error updating hotel" } }
      },
      "delete": {
        "summary": "Delete one of the caller's hotels",
        "parameters": [ { "name": "hotelId", "in": "path", "required": true, "schema": {"type":"string"} } ],
        "responses": { "200": { "description": "Hotel deleted successfully" }, "404": { "description": "Hotel not found or not owned by user" } }
      }
    },
    "/api/auth/validate-token": {
      "get": { "summary": "Return the caller's user id", "responses": { "200": { "description": "userId" }, "401": { "description": "unauthorized" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the presented access token and clear the auth cookie", "responses": { "200": { "description": "signed out" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
