// Package docs holds the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "account", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/token": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange username (or email) and password for an access token",
                "parameters": [
                    {"type": "string", "description": "username or email", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "description": "password", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Search products",
                "parameters": [
                    {"type": "string", "description": "search text", "name": "query", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Product"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/product/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Product detail",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.productDetailResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/product/{id}/reviews": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Product reviews",
                "parameters": [
                    {"type": "integer", "description": "product id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "page, from 1", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Reviews"}}
                }
            }
        },
        "/compare": {
            "post": {
                "description": "Charges one request against the caller's daily allowance.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "Compare products with the configured language model",
                "parameters": [
                    {"description": "prompt or product ids", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.compareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.compareResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/compare/quota": {
            "get": {
                "produces": ["application/json"],
                "tags": ["compare"],
                "summary": "Remaining comparisons for today",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.quotaResponse"}}
                }
            }
        }
    },
    "definitions": {
        "catalog.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "url_path": {"type": "string"},
                "brand_name": {"type": "string"},
                "price": {"type": "number"},
                "original_price": {"type": "number"},
                "review_count": {"type": "integer"},
                "thumbnail_url": {"type": "string"}
            }
        },
        "catalog.Reviews": {
            "type": "object",
            "properties": {
                "stars": {"type": "object"},
                "rating_average": {"type": "number"},
                "reviews_count": {"type": "integer"},
                "reviews": {"type": "array", "items": {"type": "object"}},
                "paging": {"type": "object"}
            }
        },
        "handler.compareRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string"},
                "productIds": {"type": "array", "items": {"type": "integer"}},
                "language": {"type": "string", "enum": ["en", "vi"]}
            }
        },
        "handler.compareResponse": {
            "type": "object",
            "properties": {
                "comparison": {"type": "string"},
                "remainingAttempts": {"type": "integer"},
                "maxAttempts": {"type": "integer"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.productDetailResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "brand_name": {"type": "string"},
                "description": {"type": "string"},
                "specifications": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handler.quotaResponse": {
            "type": "object",
            "properties": {
                "remainingAttempts": {"type": "integer"},
                "maxAttempts": {"type": "integer"},
                "isGuest": {"type": "boolean"},
                "resetAt": {"type": "string"}
            }
        },
        "handler.signupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
            }
        },
        "handler.tokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "full_name": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ShopCompare API",
	Description:      "Product search proxy and AI comparison with per-caller daily quotas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
