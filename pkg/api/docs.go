package api

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
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Get the health status of the API",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}}
                }
            }
        },
        "/encode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Hide a message in one channel of an image and return the result as base64",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["stego"],
                "summary": "Embed a message",
                "parameters": [
                    {"type": "file", "description": "Carrier image", "name": "image", "in": "formData"},
                    {"type": "string", "description": "Carrier image URL", "name": "image_url", "in": "formData"},
                    {"type": "string", "description": "Message to embed", "name": "message", "in": "formData", "required": true},
                    {"type": "string", "description": "Output format: png, bmp or tiff", "name": "format", "in": "formData"},
                    {"type": "boolean", "description": "Keep the result for download", "name": "store", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.EncodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Recover the message hidden in an image",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["stego"],
                "summary": "Extract a message",
                "parameters": [
                    {"type": "file", "description": "Encoded image", "name": "image", "in": "formData"},
                    {"type": "string", "description": "Encoded image URL", "name": "image_url", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/capacity": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Report how many bits and message characters an image can carry",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["stego"],
                "summary": "Carrier capacity",
                "parameters": [
                    {"type": "file", "description": "Carrier image", "name": "image", "in": "formData"},
                    {"type": "string", "description": "Carrier image URL", "name": "image_url", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CapacityResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/images/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Return the bytes of an image stored by an encode call with store=true",
                "produces": ["image/png", "image/bmp", "image/tiff"],
                "tags": ["images"],
                "summary": "Download a stored image",
                "parameters": [
                    {"type": "string", "description": "Image id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["images"],
                "summary": "Delete a stored image",
                "parameters": [
                    {"type": "string", "description": "Image id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "api.EncodeResponse": {
            "type": "object",
            "properties": {
                "capacity_bits": {"type": "integer"},
                "encoded_image": {"type": "string"},
                "format": {"type": "string"},
                "height": {"type": "integer"},
                "id": {"type": "string"},
                "max_message_chars": {"type": "integer"},
                "width": {"type": "integer"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "api.CapacityResponse": {
            "type": "object",
            "properties": {
                "capacity_bits": {"type": "integer"},
                "channel": {"type": "string"},
                "height": {"type": "integer"},
                "max_message_chars": {"type": "integer"},
                "width": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "DCT Steganography API",
	Description:      "Hide text messages in images by forcing the sign of mid-frequency DCT coefficients.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
