// Package docs holds the OpenAPI document served at /swagger/doc.json.
// Regenerate with: swag init --parseInternal --output docs
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://mit-license.org/"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/otp/send": {
            "post": {
                "description": "Generates a one-time passcode and emails it. One request per email per cooldown window.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Send OTP",
                "parameters": [
                    {
                        "description": "Send payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/otp.SendRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OTP sent", "schema": {"$ref": "#/definitions/router.successResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "405": {"description": "Method not allowed", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "429": {"description": "Please wait before requesting another OTP.", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "500": {"description": "Failed to store or send the OTP", "schema": {"$ref": "#/definitions/router.errorResponse"}}
                }
            }
        },
        "/api/v1/otp/verify": {
            "post": {
                "description": "Checks the passcode for an email. A passcode verifies at most once, so a code verified here can no longer submit a contact message.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["OTP"],
                "summary": "Verify OTP",
                "parameters": [
                    {
                        "description": "Verify payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/otp.VerifyRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OTP verified", "schema": {"$ref": "#/definitions/router.successResponse"}},
                    "400": {"description": "Validation error or Invalid OTP", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "405": {"description": "Method not allowed", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/router.errorResponse"}}
                }
            }
        },
        "/api/v1/contact/messages": {
            "post": {
                "description": "Consumes the OTP for the email, then stores and forwards the message. Send the code here directly: a code already used on /api/v1/otp/verify is rejected. An Idempotency-Key header makes retries safe.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Contact"],
                "summary": "Submit contact message",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Client generated key for safe retries",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Contact payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/contact.SubmitRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Message submitted", "schema": {"$ref": "#/definitions/router.successResponse"}},
                    "400": {"description": "Validation error or Invalid OTP", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "409": {"description": "Already submitted", "schema": {"$ref": "#/definitions/router.errorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/router.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "otp.SendRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}}
        },
        "otp.VerifyRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "otp": {"type": "string"}}
        },
        "contact.SubmitRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"},
                "otp": {"type": "string"}
            }
        },
        "router.successResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "router.errorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "error": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GoContact API",
	Description:      "Email OTP issuance and verification guarding a contact form.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// JSON renders the registered document.
func JSON() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}
