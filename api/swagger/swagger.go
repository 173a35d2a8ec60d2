package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kita Admin API",
        "description": "Multi-tenant kindergarten administration backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Session login and account flows"},
        {"name": "Children", "description": "Child roster"},
        {"name": "Groups", "description": "Classroom groups and teacher assignment"},
        {"name": "Attendance", "description": "Daily attendance"},
        {"name": "Consents", "description": "Parental consents"},
        {"name": "Payments", "description": "Monthly fees"},
        {"name": "Health", "description": "Medications and chronic diseases"},
        {"name": "Behavior", "description": "Behavioural observations"},
        {"name": "AuthorizedPersons", "description": "Pickup authorizations"},
        {"name": "Pickup", "description": "Daily pickup codes and release records"},
        {"name": "Users", "description": "Account administration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/children": {
            "get": {
                "tags": ["Children"],
                "summary": "List children visible to the caller",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Teacher without group assignment"}
                }
            },
            "post": {
                "tags": ["Children"],
                "summary": "Register a child",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/children/{id}": {
            "get": {
                "tags": ["Children"],
                "summary": "Child detail",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/children/{id}/pickup-code": {
            "get": {
                "tags": ["Pickup"],
                "summary": "Get today's pickup code, issuing it lazily",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DailyPickupCode"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/pickup-codes/verify": {
            "post": {
                "tags": ["Pickup"],
                "summary": "Verify and consume a pickup code",
                "responses": {
                    "200": {"description": "Bare success flag"},
                    "400": {"description": "Malformed payload"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/cron/pickup-codes/sweep": {
            "post": {
                "tags": ["Pickup"],
                "summary": "Issue today's codes for children still lacking one",
                "responses": {
                    "200": {"description": "Count of created codes"},
                    "401": {"description": "Missing or wrong scheduler secret"}
                }
            }
        },
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        }
    },
    "definitions": {
        "DailyPickupCode": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "child_id": {"type": "string"},
                "code": {"type": "string"},
                "code_date": {"type": "string"},
                "is_used": {"type": "boolean"},
                "used_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
