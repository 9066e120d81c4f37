// Package docs registers the OpenAPI document served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and store reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/me/requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's membership requests across all projects, newest first.",
                "produces": ["application/json"],
                "tags": ["membership"],
                "summary": "List the caller's join requests",
                "responses": {
                    "200": {"description": "Requests retrieved successfully", "schema": {"$ref": "#/definitions/handlers.MembershipRequestListResponse"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/projects": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists every visible project and, for a signed-in user, the projects they own. Newest first.",
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "List projects",
                "responses": {
                    "200": {"description": "Projects retrieved successfully", "schema": {"$ref": "#/definitions/handlers.ProjectListSuccessResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a project owned by the signed-in user.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Create a new project",
                "parameters": [
                    {"description": "Project to create", "name": "project", "in": "body", "required": true, "schema": {"$ref": "#/definitions/membership.ProjectInput"}}
                ],
                "responses": {
                    "201": {"description": "Project created successfully", "schema": {"$ref": "#/definitions/handlers.ProjectSuccessResponse"}},
                    "400": {"description": "Body is not valid JSON", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the project, the caller's role and permitted actions, and the team.",
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Get a project page",
                "parameters": [
                    {"type": "string", "description": "Project ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Project retrieved successfully", "schema": {"$ref": "#/definitions/handlers.ProjectDetailSuccessResponse"}},
                    "400": {"description": "Invalid project ID", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Files a pending join request for the caller and returns the refreshed project page.",
                "produces": ["application/json"],
                "tags": ["membership"],
                "summary": "Request to join a project",
                "parameters": [
                    {"type": "string", "description": "Project ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Join request created", "schema": {"$ref": "#/definitions/handlers.ProjectDetailSuccessResponse"}},
                    "400": {"description": "Invalid project ID", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "409": {"description": "Owner of the project, or a request already exists", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/requests/{requestId}/decision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Lets the project owner decide a pending request. Returns the refreshed project page.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["membership"],
                "summary": "Accept or reject a join request",
                "parameters": [
                    {"type": "string", "description": "Project ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Membership request ID (UUID)", "name": "requestId", "in": "path", "required": true},
                    {"description": "accept or reject", "name": "decision", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Request decided", "schema": {"$ref": "#/definitions/handlers.ProjectDetailSuccessResponse"}},
                    "400": {"description": "Invalid ID or body", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "403": {"description": "Caller is not the project owner", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Project or request not found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "409": {"description": "Request already decided", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "422": {"description": "Unknown decision", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.DecisionRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["accept", "reject"], "example": "accept"}
            }
        },
        "handlers.MembershipRequestListResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.MembershipRequest"}}
            }
        },
        "handlers.ProjectSuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/models.Project"}
            }
        },
        "handlers.ProjectListSuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/service.ProjectListing"}
            }
        },
        "handlers.ProjectDetailSuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/service.ProjectDetail"}
            }
        },
        "membership.ProjectInput": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "description": {"type": "string", "maxLength": 5000},
                "domain": {"type": "string", "enum": ["Web Development", "Mobile Apps", "AI/ML", "Data Science", "Blockchain", "Other"]},
                "required_skills": {"type": "array", "maxItems": 30, "items": {"type": "string"}},
                "max_team_size": {"type": "integer", "minimum": 2, "maximum": 20},
                "is_public": {"type": "boolean"}
            }
        },
        "membership.Member": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "avatar_url": {"type": "string"},
                "placeholder": {"type": "boolean"}
            }
        },
        "membership.PendingMember": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "avatar_url": {"type": "string"},
                "placeholder": {"type": "boolean"}
            }
        },
        "membership.ProjectComposition": {
            "type": "object",
            "properties": {
                "owner": {"$ref": "#/definitions/membership.Member"},
                "accepted": {"type": "array", "items": {"$ref": "#/definitions/membership.Member"}},
                "pending": {"type": "array", "items": {"$ref": "#/definitions/membership.PendingMember"}},
                "accepted_count": {"type": "integer"},
                "max_team_size": {"type": "integer"}
            }
        },
        "models.MembershipRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "user_id": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "accepted", "rejected"]},
                "created_at": {"type": "string"}
            }
        },
        "models.Project": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "creator_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "domain": {"type": "string"},
                "required_skills": {"type": "array", "items": {"type": "string"}},
                "max_team_size": {"type": "integer"},
                "is_public": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "service.ProjectDetail": {
            "type": "object",
            "properties": {
                "project": {"$ref": "#/definitions/models.Project"},
                "domain_label": {"type": "string"},
                "role": {"type": "string", "enum": ["owner", "accepted", "pending", "rejected", "none"]},
                "actions": {"type": "array", "items": {"type": "string", "enum": ["sign_in", "request_join", "decide_requests"]}},
                "team": {"$ref": "#/definitions/membership.ProjectComposition"},
                "over_capacity": {"type": "boolean"},
                "request": {"$ref": "#/definitions/models.MembershipRequest"},
                "stale": {"type": "boolean"}
            }
        },
        "service.ProjectListing": {
            "type": "object",
            "properties": {
                "all": {"type": "array", "items": {"$ref": "#/definitions/models.Project"}},
                "mine": {"type": "array", "items": {"$ref": "#/definitions/models.Project"}}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "retryable": {"type": "boolean"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {}
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Teamforge API",
	Description:      "Project listings, join requests and team composition.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
