// Package docs holds the Swagger document served by the HTTP API when built
// with -tags=swagger. Regenerate with swag init -g cmd/mcpsolve/docs.go.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "mcpsolve maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/solve": {
            "post": {
                "description": "Solves one instance on one backend and returns the checked result.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["solve"],
                "summary": "Solve a Multiple Courier Problem instance",
                "parameters": [
                    {
                        "description": "Instance and options",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.SolveRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SolveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/backends": {
            "get": {
                "produces": ["application/json"],
                "tags": ["backends"],
                "summary": "List registered backends",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BackendsResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Admission and worker status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.InstanceData": {
            "type": "object",
            "properties": {
                "capacities": {"type": "array", "items": {"type": "integer"}, "example": [10, 10]},
                "sizes": {"type": "array", "items": {"type": "integer"}, "example": [5, 5, 5]},
                "distances": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}}
            }
        },
        "types.SolveRequest": {
            "type": "object",
            "properties": {
                "instance": {"type": "string"},
                "data": {"$ref": "#/definitions/types.InstanceData"},
                "name": {"type": "string", "example": "inst01"},
                "backend": {"type": "string", "example": "pb"},
                "symmetry_break": {"type": "boolean", "example": true},
                "symmetry_mode": {"type": "string", "example": "load"},
                "strategy": {"type": "string", "example": "auto"},
                "time_budget_seconds": {"type": "integer", "example": 60, "minimum": 0, "maximum": 86400}
            }
        },
        "types.Result": {
            "type": "object",
            "properties": {
                "time": {"type": "integer", "example": 3},
                "optimal": {"type": "boolean", "example": true},
                "obj": {"type": "integer", "example": 10},
                "sol": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}}
            }
        },
        "types.SolveResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "backend": {"type": "string", "example": "pb"},
                "status": {"type": "string", "example": "optimal"},
                "result": {"$ref": "#/definitions/types.Result"},
                "distances": {"type": "array", "items": {"type": "integer"}},
                "engine_calls": {"type": "integer", "example": 4},
                "elapsed_ms": {"type": "integer", "example": 1520},
                "diagnostics": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.BackendInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "pb"},
                "description": {"type": "string"},
                "native_optimize": {"type": "boolean"},
                "interruptible": {"type": "boolean"}
            }
        },
        "types.BackendsResponse": {
            "type": "object",
            "properties": {
                "backends": {"type": "array", "items": {"$ref": "#/definitions/types.BackendInfo"}}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "backends": {"type": "array", "items": {"type": "string"}},
                "inflight": {"type": "integer"},
                "max_concurrent": {"type": "integer"},
                "queue_len": {"type": "integer"},
                "max_queue_depth": {"type": "integer"},
                "solves_total": {"type": "integer"},
                "abandoned_workers": {"type": "integer"},
                "time_budget_seconds": {"type": "integer"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "mcpsolve API",
	Description:      "HTTP API for solving Multiple Courier Problem instances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
