// Package docs registers the OpenAPI document served under /swagger. It is
// maintained by hand: paths and parameters follow the handler annotations,
// response bodies are described loosely. `swag init -g cmd/surfaceflow/main.go`
// regenerates it with full schemas.
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
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "platform"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Stub login",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/auth/logout": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Stub logout",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/auth/me": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "auth"
                ],
                "summary": "Stub current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/modules": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "modules"
                ],
                "summary": "List automation modules",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/modules/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "modules"
                ],
                "summary": "Get module configuration and statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "module id, e.g. AM-002",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/automations": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "automations"
                ],
                "summary": "List automation jobs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "running, completed or cancelled",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "module id",
                        "name": "module",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page (1-based)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page size",
                        "name": "per_page",
                        "in": "query"
                    }
                ]
            }
        },
        "/automations/trigger": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "automations"
                ],
                "summary": "Trigger an automation job",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "automation",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/automations/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "automations"
                ],
                "summary": "Get automation job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "job id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/automations/{id}/cancel": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "automations"
                ],
                "summary": "Cancel a running automation job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "job id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/search": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Search hotels for a BuilderTrend job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "job",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/run": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Start a hotel search automation",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "job",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/approve": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Approve a booking",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "approval",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/status/{jobID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Booking for a BuilderTrend job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "BuilderTrend job id",
                        "name": "jobID",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/bookings/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Get booking",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "booking job id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/history": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "List bookings",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "pending_approval or approved",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page (1-based)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page size",
                        "name": "per_page",
                        "in": "query"
                    }
                ]
            }
        },
        "/buildertrend/hotel-booking/searches": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Hotel search audit trail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                }
            }
        },
        "/buildertrend/hotel-booking/approvals": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "hotel-booking"
                ],
                "summary": "Booking approval audit trail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                }
            }
        },
        "/buildertrend/jobs": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buildertrend"
                ],
                "summary": "List synced BuilderTrend jobs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        },
        "/buildertrend/jobs/{jobID}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buildertrend"
                ],
                "summary": "Get a synced BuilderTrend job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "BuilderTrend job id",
                        "name": "jobID",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/buildertrend/jobs/{jobID}/sync": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buildertrend"
                ],
                "summary": "Sync a BuilderTrend job",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "BuilderTrend job id",
                        "name": "jobID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "job",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/salesforce/leads": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lead-enrichment"
                ],
                "summary": "List enrichments made since startup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "page (1-based)",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "page size",
                        "name": "per_page",
                        "in": "query"
                    }
                ]
            }
        },
        "/salesforce/leads/enrich": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lead-enrichment"
                ],
                "summary": "Enrich a Salesforce lead",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "lead",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/salesforce/leads/history": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lead-enrichment"
                ],
                "summary": "Lead enrichment audit trail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                }
            }
        },
        "/salesforce/leads/status/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lead-enrichment"
                ],
                "summary": "Get enrichment",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/httptransport.apiError"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "enrichment id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/salesforce/leads/mock-leads": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "lead-enrichment"
                ],
                "summary": "Demo Salesforce leads",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": true
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "httptransport.apiError": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "success": {
                    "type": "boolean"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SurfaceFlow API",
	Description:      "Mock automation, hotel booking and lead enrichment workflows.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
