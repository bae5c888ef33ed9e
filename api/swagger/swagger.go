package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Routine API",
        "description": "Routine slot assignment and conflict detection service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Routine", "description": "Slot assignment, conflict checking and weekly views"},
        {"name": "Export", "description": "Routine downloads (csv/pdf/xlsx)"},
        {"name": "Teachers", "description": "Teacher roster management"},
        {"name": "Time Slots", "description": "Ordered period catalog"}
    ],
    "paths": {
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
        },
        "/routine/check": {
            "post": {
                "tags": ["Routine"],
                "summary": "Dry-run conflict check",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routine/slots": {
            "post": {
                "tags": ["Routine"],
                "summary": "Assign a class to routine slots",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid span", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routine/slots/{id}": {
            "get": {
                "tags": ["Routine"],
                "summary": "Get routine slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Routine"],
                "summary": "Clear routine slot (span-aware, idempotent)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/routine/spans/{spanId}": {
            "delete": {
                "tags": ["Routine"],
                "summary": "Clear a span group",
                "parameters": [
                    {"name": "spanId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/routine/section": {
            "get": {
                "tags": ["Routine"],
                "summary": "Weekly routine of one section",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "section", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routine/integrity": {
            "get": {
                "tags": ["Routine"],
                "summary": "Span integrity report",
                "parameters": [
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/routine": {
            "get": {
                "tags": ["Routine"],
                "summary": "Weekly routine of one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}/routine": {
            "get": {
                "tags": ["Routine"],
                "summary": "Weekly booking grid of one room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/routine/section": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a section routine",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]},
                    {"name": "academicYearId", "in": "query", "required": true, "type": "string"},
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "section", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["Time Slots"],
                "summary": "List period definitions in display order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AssignSlotRequest": {
            "type": "object",
            "properties": {
                "academic_year_id": {"type": "string"},
                "program_id": {"type": "string"},
                "semester": {"type": "integer"},
                "section": {"type": "string"},
                "day_index": {"type": "integer"},
                "slot_index": {"type": "integer"},
                "span_length": {"type": "integer"},
                "subject_id": {"type": "string"},
                "teacher_ids": {"type": "array", "items": {"type": "string"}},
                "room_id": {"type": "string"},
                "class_type": {"type": "string", "enum": ["LECTURE", "PRACTICAL", "TUTORIAL"]},
                "lab_group_id": {"type": "string"},
                "recurrence_type": {"type": "string", "enum": ["WEEKLY", "ALTERNATE"]},
                "recurrence_pattern": {"type": "string", "enum": ["ODD", "EVEN"]},
                "semester_parity_exempt": {"type": "boolean"}
            },
            "required": ["academic_year_id", "program_id", "semester", "section", "subject_id", "teacher_ids", "room_id", "class_type"]
        },
        "Conflict": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["TEACHER", "ROOM", "SECTION"]},
                "slot_id": {"type": "string"},
                "resource_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ConflictResult": {
            "type": "object",
            "properties": {
                "is_valid": {"type": "boolean"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/Conflict"}}
            }
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "short_name": {"type": "string"},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "designation": {"type": "string"},
                "department_id": {"type": "string"}
            },
            "required": ["short_name", "full_name", "email", "department_id"]
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
