package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniOps API",
        "description": "University operations backend: timetable generation and term scheduling",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Canonical-week template generation and dated term schedules"}
    ],
    "paths": {
        "/timetable/template/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Regenerate the canonical-week template for a program",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTemplateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/template": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the stored canonical-week template",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate the full dated schedule for a term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTermScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/sessions": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List a term's dated sessions for a program",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/sessions/week": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List one week of a term's sessions",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/sessions/by-term-code": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List sessions for a program's curriculum at an explicit term code",
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "termCode", "in": "query", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export/week": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export one week of the timetable as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "programId", "in": "query", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "GenerateTemplateRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"}
            },
            "required": ["programId"]
        },
        "GenerateTermScheduleRequest": {
            "type": "object",
            "properties": {
                "programId": {"type": "string"},
                "termId": {"type": "string"},
                "weekCount": {"type": "integer"},
                "async": {"type": "boolean"}
            },
            "required": ["programId"]
        },
        "TemplateAssignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "section_id": {"type": "string"},
                "room_id": {"type": "string"},
                "period_id": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "ScheduledSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "term_id": {"type": "string"},
                "section_id": {"type": "string"},
                "room_id": {"type": "string"},
                "period_id": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "week_number": {"type": "integer"},
                "date": {"type": "string"}
            }
        },
        "SectionDiagnostic": {
            "type": "object",
            "properties": {
                "section_id": {"type": "string"},
                "reason": {"type": "string"}
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
