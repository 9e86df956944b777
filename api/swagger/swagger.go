package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "evtcal API",
        "description": "Add-to-calendar links and iCalendar downloads for single events",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Calendar", "description": "Provider links and calendar file downloads"},
        {"name": "Ops", "description": "Health and metrics"}
    ],
    "paths": {
        "/calendar/links": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Add-to-calendar links for one event",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "description", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD HH:MM:SS wall clock in tz"},
                    {"name": "end", "in": "query", "type": "string", "required": true, "description": "YYYY-MM-DD HH:MM:SS wall clock in tz"},
                    {"name": "tz", "in": "query", "type": "string", "required": true, "description": "IANA timezone"},
                    {"name": "label", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Calendar"],
                "summary": "Add-to-calendar links for one event (JSON body)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalendarEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/ics": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download the event as an iCalendar file",
                "produces": ["text/calendar"],
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "description", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true},
                    {"name": "tz", "in": "query", "type": "string", "description": "defaults to UTC"},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "iCalendar body"},
                    "400": {"description": "Missing or invalid field", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Integrity token rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Calendar file download disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/settings": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Current calendar button settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Process counters as JSON",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CalendarEventRequest": {
            "type": "object",
            "required": ["start", "end", "tz"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "start": {"type": "string", "example": "2025-07-15 14:00:00"},
                "end": {"type": "string", "example": "2025-07-15 16:00:00"},
                "tz": {"type": "string", "example": "America/New_York"},
                "label": {"type": "string"}
            }
        },
        "CalendarLink": {
            "type": "object",
            "properties": {
                "provider": {"type": "string"},
                "name": {"type": "string"},
                "url": {"type": "string"},
                "download": {"type": "boolean"},
                "expiresAt": {"type": "string", "format": "date-time"}
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
