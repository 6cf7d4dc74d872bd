package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "District Transport Scheduling API",
        "description": "Activity scheduling, conflict detection and resource availability for district transportation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Activities", "description": "Activity scheduling and conflict detection"},
        {"name": "Recurrence", "description": "Recurring activity series"},
        {"name": "Approvals", "description": "Activity approval workflow"},
        {"name": "Availability", "description": "Driver and vehicle availability queries"},
        {"name": "Drivers", "description": "Driver roster management"},
        {"name": "Vehicles", "description": "Vehicle fleet management"},
        {"name": "Metrics", "description": "Engine counters"}
    ],
    "paths": {
        "/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activities",
                "parameters": [
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "driverId", "in": "query", "type": "integer"},
                    {"name": "vehicleId", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
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
                "tags": ["Activities"],
                "summary": "Schedule activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateActivityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/validate": {
            "post": {
                "tags": ["Activities"],
                "summary": "Validate an activity without persisting it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Activity"}}
                ],
                "responses": {
                    "200": {"description": "Validation result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/conflicts": {
            "post": {
                "tags": ["Activities"],
                "summary": "Detect schedule conflicts for a candidate activity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Activity"}}
                ],
                "responses": {
                    "200": {"description": "Conflicting activities", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/recurring": {
            "post": {
                "tags": ["Recurrence"],
                "summary": "Create a recurring activity series",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRecurringRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/export": {
            "get": {
                "tags": ["Activities"],
                "summary": "Export the schedule for a date range",
                "parameters": [
                    {"name": "dateFrom", "in": "query", "type": "string", "required": true},
                    {"name": "dateTo", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Schedule file"}
                }
            }
        },
        "/activities/{id}": {
            "get": {
                "tags": ["Activities"],
                "summary": "Get activity",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Activities"],
                "summary": "Update activity",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateActivityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Schedule conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Activities"],
                "summary": "Delete activity",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{id}/series": {
            "get": {
                "tags": ["Recurrence"],
                "summary": "List all members of a recurring series",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "Series members", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Recurrence"],
                "summary": "Update a recurring series member or its future members",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSeriesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Recurrence"],
                "summary": "Delete a recurring series member or its future members",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "scope", "in": "query", "type": "string", "enum": ["THIS_ONLY", "THIS_AND_FUTURE"], "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{id}/submit": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Submit an activity for approval",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{id}/approve": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Approve a pending activity",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities/{id}/reject": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Reject a pending activity",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/drivers": {
            "get": {
                "tags": ["Availability"],
                "summary": "List drivers free for a time window",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Available drivers", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/drivers/{id}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Check whether a specific driver is free",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Availability flag", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/vehicles": {
            "get": {
                "tags": ["Availability"],
                "summary": "List vehicles free for a time window",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Available vehicles", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/vehicles/{id}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Check whether a specific vehicle is free",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Availability flag", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drivers": {
            "get": {
                "tags": ["Drivers"],
                "summary": "List drivers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Drivers"],
                "summary": "Register driver",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDriverRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drivers/{id}": {
            "get": {
                "tags": ["Drivers"],
                "summary": "Get driver",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Drivers"],
                "summary": "Update driver",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDriverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Drivers"],
                "summary": "Deactivate driver",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/vehicles": {
            "get": {
                "tags": ["Vehicles"],
                "summary": "List vehicles",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Vehicles"],
                "summary": "Register vehicle",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateVehicleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vehicles/{id}": {
            "get": {
                "tags": ["Vehicles"],
                "summary": "Get vehicle",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Vehicles"],
                "summary": "Update vehicle",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateVehicleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Vehicles"],
                "summary": "Deactivate vehicle",
                "parameters": [{"name": "id", "in": "path", "type": "integer", "required": true}],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Scheduling engine counters as JSON",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Activity": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "date": {"type": "string", "format": "date-time"},
                "leave_time": {"type": "string", "example": "07:30"},
                "event_time": {"type": "string", "example": "09:00"},
                "return_time": {"type": "string", "example": "14:00"},
                "driver_id": {"type": "integer"},
                "vehicle_id": {"type": "integer"},
                "activity_type": {"type": "string"},
                "destination": {"type": "string"},
                "requested_by": {"type": "string"},
                "description": {"type": "string"},
                "notes": {"type": "string"},
                "expected_passengers": {"type": "integer"},
                "status": {"type": "string"},
                "recurring_series_id": {"type": "integer"}
            }
        },
        "CreateActivityRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "leave_time": {"type": "string", "example": "07:30"},
                "event_time": {"type": "string", "example": "09:00"},
                "return_time": {"type": "string", "example": "14:00"},
                "driver_id": {"type": "integer"},
                "vehicle_id": {"type": "integer"},
                "activity_type": {"type": "string"},
                "destination": {"type": "string"},
                "requested_by": {"type": "string"},
                "description": {"type": "string"},
                "expected_passengers": {"type": "integer"}
            },
            "required": ["date", "activity_type", "destination", "description"]
        },
        "UpdateActivityRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date-time"},
                "leave_time": {"type": "string", "example": "07:30"},
                "event_time": {"type": "string", "example": "09:00"},
                "return_time": {"type": "string", "example": "14:00"},
                "driver_id": {"type": "integer"},
                "vehicle_id": {"type": "integer"},
                "activity_type": {"type": "string"},
                "destination": {"type": "string"},
                "description": {"type": "string"},
                "notes": {"type": "string"},
                "expected_passengers": {"type": "integer"}
            }
        },
        "RecurrenceRule": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["DAILY", "WEEKLY", "MONTHLY", "YEARLY"]},
                "interval": {"type": "integer", "minimum": 1},
                "days_of_week": {"type": "array", "items": {"type": "integer"}},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            },
            "required": ["type", "start_date", "end_date"]
        },
        "CreateRecurringRequest": {
            "type": "object",
            "properties": {
                "activity": {"$ref": "#/definitions/CreateActivityRequest"},
                "rule": {"$ref": "#/definitions/RecurrenceRule"}
            },
            "required": ["activity", "rule"]
        },
        "UpdateSeriesRequest": {
            "type": "object",
            "properties": {
                "scope": {"type": "string", "enum": ["THIS_ONLY", "THIS_AND_FUTURE"]},
                "activity": {"$ref": "#/definitions/UpdateActivityRequest"},
                "status": {"type": "string", "enum": ["SCHEDULED", "PENDING_APPROVAL", "APPROVED", "REJECTED", "IN_PROGRESS", "CANCELLED", "COMPLETED"]}
            },
            "required": ["scope", "activity"]
        },
        "ApproveRequest": {
            "type": "object",
            "properties": {
                "approved_by": {"type": "string"}
            },
            "required": ["approved_by"]
        },
        "RejectRequest": {
            "type": "object",
            "properties": {
                "rejected_by": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["rejected_by"]
        },
        "CreateDriverRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "license_number": {"type": "string"}
            },
            "required": ["full_name"]
        },
        "UpdateDriverRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "phone": {"type": "string"},
                "license_number": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "CreateVehicleRequest": {
            "type": "object",
            "properties": {
                "vehicle_number": {"type": "string"},
                "make": {"type": "string"},
                "model": {"type": "string"},
                "capacity": {"type": "integer"},
                "license_plate": {"type": "string"}
            },
            "required": ["vehicle_number"]
        },
        "UpdateVehicleRequest": {
            "type": "object",
            "properties": {
                "vehicle_number": {"type": "string"},
                "make": {"type": "string"},
                "model": {"type": "string"},
                "capacity": {"type": "integer"},
                "license_plate": {"type": "string"},
                "status": {"type": "string"}
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
