package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Intelligencia Scheduling Engine",
        "description": "Multi-tenant timetable generation engine for the Intelligencia platform",
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
        {"name": "Scheduler", "description": "Scheduling job lifecycle"},
        {"name": "Generations", "description": "Persisted schedule generations"}
    ],
    "paths": {
        "/scheduler/jobs": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Queue a timetable generation job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "priority", "in": "query", "type": "integer", "description": "Higher priority jobs are dispatched first"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SchedulingRequest"}}
                ],
                "responses": {
                    "200": {"description": "Job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Queue full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/jobs/{job_id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Poll a scheduling job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "job_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Scheduler"],
                "summary": "Cancel a scheduling job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "job_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancellation outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/queue": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Report worker queue occupancy",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/generations": {
            "get": {
                "tags": ["Generations"],
                "summary": "List schedule generations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "skip", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/generations/{generation_id}": {
            "get": {
                "tags": ["Generations"],
                "summary": "Fetch one generation with its sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "generation_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown generation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Generations"],
                "summary": "Delete a generation and its sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "generation_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown generation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/generations/{generation_id}/export": {
            "get": {
                "tags": ["Generations"],
                "summary": "Download a generation's timetable as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "generation_id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Timetable attachment", "schema": {"type": "file"}},
                    "404": {"description": "Unknown generation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SchedulingRequest": {
            "type": "object",
            "required": ["name", "academic_term", "start_date", "end_date"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "algorithm_type": {"type": "string", "enum": ["csp", "genetic"]},
                "academic_term": {"type": "string"},
                "start_date": {"type": "string", "example": "2026-09-01"},
                "end_date": {"type": "string", "example": "2026-12-20"},
                "max_iterations": {"type": "integer"},
                "faculty_ids": {"type": "array", "items": {"type": "string"}},
                "batch_ids": {"type": "array", "items": {"type": "string"}},
                "subject_ids": {"type": "array", "items": {"type": "string"}},
                "classroom_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SchedulingJobStatus": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "status": {"type": "string", "enum": ["queued", "running", "completed", "failed", "cancelled"]},
                "progress": {"type": "number"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "created_at": {"type": "string"},
                "started_at": {"type": "string"},
                "completed_at": {"type": "string"},
                "schedule_generation_id": {"type": "string"},
                "total_sessions": {"type": "integer"},
                "hard_constraint_violations": {"type": "integer"},
                "soft_constraint_violations": {"type": "integer"},
                "faculty_satisfaction_score": {"type": "number"},
                "batch_satisfaction_score": {"type": "number"},
                "room_utilization": {"type": "number"}
            }
        },
        "QueueStatus": {
            "type": "object",
            "properties": {
                "queue_size": {"type": "integer"},
                "running_workers": {"type": "integer"},
                "max_workers": {"type": "integer"},
                "active_jobs": {"type": "integer"},
                "worker_task_running": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "skip": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
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
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
