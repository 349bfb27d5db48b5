// Package docs is maintained by hand in the layout swag init produces.
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
		"/api/v1/users/register": {
			"post": {
				"tags": [
					"users"
				],
				"summary": "Register an account",
				"parameters": [
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"409": {
						"description": "account or email taken",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/users/login": {
			"post": {
				"tags": [
					"users"
				],
				"summary": "Log in",
				"parameters": [
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"401": {
						"description": "invalid credentials",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/users/me": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "Current user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/users/me/orders": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "List own orders",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/users/me/notifications": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "Own notifications, newest first",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/users/me/notifications/{id}/read": {
			"patch": {
				"tags": [
					"users"
				],
				"summary": "Mark a notification read",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Notification ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/users/me/stream": {
			"get": {
				"tags": [
					"users"
				],
				"summary": "Live notifications for the current user (SSE)",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"text/event-stream"
				],
				"responses": {
					"200": {
						"description": "one notification event each",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"503": {
						"description": "streaming unavailable",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/categories": {
			"get": {
				"tags": [
					"catalog"
				],
				"summary": "List categories",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/categories/hot": {
			"get": {
				"tags": [
					"catalog"
				],
				"summary": "Categories with the most events",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/tags": {
			"get": {
				"tags": [
					"catalog"
				],
				"summary": "List tags",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/events": {
			"get": {
				"tags": [
					"events"
				],
				"summary": "List active events",
				"parameters": [
					{
						"type": "string",
						"description": "filter by category (uuid)",
						"name": "categoryId",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "page size",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "offset",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/events/{id}": {
			"get": {
				"tags": [
					"events"
				],
				"summary": "Event with its sessions",
				"parameters": [
					{
						"type": "string",
						"description": "Event ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/sessions/{id}": {
			"get": {
				"tags": [
					"events"
				],
				"summary": "Session availability",
				"parameters": [
					{
						"type": "string",
						"description": "Session ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/sessions/{id}/stream": {
			"get": {
				"tags": [
					"events"
				],
				"summary": "Live session availability (SSE)",
				"parameters": [
					{
						"type": "string",
						"description": "Session ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"produces": [
					"text/event-stream"
				],
				"responses": {
					"200": {
						"description": "one session event per change",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"503": {
						"description": "streaming unavailable",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/orders": {
			"post": {
				"tags": [
					"orders"
				],
				"summary": "Place an order (idempotent)",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "replays the first response for the same key",
						"name": "Idempotency-Key",
						"in": "header"
					},
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.PlaceOrderRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"400": {
						"description": "invalid cart",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"404": {
						"description": "session not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"409": {
						"description": "sales closed / insufficient inventory / key in progress",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"429": {
						"description": "rate limited",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"500": {
						"description": "persistence failure",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/orders/{id}": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Get own order with tickets",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Order ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/payments/ecpay/return": {
			"post": {
				"tags": [
					"payments"
				],
				"summary": "Payment gateway callback",
				"consumes": [
					"application/x-www-form-urlencoded"
				],
				"produces": [
					"text/plain"
				],
				"responses": {
					"200": {
						"description": "1|OK",
						"schema": {
							"type": "string"
						}
					},
					"401": {
						"description": "bad signature",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"404": {
						"description": "unknown order",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"409": {
						"description": "conflicting outcome",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/tickets/{id}": {
			"get": {
				"tags": [
					"tickets"
				],
				"summary": "Get a ticket",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Ticket ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/tickets/{id}/qr": {
			"get": {
				"tags": [
					"tickets"
				],
				"summary": "Ticket QR code",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Ticket ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"produces": [
					"image/png"
				],
				"responses": {
					"200": {
						"description": "PNG",
						"schema": {
							"type": "file"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/tickets/{id}/status": {
			"patch": {
				"tags": [
					"admin"
				],
				"summary": "Check in or void a ticket",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Ticket ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.TicketStatusRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"409": {
						"description": "ticket already used or voided",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/categories": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Create category",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.NameRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"409": {
						"description": "name taken",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/categories/{id}": {
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Delete category",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Category ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"409": {
						"description": "category still has events",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/tags": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Create tag",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.NameRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"409": {
						"description": "name taken",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/tags/{id}": {
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Delete tag",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Tag ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		},
		"/api/v1/admin/events": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Create event with sessions",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.CreateEventRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"404": {
						"description": "unknown category or tag",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/events/{id}": {
			"delete": {
				"tags": [
					"admin"
				],
				"summary": "Soft-delete event",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Event ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					}
				}
			}
		},
		"/api/v1/admin/events/{id}/sessions": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Add a session to an event",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Event ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.SessionRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					}
				}
			}
		},
		"/api/v1/admin/sessions/{id}/areas/{area}": {
			"patch": {
				"tags": [
					"admin"
				],
				"summary": "Change capacity and price of an area",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Session ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Area name",
						"name": "area",
						"in": "path",
						"required": true
					},
					{
						"description": "payload",
						"name": "req",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.UpdateAreaRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"409": {
						"description": "capacity below sold seats",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/admin/orders/{id}/cancel": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Cancel an order",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Order ID (uuid)",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.Envelope"
						}
					},
					"404": {
						"description": "not found",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"409": {
						"description": "failed orders cannot be cancelled",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"httpgin.Envelope": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"example": "success"
				},
				"data": {},
				"message": {
					"type": "string"
				},
				"details": {}
			}
		},
		"httpgin.ErrorResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"example": "error"
				},
				"message": {
					"type": "string",
					"example": "session not found"
				},
				"details": {}
			}
		},
		"httpgin.RegisterRequest": {
			"type": "object",
			"properties": {
				"account": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"user",
						"sponsor"
					]
				}
			},
			"required": [
				"account",
				"email",
				"password"
			]
		},
		"httpgin.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"httpgin.LineItemRequest": {
			"type": "object",
			"properties": {
				"areaName": {
					"type": "string"
				},
				"ticketName": {
					"type": "string"
				},
				"quantity": {
					"type": "integer",
					"minimum": 1
				},
				"unitPrice": {
					"type": "integer"
				}
			},
			"required": [
				"areaName",
				"quantity"
			]
		},
		"httpgin.PlaceOrderRequest": {
			"type": "object",
			"properties": {
				"sessionId": {
					"type": "string"
				},
				"eventId": {
					"type": "string"
				},
				"cart": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/httpgin.LineItemRequest"
					}
				}
			},
			"required": [
				"sessionId",
				"cart"
			]
		},
		"httpgin.NameRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				}
			},
			"required": [
				"name"
			]
		},
		"httpgin.AreaRequest": {
			"type": "object",
			"properties": {
				"areaName": {
					"type": "string"
				},
				"areaColor": {
					"type": "string"
				},
				"areaPrice": {
					"type": "integer"
				},
				"capacity": {
					"type": "integer"
				},
				"areaTicketType": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"ticketName": {
								"type": "string"
							},
							"ticketDiscount": {
								"type": "integer"
							}
						}
					}
				}
			},
			"required": [
				"areaName"
			]
		},
		"httpgin.SessionRequest": {
			"type": "object",
			"properties": {
				"sessionName": {
					"type": "string"
				},
				"sessionPlace": {
					"type": "string"
				},
				"sessionTime": {
					"type": "string",
					"format": "date-time"
				},
				"salesOpen": {
					"type": "string",
					"format": "date-time"
				},
				"salesClose": {
					"type": "string",
					"format": "date-time"
				},
				"areaSetting": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/httpgin.AreaRequest"
					}
				}
			},
			"required": [
				"salesOpen",
				"salesClose",
				"areaSetting"
			]
		},
		"httpgin.CreateEventRequest": {
			"type": "object",
			"properties": {
				"eventName": {
					"type": "string"
				},
				"categoryId": {
					"type": "string"
				},
				"tagList": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"eventDate": {
					"type": "string",
					"format": "date-time"
				},
				"releaseDate": {
					"type": "string",
					"format": "date-time"
				},
				"eventIntro": {
					"type": "string"
				},
				"sessionList": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/httpgin.SessionRequest"
					}
				}
			},
			"required": [
				"eventName",
				"categoryId"
			]
		},
		"httpgin.UpdateAreaRequest": {
			"type": "object",
			"properties": {
				"capacity": {
					"type": "integer"
				},
				"areaPrice": {
					"type": "integer"
				}
			},
			"required": [
				"capacity",
				"areaPrice"
			]
		},
		"httpgin.TicketStatusRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"unused",
						"used",
						"voided"
					]
				}
			},
			"required": [
				"status"
			]
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SportsPass Ticketing API",
	Description:      "Seat inventory, orders and payment settlement for sports events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
