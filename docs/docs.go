// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/cinebook/main.go
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
		"/healthz": {
			"get": {
				"summary": "Health check",
				"tags": [
					"system"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				}
			}
		},
		"/auth/sign-up": {
			"post": {
				"summary": "Sign up",
				"tags": [
					"auth"
				],
				"parameters": [
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.SignUpRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.AuthResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"429": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/sign-in": {
			"post": {
				"summary": "Sign in",
				"tags": [
					"auth"
				],
				"parameters": [
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.SignInRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.AuthResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"429": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/session": {
			"delete": {
				"summary": "Sign out of the current session",
				"tags": [
					"auth"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/me": {
			"get": {
				"summary": "Signed-in user",
				"tags": [
					"auth"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.UserResponse"
						}
					},
					"401": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/cities": {
			"get": {
				"summary": "Cities a flow can start in",
				"tags": [
					"catalog"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.CitiesResponse"
						}
					}
				}
			}
		},
		"/movies": {
			"get": {
				"summary": "Movies now showing and upcoming",
				"tags": [
					"catalog"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.MoviesResponse"
						}
					},
					"502": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/movies/{id}": {
			"get": {
				"summary": "Get movie",
				"tags": [
					"catalog"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Movie ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.MovieResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/admin/movies": {
			"post": {
				"summary": "Create movie",
				"tags": [
					"admin"
				],
				"parameters": [
					{
						"type": "string",
						"description": "admin key",
						"name": "X-Admin-Key",
						"in": "header",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.CreateMovieRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.MovieResponse"
						}
					},
					"403": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/preferences/city": {
			"get": {
				"summary": "Preferred city",
				"tags": [
					"preferences"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.PreferredCityResponse"
						}
					}
				}
			},
			"put": {
				"summary": "Remember the preferred city",
				"tags": [
					"preferences"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.CityRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.PreferredCityResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows": {
			"post": {
				"summary": "Start a selection flow",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					}
				}
			}
		},
		"/flows/{id}": {
			"get": {
				"summary": "Get flow",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"summary": "Cancel flow",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
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
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/events": {
			"get": {
				"summary": "Stream flow transitions",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"text/event-stream"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.FlowEvent"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/city": {
			"put": {
				"summary": "Select city",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.FlowCityRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/movie": {
			"put": {
				"summary": "View movie",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.MovieRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/date": {
			"put": {
				"summary": "Select show date",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.DateRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/theater": {
			"put": {
				"summary": "Select theater",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.TheaterRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/time": {
			"put": {
				"summary": "Select show time",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "req",
						"required": true,
						"schema": {
							"$ref": "#/definitions/httpgin.TimeRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/seats/{seat}": {
			"post": {
				"summary": "Toggle seat",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Seat code, e.g. A1",
						"name": "seat",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/flow.Snapshot"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/confirm": {
			"post": {
				"summary": "Confirm selection",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.OrderResponse"
						}
					},
					"422": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/flows/{id}/book": {
			"post": {
				"summary": "Book confirmed selection (idempotent)",
				"tags": [
					"flows"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Flow ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "retry key",
						"name": "Idempotency-Key",
						"in": "header"
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/httpgin.TicketResponse"
						},
						"headers": {
							"Idempotency-Key": {
								"type": "string",
								"description": "echo"
							}
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"410": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					},
					"502": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/tickets": {
			"get": {
				"summary": "My tickets",
				"tags": [
					"tickets"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/httpgin.TicketResponse"
							}
						}
					}
				}
			}
		},
		"/tickets/events": {
			"get": {
				"summary": "Stream my new tickets",
				"tags": [
					"tickets"
				],
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
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.TicketResponse"
						}
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/tickets/{id}": {
			"get": {
				"summary": "Get ticket",
				"tags": [
					"tickets"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Ticket ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/httpgin.TicketResponse"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		},
		"/tickets/{id}/qrcode": {
			"get": {
				"summary": "Ticket QR code",
				"tags": [
					"tickets"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"image/png"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Ticket ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "pixels, default 256",
						"name": "size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/httpgin.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"flow.Snapshot": {
			"type": "object",
			"properties": {
				"flow_id": {
					"type": "string"
				},
				"version": {
					"type": "integer"
				},
				"state": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"movie_id": {
					"type": "string"
				},
				"movie_title": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"theater": {
					"type": "string"
				},
				"time": {
					"type": "string"
				},
				"seats": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"total_amount": {
					"type": "integer"
				},
				"submitting": {
					"type": "boolean"
				}
			}
		},
		"httpgin.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"missing": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"httpgin.SignUpRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string",
					"minLength": 8
				},
				"username": {
					"type": "string",
					"maxLength": 64
				}
			},
			"required": [
				"email",
				"password",
				"username"
			]
		},
		"httpgin.SignInRequest": {
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
		"httpgin.AuthResponse": {
			"type": "object",
			"properties": {
				"user": {
					"$ref": "#/definitions/httpgin.UserResponse"
				},
				"token": {
					"type": "string"
				},
				"expires_at": {
					"type": "string"
				}
			}
		},
		"httpgin.UserResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"username": {
					"type": "string"
				},
				"city": {
					"type": "string"
				}
			}
		},
		"httpgin.CitiesResponse": {
			"type": "object",
			"properties": {
				"cities": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"httpgin.MovieResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"thumbnail": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"theaters": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"timings": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"httpgin.MoviesResponse": {
			"type": "object",
			"properties": {
				"now_showing": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/httpgin.MovieResponse"
					}
				},
				"upcoming": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/httpgin.MovieResponse"
					}
				}
			}
		},
		"httpgin.CreateMovieRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				},
				"thumbnail": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"theaters": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"timings": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			},
			"required": [
				"title",
				"status"
			]
		},
		"httpgin.CityRequest": {
			"type": "object",
			"properties": {
				"city": {
					"type": "string"
				}
			},
			"required": [
				"city"
			]
		},
		"httpgin.FlowCityRequest": {
			"type": "object",
			"properties": {
				"city": {
					"type": "string"
				}
			},
			"required": [
				"city"
			]
		},
		"httpgin.PreferredCityResponse": {
			"type": "object",
			"properties": {
				"city": {
					"type": "string"
				},
				"set": {
					"type": "boolean"
				}
			}
		},
		"httpgin.MovieRequest": {
			"type": "object",
			"properties": {
				"movie_id": {
					"type": "string"
				}
			},
			"required": [
				"movie_id"
			]
		},
		"httpgin.DateRequest": {
			"type": "object",
			"properties": {
				"date": {
					"type": "string"
				}
			},
			"required": [
				"date"
			]
		},
		"httpgin.TheaterRequest": {
			"type": "object",
			"properties": {
				"theater": {
					"type": "string"
				}
			},
			"required": [
				"theater"
			]
		},
		"httpgin.TimeRequest": {
			"type": "object",
			"properties": {
				"time": {
					"type": "string"
				}
			},
			"required": [
				"time"
			]
		},
		"httpgin.OrderResponse": {
			"type": "object",
			"properties": {
				"flow_id": {
					"type": "string"
				},
				"city": {
					"type": "string"
				},
				"movie_id": {
					"type": "string"
				},
				"movie_title": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"theater": {
					"type": "string"
				},
				"time": {
					"type": "string"
				},
				"seats": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"unit_price": {
					"type": "integer"
				},
				"total_amount": {
					"type": "integer"
				}
			}
		},
		"httpgin.TicketResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"movie": {
					"type": "string"
				},
				"theater": {
					"type": "string"
				},
				"date": {
					"type": "string"
				},
				"time": {
					"type": "string"
				},
				"seats": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"city": {
					"type": "string"
				},
				"img": {
					"type": "string"
				},
				"amount": {
					"type": "integer"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"httpgin.FlowEvent": {
			"type": "object",
			"properties": {
				"changed": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"flow": {
					"$ref": "#/definitions/flow.Snapshot"
				}
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cinebook API",
	Description:      "Movie ticket booking: pick a city, movie, date, theater, showtime and seats, then book.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
