// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/shelfpulse/main.go
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
        "/predict": {
            "post": {
                "description": "Run every model over one feature mapping. Nothing is stored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict one product",
                "parameters": [
                    {"description": "Feature name to value", "name": "features", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/inference.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/predict_csv": {
            "post": {
                "description": "Predict every row of an uploaded CSV and return it with six prediction columns appended.",
                "consumes": ["multipart/form-data"],
                "produces": ["text/csv"],
                "tags": ["predict"],
                "summary": "Predict a CSV file",
                "parameters": [
                    {"type": "file", "description": "Product feature table", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/product/{sku}": {
            "get": {
                "description": "Product features and its latest cached prediction (null when none).",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "string", "description": "Product SKU", "name": "sku", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/product/{sku}/refresh": {
            "post": {
                "description": "Recompute the prediction of a product and make it the latest.",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Refresh one product",
                "parameters": [
                    {"type": "string", "description": "Product SKU", "name": "sku", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/product/{sku}/predictions": {
            "get": {
                "description": "Stored predictions of a product, newest first.",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Prediction history",
                "parameters": [
                    {"type": "string", "description": "Product SKU", "name": "sku", "in": "path", "required": true},
                    {"type": "integer", "default": 100, "description": "Maximum number of predictions", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PredictionHistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "description": "Products with a latest prediction, filtered by any product or prediction field.\nA parameter matches exactly; the _gt and _lt suffixes compare numbers.\nUnknown parameters are ignored and echoed in X-Ignored-Filters.",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Search products",
                "parameters": [
                    {"type": "integer", "default": 100, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Rows to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ProductResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/run_cache": {
            "post": {
                "description": "Predict every product and store the results as their latest predictions.\nBlocks until the whole catalog has been processed.",
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Recompute cached predictions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RunCacheResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.RunCacheResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.RunCacheResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.PredictionResponse": {
            "type": "object",
            "properties": {
                "spoilage_risk": {"type": "string"},
                "days_to_expiry_pred": {"type": "integer"},
                "forecasted_demand_pred": {"type": "number"},
                "dead_stock": {"type": "boolean"},
                "suggested_markdown_percent": {"type": "number"},
                "trigger_markdown": {"type": "boolean"},
                "sustainability_label": {"type": "string"}
            }
        },
        "dto.PredictionHistoryItem": {
            "type": "object",
            "properties": {
                "spoilage_risk": {"type": "string"},
                "days_to_expiry_pred": {"type": "integer"},
                "forecasted_demand_pred": {"type": "number"},
                "dead_stock": {"type": "boolean"},
                "suggested_markdown_percent": {"type": "number"},
                "trigger_markdown": {"type": "boolean"},
                "sustainability_label": {"type": "string"},
                "run_id": {"type": "string"},
                "created_at": {"type": "string"},
                "is_latest": {"type": "boolean"}
            }
        },
        "dto.PredictionHistoryResponse": {
            "type": "object",
            "properties": {
                "sku": {"type": "string"},
                "predictions": {"type": "array", "items": {"$ref": "#/definitions/dto.PredictionHistoryItem"}}
            }
        },
        "dto.ProductResponse": {
            "type": "object",
            "properties": {
                "sku": {"type": "string"},
                "category": {"type": "string"},
                "features": {"type": "object", "additionalProperties": true},
                "prediction": {"$ref": "#/definitions/dto.PredictionResponse"}
            }
        },
        "dto.ItemFailure": {
            "type": "object",
            "properties": {"sku": {"type": "string"}, "error": {"type": "string"}}
        },
        "dto.BatchSummary": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "policy": {"type": "string"},
                "committed": {"type": "boolean"},
                "total": {"type": "integer"},
                "success_count": {"type": "integer"},
                "failure_count": {"type": "integer"},
                "failures": {"type": "array", "items": {"$ref": "#/definitions/dto.ItemFailure"}},
                "duration_ms": {"type": "integer"}
            }
        },
        "dto.RunCacheResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "result": {"$ref": "#/definitions/dto.BatchSummary"}
            }
        },
        "inference.Result": {
            "type": "object",
            "properties": {
                "spoilage_risk": {"type": "string"},
                "days_to_expiry": {"type": "integer"},
                "forecasted_demand": {"type": "number"},
                "dead_stock": {"type": "boolean"},
                "trigger_markdown": {"type": "boolean"},
                "suggested_markdown_percent": {"type": "number"},
                "sustainability_label": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "ShelfPulse API",
	Description:      "Shelf-level predictions for perishable retail inventory",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
