// Package openapi builds the OpenAPI description of the crisis data API.
package openapi

import (
	"encoding/json"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	Title   = "Crisis Financial Data API"
	Version = "1.0.0"

	securitySchemeName = "apiKey"
)

// Build returns the document served at /api/docs/openapi.json.
func Build(baseURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       Title,
			Description: "Historical financial and economic crises. Every endpoint requires an API key.",
			Version:     Version,
		},
		Servers: openapi3.Servers{{URL: baseURL}},
	}

	crisis, failure := crisisSchema(), errorSchema()

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		"Crisis":        crisis,
		"ErrorResponse": failure,
	}
	components.SecuritySchemes = openapi3.SecuritySchemes{
		securitySchemeName: &openapi3.SecuritySchemeRef{
			Value: openapi3.NewSecurityScheme().
				WithType("apiKey").
				WithIn("header").
				WithName("X-API-KEY").
				WithDescription("Key issued from the dashboard or by the generate-api-key command."),
		},
	}
	doc.Components = &components
	doc.Security = openapi3.SecurityRequirements{{securitySchemeName: {}}}

	crisisRef := openapi3.NewSchemaRef("#/components/schemas/Crisis", crisis.Value)
	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", failure.Value)
	crisisList := &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: crisisRef}}

	doc.Paths = openapi3.NewPaths()
	doc.Paths.Set("/api/crises/", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"crises"},
			Summary:     "List crises",
			OperationID: "listCrises",
			Parameters: openapi3.Parameters{
				intQuery("page", "Page number, starting at 1."),
				intQuery("limit", "Items per page, at most 100."),
				{Value: openapi3.NewQueryParameter("type").
					WithDescription("Only return crises of this type (case-insensitive).").
					WithSchema(openapi3.NewStringSchema())},
			},
			Responses: responses("Paginated crises", errorRef, &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"data": crisisList,
					"meta": metaSchema(),
				},
			}}),
		},
	})
	doc.Paths.Set("/api/crises/stats", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"crises"},
			Summary:     "API statistics",
			OperationID: "crisisStats",
			Responses: responses("Statistics", errorRef, &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"name":         openapi3.NewStringSchema().NewRef(),
					"version":      openapi3.NewStringSchema().NewRef(),
					"total_crises": openapi3.NewIntegerSchema().NewRef(),
				},
			}}),
		},
	})
	doc.Paths.Set("/api/crises/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"crises"},
			Summary:     "Get a crisis",
			OperationID: "getCrisis",
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
			},
			Responses: responses("The crisis", errorRef, crisisRef, "404"),
		},
	})
	doc.Paths.Set("/api/crises/search/by-type/{type}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"crises"},
			Summary:     "Search crises by type",
			OperationID: "searchCrisesByType",
			Parameters: openapi3.Parameters{
				{Value: openapi3.NewPathParameter("type").WithSchema(openapi3.NewStringSchema())},
			},
			Responses: responses("Matching crises", errorRef, &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: &openapi3.Types{"object"},
				Properties: openapi3.Schemas{
					"type":  openapi3.NewStringSchema().NewRef(),
					"count": openapi3.NewIntegerSchema().NewRef(),
					"data":  crisisList,
				},
			}}),
		},
	})

	return doc
}

// JSON renders the document built for baseURL.
func JSON(baseURL string) ([]byte, error) {
	return json.Marshal(Build(baseURL))
}

func intQuery(name, description string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter(name).
			WithDescription(description).
			WithSchema(openapi3.NewIntegerSchema().WithMin(1)),
	}
}

func responses(description string, errorRef, schema *openapi3.SchemaRef, extra ...string) *openapi3.Responses {
	r := openapi3.NewResponsesWithCapacity(3 + len(extra))
	r.Set("200", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.NewContentWithJSONSchemaRef(schema))})
	r.Set("401", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Missing, unknown or inactive API key").
		WithContent(openapi3.NewContentWithJSONSchemaRef(errorRef))})
	r.Set("500", &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Crisis data unavailable").
		WithContent(openapi3.NewContentWithJSONSchemaRef(errorRef))})
	for _, status := range extra {
		r.Set(status, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Not found").
			WithContent(openapi3.NewContentWithJSONSchemaRef(errorRef))})
	}
	return r
}

func crisisSchema() *openapi3.SchemaRef {
	str := func() *openapi3.SchemaRef { return openapi3.NewStringSchema().NewRef() }
	list := func() *openapi3.SchemaRef {
		return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()).NewRef()
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:     &openapi3.Types{"object"},
		Required: []string{"id", "name", "type"},
		Properties: openapi3.Schemas{
			"id":                    str(),
			"name":                  str(),
			"type":                  str(),
			"category":              str(),
			"origin":                str(),
			"startDate":             str(),
			"endDate":               str(),
			"durationInMonths":      openapi3.NewIntegerSchema().WithNullable().NewRef(),
			"geographicalExtension": str(),
			"causes":                list(),
			"consequences":          list(),
			"resolutions":           list(),
			"references":            list(),
		},
	}}
}

func errorSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:     &openapi3.Types{"object"},
		Required: []string{"error"},
		Properties: openapi3.Schemas{
			"message": openapi3.NewStringSchema().NewRef(),
			"error":   openapi3.NewStringSchema().NewRef(),
		},
	}}
}

func metaSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type: &openapi3.Types{"object"},
		Properties: openapi3.Schemas{
			"page":     openapi3.NewIntegerSchema().NewRef(),
			"limit":    openapi3.NewIntegerSchema().NewRef(),
			"total":    openapi3.NewIntegerSchema().NewRef(),
			"has_next": openapi3.NewBoolSchema().NewRef(),
		},
	}}
}
