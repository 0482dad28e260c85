package api

import (
	"slices"

	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/pkg/openapi"
)

// contractParam describes a contract identifier such as CTR-1A2B3C4D.
var contractParam = &openapi.Parameter{
	Name:        "id",
	In:          "path",
	Required:    true,
	Description: "Contract ID",
	Schema:      &openapi.Schema{Type: "string", Pattern: "^CTR-[0-9A-F]{8}$"},
}

func contractIDParam(name string) *openapi.Parameter {
	p := *contractParam
	p.Name = name
	return &p
}

func notFound() *openapi.Response   { return openapi.ResponseRef("NotFound") }
func badRequest() *openapi.Response { return openapi.ResponseRef("BadRequest") }

// buildSpec describes the routes registered by registerRoutes.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(schemas())
	spec.Components.AddResponses(map[string]*openapi.Response{
		"Unprocessable": {
			Description: "Document could not be read",
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: openapi.SchemaRef("Error")},
			},
		},
	})

	page := []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Search query", false),
		openapi.QueryParam("sort", "string", "Sort fields; prefix with - for descending", false),
	}

	spec.Paths["/contracts"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List contracts",
			Tags:       []string{"contracts"},
			Parameters: page,
			Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Contract page", "ContractPage")},
		},
		Post: &openapi.Operation{
			Summary: "Upload a contract",
			Tags:    []string{"contracts"},
			RequestBody: &openapi.RequestBody{
				Required: true,
				Content: map[string]*openapi.MediaType{
					"multipart/form-data": {Schema: &openapi.Schema{
						Type:       "object",
						Properties: map[string]*openapi.Schema{"file": {Type: "string", Format: "binary"}},
						Required:   []string{"file"},
					}},
				},
			},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Stored contract", "Contract"),
				400: badRequest(),
				415: {Description: "Unsupported document format"},
				422: openapi.ResponseRef("Unprocessable"),
			},
		},
	}
	spec.Paths["/contracts/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search contracts",
			Tags:        []string{"contracts"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", false),
			Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Contract page", "ContractPage")},
		},
	}
	spec.Paths["/contracts/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a contract",
			Tags:       []string{"contracts"},
			Parameters: []*openapi.Parameter{contractParam},
			Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Contract", "Contract"), 404: notFound()},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a contract and its analyses",
			Tags:       []string{"contracts"},
			Parameters: []*openapi.Parameter{contractParam},
			Responses:  map[int]*openapi.Response{204: {Description: "Deleted"}, 404: notFound()},
		},
	}
	spec.Paths["/contracts/{id}/file"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download the stored document",
			Tags:       []string{"contracts"},
			Parameters: []*openapi.Parameter{contractParam},
			Responses:  map[int]*openapi.Response{200: {Description: "Document bytes"}, 404: notFound()},
		},
	}
	spec.Paths["/contracts/{id}/similar"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Find contracts similar to an indexed contract",
			Tags:    []string{"vectors"},
			Parameters: []*openapi.Parameter{
				contractParam,
				openapi.QueryParam("top_k", "integer", "Maximum matches", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Ranked matches", Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Match")}},
				}},
				404: notFound(),
				503: {Description: "Vector indexing disabled"},
			},
		},
	}
	spec.Paths["/contracts/similar"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Find contracts similar to free text",
			Tags:        []string{"vectors"},
			RequestBody: openapi.RequestBodyJSON("SimilarRequest", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Ranked matches", Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Match")}},
				}},
				400: badRequest(),
				503: {Description: "Vector indexing disabled"},
			},
		},
	}

	spec.Paths["/analyses"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List analyses",
			Tags:    []string{"analyses"},
			Parameters: slices.Concat(page, []*openapi.Parameter{
				openapi.QueryParam("contract_id", "string", "Filter by contract", false),
				openapi.QueryParam("risk_level", "string", "Filter by risk level", false),
			}),
			Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Analysis page", "AnalysisPage")},
		},
	}
	spec.Paths["/analyses/history"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:   "Most recently uploaded contracts",
			Tags:      []string{"analyses"},
			Responses: map[int]*openapi.Response{200: {Description: "Up to ten contracts, newest first"}},
		},
	}
	spec.Paths["/analyses/stats"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:   "Aggregate analysis statistics",
			Tags:      []string{"analyses"},
			Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Statistics", "Stats")},
		},
	}
	spec.Paths["/analyses/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find an analysis",
			Tags:       []string{"analyses"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Analysis ID")},
			Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("Analysis", "Analysis"), 404: notFound()},
		},
		Post: &openapi.Operation{
			Summary:     "Analyze a stored contract",
			Description: "The path identifier is a contract ID. Settings omitted from the body use configured defaults.",
			Tags:        []string{"analyses"},
			Parameters:  []*openapi.Parameter{contractIDParam("id")},
			RequestBody: openapi.RequestBodyJSON("RunCommand", false),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Persisted analysis", "Analysis"),
				400: badRequest(),
				404: notFound(),
				422: openapi.ResponseRef("Unprocessable"),
				502: {Description: "Model backend unavailable"},
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete an analysis",
			Tags:       []string{"analyses"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Analysis ID")},
			Responses:  map[int]*openapi.Response{204: {Description: "Deleted"}, 404: notFound()},
		},
	}
	spec.Paths["/analyses/{id}/findings"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List the findings of an analysis",
			Tags:       []string{"analyses"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Analysis ID")},
			Responses:  map[int]*openapi.Response{200: {Description: "Findings"}, 404: notFound()},
		},
	}

	spec.Paths["/feedback/{contractId}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List feedback for a contract",
			Tags:       []string{"feedback"},
			Parameters: []*openapi.Parameter{contractIDParam("contractId")},
			Responses:  map[int]*openapi.Response{200: {Description: "Feedback entries"}, 404: notFound()},
		},
		Post: &openapi.Operation{
			Summary:     "Record feedback for a contract",
			Tags:        []string{"feedback"},
			Parameters:  []*openapi.Parameter{contractIDParam("contractId")},
			RequestBody: openapi.RequestBodyJSON("FeedbackCommand", true),
			Responses:   map[int]*openapi.Response{201: {Description: "Stored feedback"}, 400: badRequest(), 404: notFound()},
		},
	}

	spec.Paths["/prompts"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List prompt overrides",
			Tags:       []string{"prompts"},
			Parameters: page,
			Responses:  map[int]*openapi.Response{200: {Description: "Prompt page"}},
		},
	}

	return spec
}

func schemas() map[string]*openapi.Schema {
	str := func(desc string) *openapi.Schema { return &openapi.Schema{Type: "string", Description: desc} }
	num := func(desc string) *openapi.Schema { return &openapi.Schema{Type: "number", Description: desc} }

	return map[string]*openapi.Schema{
		"Error": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"error": str("Error message")},
		},
		"Contract": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            str("Contract ID"),
				"filename":      str("Original filename"),
				"content_type":  str("Detected content type"),
				"size_bytes":    {Type: "integer"},
				"page_count":    {Type: "integer"},
				"status":        {Type: "string", Enum: []any{"uploaded", "analyzing", "analyzed", "failed"}},
				"contract_type": str("Latest classification"),
				"risk_score":    num("Latest risk score"),
				"confidence":    num("Latest confidence"),
			},
		},
		"ContractPage": pageOf("Contract"),
		"Analysis": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"contract_id":       str("Contract ID"),
				"contract_type":     str("Classified contract type"),
				"tone":              toneSchema(),
				"focus":             {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"risk_threshold":    num("Threshold the score was compared against"),
				"summary":           str("One-line report summary"),
				"confidence":        num("Reported confidence"),
				"risk_score":        num("Aggregate risk score"),
				"risk_level":        str("Conservative, Moderate, or Aggressive"),
				"exceeds_threshold": {Type: "boolean"},
				"report":            {Type: "object", Description: "Full structured report"},
			},
		},
		"AnalysisPage": pageOf("Analysis"),
		"RunCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"tone":           toneSchema(),
				"focus":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"risk_threshold": num("Risk threshold in [0, 1]"),
			},
		},
		"Stats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"total_contracts": {Type: "integer"},
				"total_analyses":  {Type: "integer"},
				"avg_risk":        num("Mean risk score"),
			},
		},
		"Match": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":          str("Vector record ID"),
				"contract_id": str("Contract ID"),
				"score":       num("Cosine similarity"),
			},
		},
		"SimilarRequest": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"text": str("Query text"), "top_k": {Type: "integer"}},
			Required:   []string{"text"},
		},
		"FeedbackCommand": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"text": str("Reviewer feedback")},
			Required:   []string{"text"},
		},
	}
}

func pageOf(item string) *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef(item)},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
}

func toneSchema() *openapi.Schema {
	enum := make([]any, len(config.Tones))
	for i, t := range config.Tones {
		enum[i] = t
	}
	return &openapi.Schema{Type: "string", Enum: enum}
}
