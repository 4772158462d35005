package llm

import (
	"context"
	"errors"

	"fridge-chef/internal/shared"
)

// ErrMissingAPIKey is returned when the selected provider has no credential.
var ErrMissingAPIKey = errors.New("llm: API key not configured")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// JSONRequest asks a model for a JSON document matching Schema.
type JSONRequest struct {
	System string
	Prompt string
	Schema *Schema
}

// JSONGenerator generates JSON constrained by a response schema.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
)

// Schema is the provider-neutral subset of JSON Schema the clients understand.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}
