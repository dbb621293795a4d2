package imagegen

import (
	"context"

	"imagen/internal/infra"
	"imagen/internal/providers/bedrock"
	"imagen/internal/storage"
)

// MaxImages is the largest batch any provider will be asked for.
const MaxImages = infra.MaxImagesPerRequest

// Request is a normalized text-to-image request. NumberOfImages must already
// carry its default; values below one are rejected.
type Request struct {
	Prompt         string
	NumberOfImages int
	InputSize      string
	OutputFormat   string
}

// Metadata echoes the normalized input back to the caller.
type Metadata struct {
	Prompt         string `json:"prompt"`
	NumberOfImages *int   `json:"number_of_images,omitempty"`
	InputSize      string `json:"input_size,omitempty"`
	OutputFormat   string `json:"output_format,omitempty"`
}

// Result is the envelope produced by a pipeline run. Single marks providers
// that answer with one URL instead of a list.
type Result struct {
	Status   int
	Message  string
	URLs     []string
	Keys     []string
	Single   bool
	Metadata Metadata
}

// Invoker performs one synchronous model invocation and returns the raw body.
type Invoker interface {
	Invoke(ctx context.Context, inv bedrock.Invocation) ([]byte, error)
}

// Store persists generated images and returns their public URLs.
type Store interface {
	Validate() error
	Put(ctx context.Context, obj storage.Object) (string, error)
}

// ImageFormat is the file extension and MIME type used when storing images.
type ImageFormat struct {
	Ext         string
	ContentType string
}

// Output is what a provider response boils down to.
type Output struct {
	Images     []string
	Intervened bool
}
