package pipeline

import (
	"context"
	"fmt"

	"github.com/pythagorakase/nexus-sub001/model"
)

// InvokeFunc is a function that sends an assembled payload to the reasoning
// service and returns its structured answer for the chunk
type InvokeFunc func(ctx context.Context, payload Payload) (*model.ExtractionResult, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Pipeline combines extraction invocation with the optional embedding assist
type Pipeline struct {
	Invoker  InvokeFunc
	Embedder EmbedFunc // Optional
}

// NewPipeline creates a new extraction pipeline
func NewPipeline(invoker InvokeFunc) *Pipeline {
	return &Pipeline{
		Invoker: invoker,
	}
}

// SetEmbedder sets the embedding function used by the place similarity assist
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// Extract invokes the reasoning service on the payload and validates the
// answer against the catalog snapshot the payload was assembled from.
// A validation failure fails the whole chunk, nothing from the answer is used.
func (p *Pipeline) Extract(ctx context.Context, payload Payload) (*model.ExtractionResult, error) {
	if p.Invoker == nil {
		return nil, fmt.Errorf("no invoker configured")
	}

	result, err := p.Invoker(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := result.Validate(payload.Context.Catalog); err != nil {
		return nil, fmt.Errorf("extraction for %s rejected: %w", payload.Context.Current.Label(), err)
	}
	return result, nil
}

// EmbedPlace embeds a place for the similarity assist.
// Name and summary are combined so places with sparse summaries still
// embed distinctly.
func (p *Pipeline) EmbedPlace(name string, summary string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	text := name
	if summary != "" {
		text = name + " - " + summary
	}
	return p.Embedder(text)
}
