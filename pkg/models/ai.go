package models

import "context"

// Document is one PDF handed to the AI provider alongside a prompt.
type Document struct {
	Filename string
	Data     []byte
}

// GenerateRequest is the input to an AI generation call. Documents may be
// empty when the prompt carries all the context inline.
type GenerateRequest struct {
	Documents []Document
	Prompt    string
}

// AIProvider is the core interface all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type AIProvider interface {
	// Generate runs the prompt (plus any attached documents) through the
	// model and returns its free-form markdown answer.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// Name returns the provider identifier (e.g., "gemini", "mock").
	Name() string
}
