package interfaces

import "context"

// GenerationMode represents the operational mode of the generation service
type GenerationMode string

const (
	// GenerationModeCloud indicates the service uses cloud LLM APIs
	GenerationModeCloud GenerationMode = "cloud"

	// GenerationModeOffline indicates the service uses a local
	// deterministic backend (tests, air-gapped runs)
	GenerationModeOffline GenerationMode = "offline"
)

// GenerationRequest is a provider-agnostic text generation request
type GenerationRequest struct {
	// System is the system instruction prepended to the conversation
	System string

	// Prompt is the user-turn content
	Prompt string

	// MaxTokens caps the response length; 0 uses the provider default
	MaxTokens int

	// Temperature controls sampling; 0 uses the provider default
	Temperature float32
}

// GenerationService defines the interface for text generation. The
// returned text is raw provider output; callers own any structured
// parsing and are responsible for treating malformed output as a
// recoverable defect rather than a transport failure.
type GenerationService interface {
	// Generate produces a completion for the request. An error means
	// the capability itself was unreachable or exhausted its retries,
	// not that the output was malformed.
	Generate(ctx context.Context, req *GenerationRequest) (string, error)

	// GetMode returns the current operational mode
	GetMode() GenerationMode

	// Close releases provider clients and resources
	Close() error
}
