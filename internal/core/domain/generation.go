package domain

// GenerationMode says whether the answer was conditioned on retrieved context.
type GenerationMode string

const (
	ModeGrounded GenerationMode = "grounded"
	ModeGeneral  GenerationMode = "general"
)

// GenerationResult is the transient output of the generation engine.
// Answer is guaranteed non-empty by the engine's validation gate.
type GenerationResult struct {
	Answer       string         `json:"answer"`
	Mode         GenerationMode `json:"mode"`
	UsedFallback bool           `json:"used_fallback"`
}

// ChatResult is the assembled per-request pipeline output. FallbackReason is
// observability-only and stays off the wire.
type ChatResult struct {
	Answer         string             `json:"answer"`
	Mode           GenerationMode     `json:"mode"`
	UsedFallback   bool               `json:"used_fallback"`
	Suggestions    []PolicySuggestion `json:"policy_suggestions"`
	Sources        []RetrievedChunk   `json:"sources"`
	SessionID      string             `json:"session_id"`
	FallbackReason string             `json:"-"`
}
