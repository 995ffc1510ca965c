package router

import "strings"

// Turn is a single prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one normalized user utterance plus the conversational
// context it arrived with. A Request is built once per turn and never
// mutated afterwards; services receive the same value concurrently.
type Request struct {
	// Utterance is the raw user text for this turn.
	Utterance string
	// IntentTags are intent hints inferred upstream (may be empty).
	IntentTags []string
	// Context is the ordered history of prior turns, oldest first.
	Context []Turn
	// UserID is the opaque identity token of the authenticated user.
	UserID string
	// SessionID identifies the conversation this turn belongs to.
	SessionID string
	// Args are slot values extracted upstream (destination, city, ...).
	// Services fall back to scanning the utterance when a slot is absent.
	Args map[string]string

	normalized string
}

// NewRequest constructs an immutable per-turn request. The utterance is
// normalized (trimmed, lower-cased) once so that every Score call sees
// identical input.
func NewRequest(utterance, userID, sessionID string, opts ...RequestOption) *Request {
	r := &Request{
		Utterance: strings.TrimSpace(utterance),
		UserID:    userID,
		SessionID: sessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.normalized = strings.ToLower(r.Utterance)
	return r
}

// RequestOption customizes a Request at construction time.
type RequestOption func(*Request)

// WithIntentTags attaches upstream intent hints.
func WithIntentTags(tags []string) RequestOption {
	return func(r *Request) { r.IntentTags = tags }
}

// WithContext attaches the prior conversation turns.
func WithContext(turns []Turn) RequestOption {
	return func(r *Request) { r.Context = turns }
}

// WithArgs attaches upstream-extracted slot values.
func WithArgs(args map[string]string) RequestOption {
	return func(r *Request) { r.Args = args }
}

// Normalized returns the lower-cased, trimmed utterance.
func (r *Request) Normalized() string {
	if r.normalized == "" && r.Utterance != "" {
		// Request built directly rather than via NewRequest.
		return strings.ToLower(strings.TrimSpace(r.Utterance))
	}
	return r.normalized
}

// Arg returns the named slot value, or fallback when it is absent or blank.
func (r *Request) Arg(name, fallback string) string {
	if v, ok := r.Args[name]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// HasTag reports whether an upstream intent tag is present (case-insensitive).
func (r *Request) HasTag(tag string) bool {
	for _, t := range r.IntentTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
