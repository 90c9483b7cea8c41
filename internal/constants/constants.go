package constants

// Session/context keys
const (
	ContextKeyUserID = "user_id"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Memory factlets injected into chat context, ranked by importance.
const MemoryTopN = 10

// SignedURLTTLSeconds is how long issued download links stay valid.
const SignedURLTTLSeconds = 3600
