package constants

// Session
const (
	SessionCookieName = "calendar_session"
	ContextKeyUserID  = "user_id"
)

// Credential policy
const (
	MinPasswordLength = 8
)

// Share tokens
const (
	// ShareTokenBytes is the number of random bytes behind a share token.
	// 24 bytes encode to 32 URL-safe base64 characters.
	ShareTokenBytes = 24

	// ShareTokenMaxAttempts bounds the retry loop when a freshly generated
	// token collides with an existing one.
	ShareTokenMaxAttempts = 5
)
