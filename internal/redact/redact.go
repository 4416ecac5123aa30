// Package redact strips sensitive values from strings before they reach
// logs or error responses. Error messages bubbling up from the database
// layer or outbound notification calls can carry connection strings,
// tokens, and recipient addresses that must never be persisted in logs.
package redact

import "regexp"

// Redaction placeholders.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	HostPlaceholder       = "[REDACTED_HOST]"
	SQLPlaceholder        = "[REDACTED_SQL]"
)

var (
	// Database connection URLs with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres(ql)?|mysql)://[^@\s]+@`)

	// Password-like assignments from config or driver errors.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)

	// Three-part base64url JWTs.
	jwtRegex = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// Telegram bot tokens, as they appear in Bot API URLs and errors.
	botTokenRegex = regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}`)

	// Generic secret assignments (SMTP credentials, API keys).
	secretRegex = regexp.MustCompile(`(?i)(secret|token|api[_-]?key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Recipient email addresses from delivery errors.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// host:port fragments from dial errors.
	hostPortRegex = regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`)

	// SQL fragments leaked through driver errors.
	sqlRegex = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"]+)?`,
	)

	// Order matters: credential patterns run before the broad host pattern
	// so a connection URL is not half-consumed as a hostname first.
	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{dbConnRegex, CredentialPlaceholder},
		{passwordRegex, CredentialPlaceholder},
		{jwtRegex, TokenPlaceholder},
		{botTokenRegex, TokenPlaceholder},
		{secretRegex, TokenPlaceholder},
		{emailRegex, EmailPlaceholder},
		{sqlRegex, SQLPlaceholder},
		{hostPortRegex, HostPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
