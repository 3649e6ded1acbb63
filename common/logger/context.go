package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Middleware sets the caller fields once per request so handlers and services
// never repeat them in individual log statements.
type LogFields struct {
	UserID    *int64  // Local user ID
	SessionID *int64  // Session ID from the session cookie
	OrgCode   *string // Organization code the operation acts on
	RequestID *string // X-Request-ID of the inbound request
	MessageID *string // Redis stream message ID
	Component string  // Component name, e.g. "workspaces.service.workspace"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.SessionID != nil {
		result.SessionID = next.SessionID
	}
	if next.OrgCode != nil {
		result.OrgCode = next.OrgCode
	}
	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{OrgCode: logger.Ptr(code)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes, appending "..." if truncated.
// Used for upstream error messages echoed into logs.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
