package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

const (
	// LogFieldSessionID is the field name for the conversation session ID.
	LogFieldSessionID = "session_id"
	// LogFieldTurn is the field name for the conversation turn number.
	LogFieldTurn = "turn"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldTier is the field name for the memory tier involved.
	LogFieldTier = "tier"
)

// SessionContext carries structured logging state for one conversation session.
type SessionContext struct {
	SessionID string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewSessionContext creates a new session context with a generated session ID.
func NewSessionContext(logger *slog.Logger) *SessionContext {
	return NewSessionContextWithID(logger, shortuuid.New())
}

// NewSessionContextWithID creates a new session context with a specific session ID.
func NewSessionContextWithID(logger *slog.Logger, sessionID string) *SessionContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionContext{
		SessionID: sessionID,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (s *SessionContext) Info(msg string, attrs ...slog.Attr) {
	s.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, s.withBase(attrs)...)
}

// Debug logs a debug message.
func (s *SessionContext) Debug(msg string, attrs ...slog.Attr) {
	s.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, s.withBase(attrs)...)
}

// Warn logs a warning message.
func (s *SessionContext) Warn(msg string, attrs ...slog.Attr) {
	s.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, s.withBase(attrs)...)
}

// Error logs an error message with the error.
func (s *SessionContext) Error(msg string, err error, attrs ...slog.Attr) {
	allAttrs := append(attrs, slog.String("error", err.Error()))
	s.Logger.LogAttrs(context.Background(), slog.LevelError, msg, s.withBase(allAttrs)...)
}

// Duration returns the elapsed time since the session started.
func (s *SessionContext) Duration() time.Duration {
	return time.Since(s.StartTime)
}

func (s *SessionContext) withBase(attrs []slog.Attr) []slog.Attr {
	base := []slog.Attr{slog.String(LogFieldSessionID, s.SessionID)}
	return append(base, attrs...)
}

// ErrAttr renders an error as a log attribute.
func ErrAttr(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// IntAttr renders an int field as a log attribute.
func IntAttr(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

type ctxKey struct{}

// WithSessionContext adds the session context to the context.
func WithSessionContext(ctx context.Context, sessCtx *SessionContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, sessCtx)
}

// FromContext extracts the session context from the context.
func FromContext(ctx context.Context) (*SessionContext, bool) {
	sessCtx, ok := ctx.Value(ctxKey{}).(*SessionContext)
	return sessCtx, ok
}
