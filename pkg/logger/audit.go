package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a moderation or administration audit event
type AuditEvent struct {
	EventType     string
	Actor         string
	Target        string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogModerationAction logs warnings, lockouts and content takedowns
func (al *AuditLogger) LogModerationAction(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "moderation"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Actor != "" {
		attrs = append(attrs, slog.String("actor", event.Actor))
	}
	if event.Target != "" {
		attrs = append(attrs, slog.String("target", event.Target))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, slog.String(key, value))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogAccountAction logs identity changes made by admins or by the user themselves
func (al *AuditLogger) LogAccountAction(eventType, actor, target string, metadata map[string]string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", eventType),
		slog.String("actor", actor),
		slog.String("target", target),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	for key, value := range metadata {
		attrs = append(attrs, slog.String(key, value))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
