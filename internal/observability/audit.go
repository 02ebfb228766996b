package observability

import (
	"context"
	"log/slog"
	"net/http"
)

// Audit emits a structured security event tied to the request context
// so it carries the active trace.
func Audit(r *http.Request, event string, attrs ...slog.Attr) {
	AuditCtx(r.Context(), event, attrs...)
}

func AuditCtx(ctx context.Context, event string, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("audit_event", event))
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.Default().InfoContext(ctx, "audit", args...)
}
