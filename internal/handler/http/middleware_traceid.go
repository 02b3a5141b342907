package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/MKhiriev/medsync/internal/utils"
)

func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID, ok := parseTraceID(r.Header.Get(utils.TraceIDHeader))
		if !ok {
			traceID = uuid.NewString()
		}

		ctx := utils.WithTraceID(r.Context(), traceID)
		ctx = h.logger.WithTraceID(traceID).WithContext(ctx)
		r = r.WithContext(ctx)

		w.Header().Set(utils.TraceIDHeader, traceID)
		next.ServeHTTP(w, r)
	})
}

// parseTraceID accepts only the canonical 36-character UUID form. Anything
// else is replaced, since the value is echoed and written to every log line.
func parseTraceID(raw string) (string, bool) {
	if len(raw) != 36 {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
