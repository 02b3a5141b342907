package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/utils"
)

// withRecover turns a handler panic into 500 {"error": <panic value>}.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func (h *Handler) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromRequest(r).Error().
				Str("func", "Handler.withRecover").
				Interface("panic", rec).
				Msg("handler panicked")

			utils.WriteError(w, panicMessage(rec), http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}

func panicMessage(rec any) string {
	switch v := rec.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
