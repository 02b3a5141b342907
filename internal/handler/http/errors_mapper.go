package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/medsync/internal/app"
	"github.com/MKhiriev/medsync/internal/service"
)

var errorStatusMap = map[error]int{
	service.ErrValidation: http.StatusBadRequest,
	service.ErrAuth:       http.StatusUnauthorized,
	service.ErrNotFound:   http.StatusNotFound,
	service.ErrStorage:    http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// routeMessages maps a status to the response message for one route.
type routeMessages map[int]string

var (
	submitMessages = routeMessages{
		http.StatusBadRequest:          app.MsgInvalidPayload,
		http.StatusUnauthorized:        app.MsgInvalidSignature,
		http.StatusInternalServerError: app.MsgStorageFailed,
	}
	fetchMessages = routeMessages{
		http.StatusBadRequest:          app.MsgInvalidPayload,
		http.StatusNotFound:            app.MsgRecordNotFound,
		http.StatusInternalServerError: app.MsgStorageFailed,
	}
	syncMessages = routeMessages{
		http.StatusBadRequest:          app.MsgInvalidPayload,
		http.StatusInternalServerError: app.MsgSyncFailed,
	}
	statsMessages = routeMessages{
		http.StatusInternalServerError: app.MsgStorageFailed,
	}
)

func (m routeMessages) message(status int) string {
	if msg, ok := m[status]; ok {
		return msg
	}
	if status == http.StatusNotFound {
		return app.MsgNotFound
	}
	return app.MsgInternalServerError
}
