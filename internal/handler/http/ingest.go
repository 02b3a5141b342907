// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/utils"
	"github.com/MKhiriev/medsync/models"
)

// maxBodyBytes caps request bodies on every route.
const maxBodyBytes = 8 << 20

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var env models.Envelope
	if err := decodeJSON(w, r, &env); err != nil {
		log.Err(err).Str("func", "Handler.submit").Msg("invalid JSON was passed")
		utils.WriteError(w, submitMessages.message(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	resp, err := h.services.IngestService.Submit(r.Context(), env)
	if err != nil {
		h.writeServiceError(w, r, "Handler.submit", err, submitMessages)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var query models.FetchRequest
	if err := decodeJSON(w, r, &query); err != nil {
		log.Err(err).Str("func", "Handler.fetch").Msg("invalid JSON was passed")
		utils.WriteError(w, fetchMessages.message(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	body, err := h.services.IngestService.Fetch(r.Context(), query.ID)
	if err != nil {
		h.writeServiceError(w, r, "Handler.fetch", err, fetchMessages)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "Handler.sync").Msg("failed to read body")
		utils.WriteError(w, syncMessages.message(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.services.IngestService.Sync(r.Context(), payload); err != nil {
		h.writeServiceError(w, r, "Handler.sync", err, syncMessages)
		return
	}

	utils.WriteJSON(w, models.SuccessResponse{Success: true}, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.build.Version,
	}, http.StatusOK)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.IngestService.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Handler.stats", err, statsMessages)
		return
	}

	utils.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, fn string, err error, messages routeMessages) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	utils.WriteError(w, messages.message(status), status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
