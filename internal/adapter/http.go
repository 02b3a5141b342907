package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/utils"
	"github.com/MKhiriev/medsync/models"
)

type httpTransport struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPTransport constructs the HTTP implementation of [Transport] for the
// server at adapterCfg.HTTPAddress. A missing scheme defaults to http.
//
// Timeouts are the caller's responsibility through ctx; RequestTimeout is an
// upper bound applied to every request.
func NewHTTPTransport(adapterCfg config.ClientAdapter, log *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpTransport{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Submit implements [Transport].
func (h *httpTransport) Submit(ctx context.Context, env models.Envelope) (models.SubmitResponse, error) {
	var result models.SubmitResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(env).
		SetResult(&result).
		Post("/submit")
	if err != nil {
		return models.SubmitResponse{}, fmt.Errorf("%w: submit: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubmitResponse{}, err
	}
	if !result.Success || result.ID == "" {
		return models.SubmitResponse{}, fmt.Errorf("%w: submit returned %s", ErrDecodeResponse, strings.TrimSpace(string(resp.Body())))
	}

	h.logger.Debug().Str("func", "httpTransport.Submit").Str("record_id", result.ID).Dur("took", resp.Time()).Msg("envelope accepted")
	return result, nil
}

// Acknowledge implements [Transport].
func (h *httpTransport) Acknowledge(ctx context.Context, ack models.SyncAck) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(ack).
		Post("/sync")
	if err != nil {
		return fmt.Errorf("%w: sync ack: %w", ErrUnreachable, err)
	}

	return mapHTTPError(resp)
}

// Fetch implements [Transport].
func (h *httpTransport) Fetch(ctx context.Context, id string) (json.RawMessage, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(models.FetchRequest{ID: id}).
		Post("/fetch")
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, ErrDecodeResponse
	}

	return json.RawMessage(body), nil
}

// Health implements [Transport].
func (h *httpTransport) Health(ctx context.Context) (models.HealthResponse, error) {
	var result models.HealthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/health")
	if err != nil {
		return models.HealthResponse{}, fmt.Errorf("%w: health: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.HealthResponse{}, err
	}

	return result, nil
}
