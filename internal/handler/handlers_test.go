package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/logger"
	"github.com/MKhiriev/medsync/internal/service"
	"github.com/MKhiriev/medsync/models"
)

func TestNewHandlers_HTTPAddress(t *testing.T) {
	h, err := NewHandlers(&service.Services{}, config.Server{HTTPAddress: ":8080"}, nil, nil, models.BuildInfo{}, logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP)
}

func TestNewHandlers_NoAddress(t *testing.T) {
	h, err := NewHandlers(&service.Services{}, config.Server{}, nil, nil, models.BuildInfo{}, logger.Nop())

	assert.ErrorIs(t, err, errNoHandlersAreCreated)
	assert.Nil(t, h)
}
