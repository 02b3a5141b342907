// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestTraceIDCtxKey(t *testing.T) {
	if TraceIDCtxKey.String() != "traceID" {
		t.Errorf("expected 'traceID', got '%s'", TraceIDCtxKey.String())
	}
}

func TestGetTraceIDFromContext_Success(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc-123")

	traceID, ok := GetTraceIDFromContext(ctx)
	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if traceID != "abc-123" {
		t.Errorf("expected 'abc-123', got '%s'", traceID)
	}
}

func TestGetTraceIDFromContext_Missing(t *testing.T) {
	if _, ok := GetTraceIDFromContext(context.Background()); ok {
		t.Error("expected ok=false for empty context")
	}
}

func TestGetTraceIDFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDCtxKey, 42)

	if _, ok := GetTraceIDFromContext(ctx); ok {
		t.Error("expected ok=false for non-string value")
	}
}

func TestGetTraceIDFromContext_Empty(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")

	if _, ok := GetTraceIDFromContext(ctx); ok {
		t.Error("expected ok=false for empty trace id")
	}
}
