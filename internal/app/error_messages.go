// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app holds the message strings the ingest server writes into
// {"error": ...} response bodies. Existing clients match on this wording.
package app

const (
	// MsgInvalidPayload is returned when a request body is not JSON or fails
	// structural validation.
	MsgInvalidPayload = "Invalid payload"

	// MsgInvalidSignature is returned when an envelope signature does not
	// verify against its encrypted payload.
	MsgInvalidSignature = "Invalid signature"

	// MsgStorageFailed is returned when the store-of-record rejects a write
	// or read.
	MsgStorageFailed = "Storage failed"

	// MsgRecordNotFound is returned by /fetch for an unknown id.
	MsgRecordNotFound = "Record not found"

	// MsgSyncFailed is returned by /sync when the acknowledgement cannot be
	// recorded.
	MsgSyncFailed = "Sync failed"

	MsgMethodNotAllowed = "Method not allowed"
	MsgNotFound         = "Not Found"

	// MsgTooManyRequests is returned when the request rate limit is exceeded.
	MsgTooManyRequests = "Too many requests"

	// MsgInternalServerError is returned for unexpected failures, including
	// recovered panics.
	MsgInternalServerError = "Internal server error"
)
