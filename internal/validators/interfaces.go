// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators provides structural validation of inbound requests.
//
// Core concepts:
//   - Validator: generic interface to validate arbitrary values or structures.
//     Supports optional field-level scoping for targeted validation.
//
// Validation here is structural only. Signature checks belong to the
// envelope package.
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to specific named struct fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
