// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ByteArray is a byte slice encoded in JSON as an array of numbers
// (e.g. [12,250,0]) instead of base64. The number form is what the signing
// input and the wire protocol use.
type ByteArray []byte

// MarshalJSON encodes b as a JSON number array. A nil slice encodes as [].
func (b ByteArray) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(b)*4)
	buf = append(buf, '[')
	for i, v := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	buf = append(buf, ']')
	return buf, nil
}

// UnmarshalJSON decodes a JSON number array. Every element must be an
// integer in 0..255. JSON null leaves b nil.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}

	var nums []json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&nums); err != nil {
		return fmt.Errorf("byte array: %w", err)
	}

	out := make([]byte, len(nums))
	for i, n := range nums {
		v, err := strconv.ParseUint(n.String(), 10, 8)
		if err != nil {
			return fmt.Errorf("byte array: element %d (%s) is not a byte", i, n)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}
