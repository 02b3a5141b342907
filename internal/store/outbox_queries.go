// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	appendQueueItem = `
		INSERT INTO sync_queue (type, data, created_at)
		VALUES (?, ?, ?);`

	drainQueue = `
		SELECT id, type, data, created_at
		FROM sync_queue
		ORDER BY id ASC;`

	clearQueueUpTo = `
		DELETE FROM sync_queue
		WHERE id <= ?;`

	clearQueue = `DELETE FROM sync_queue;`

	countQueue = `SELECT COUNT(*) FROM sync_queue;`
)
