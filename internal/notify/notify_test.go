package notify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier(t *testing.T) {
	tests := []struct {
		name     string
		emit     func(n *Notifier)
		contains []string
		absent   []string
	}{
		{
			name:     "success with details",
			emit:     func(n *Notifier) { n.Success("Key ring created", "path: /tmp/keys.json", "  ") },
			contains: []string{"✓ Key ring created", "path: /tmp/keys.json"},
		},
		{
			name:     "failure carries the cause",
			emit:     func(n *Notifier) { n.Failure("Export failed", errors.New("permission denied")) },
			contains: []string{"✗ Export failed", "permission denied"},
		},
		{
			name:     "failure without cause",
			emit:     func(n *Notifier) { n.Failure("Sync failed", nil) },
			contains: []string{"✗ Sync failed"},
		},
		{
			name:     "info",
			emit:     func(n *Notifier) { n.Info("Sync skipped", "offline") },
			contains: []string{"Sync skipped", "offline"},
			absent:   []string{"✓", "✗"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(New(&buf))

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
			// a buffer is not a terminal
			assert.NotContains(t, out, "\x1b[")
		})
	}
}
