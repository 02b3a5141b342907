package models

import "time"

// FetchRequest is the body of POST /fetch.
type FetchRequest struct {
	ID string `json:"id" validate:"required,max=128"`
}

// SubmitResponse is returned by POST /submit.
type SubmitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// SuccessResponse is returned by POST /sync.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// StatsResponse is returned by GET /stats.
type StatsResponse struct {
	TotalRecords int64      `json:"total_records"`
	SyncCount    int64      `json:"sync_count"`
	LastSync     *time.Time `json:"last_sync,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SyncAck is the coarse acknowledgement the client posts to /sync after a
// fully successful cycle.
type SyncAck struct {
	Count    int       `json:"count"`
	FirstID  int64     `json:"first_id"`
	LastID   int64     `json:"last_id"`
	SyncedAt time.Time `json:"synced_at"`
}

// BuildInfo carries build-time metadata injected by linker flags.
type BuildInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// NewBuildInfo fills empty values with "N/A".
func NewBuildInfo(version, date, commit string) BuildInfo {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}
	return BuildInfo{Version: orNA(version), Date: orNA(date), Commit: orNA(commit)}
}
