package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient embeds *resty.Client so that callers use resty's request
// builder directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client rooted at baseURL with the given per-request
// timeout. JSON is the default content type, and the trace id stored in a
// request context (see WithTraceID) is forwarded in TraceIDHeader.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if traceID, ok := GetTraceIDFromContext(r.Context()); ok {
			r.SetHeader(TraceIDHeader, traceID)
		}
		return nil
	})

	return &HTTPClient{Client: c}
}
