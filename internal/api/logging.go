package api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/store"
)

// loggingTransport is a decorator that records every request as an event
// and as a metrics observation.
type loggingTransport struct {
	inner     http.RoundTripper
	eventRepo store.EventRepo
	metrics   *metrics.Metrics
}

// WithLogging wraps a RoundTripper with event logging. repo and m may be
// nil.
func WithLogging(inner http.RoundTripper, repo store.EventRepo, m *metrics.Metrics) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &loggingTransport{inner: inner, eventRepo: repo, metrics: m}
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := l.inner.RoundTrip(req)

	elapsed := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	l.metrics.ObserveRequest(req.Method, Route(req.URL.Path), status, elapsed)

	if l.eventRepo == nil {
		return resp, err
	}

	data := store.RequestEventData{
		Method:    req.Method,
		Path:      req.URL.Path,
		Status:    status,
		LatencyMs: elapsed.Milliseconds(),
		Success:   err == nil && status < 400,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	} else if status >= 400 {
		data.ErrorMessage = http.StatusText(status)
	}

	// Log the event but don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendRequestEvent(req.Context(), data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log API request event: %v\n", logErr)
	}

	return resp, err
}

// Route collapses numeric path segments to ":id" so per-task paths share
// one metrics label.
func Route(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			segs[i] = ":id"
		}
	}
	return strings.Join(segs, "/")
}
