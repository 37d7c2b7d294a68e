// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package task

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jazzpetri/rearm/context"
)

// DefaultHTTPTimeout is used when HTTPTask.Timeout and HTTPTask.Client are unset.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPTask performs one HTTP request per execution. Wrapped in a repeating
// task it becomes a bounded poller or health check.
//
// Example:
//
//	check := &HTTPTask{
//	    Name:   "health",
//	    Method: http.MethodGet,
//	    URL:    "http://localhost:8080/healthz",
//	    OnResponse: func(status int, body []byte) error {
//	        log.Printf("health: %d %s", status, body)
//	        return nil
//	    },
//	}
//
// A response status >= 400 is an error unless ExpectStatus names it.
type HTTPTask struct {
	// Name is used in logs, traces, and metrics.
	Name string

	// Method is the HTTP method (GET, POST, ...).
	Method string

	// URL is the target endpoint.
	URL string

	// Headers are set on every request.
	Headers map[string]string

	// Body is sent with every request. Nil sends no body.
	Body []byte

	// ExpectStatus, if non-zero, is the only status code treated as success.
	ExpectStatus int

	// Timeout bounds each request. Ignored when Client is set.
	Timeout time.Duration

	// Client is an optional custom HTTP client.
	Client *http.Client

	// OnResponse receives the status and body of a successful response.
	// Returning an error fails the execution.
	OnResponse func(status int, body []byte) error
}

// Execute performs the request, honouring ctx.Context cancellation.
func (h *HTTPTask) Execute(ctx *context.ExecutionContext) error {
	if h.Name == "" {
		return fmt.Errorf("http task: name is required")
	}
	if h.Method == "" {
		return fmt.Errorf("http task: method is required")
	}
	if h.URL == "" {
		return fmt.Errorf("http task: url is required")
	}

	span := ctx.Tracer.StartSpan("task.http." + h.Name)
	defer span.End()
	span.SetAttribute("http.method", h.Method)
	span.SetAttribute("http.url", h.URL)

	ctx.Metrics.Inc("task_http_executions_total")

	var body io.Reader
	if h.Body != nil {
		body = bytes.NewReader(h.Body)
	}

	req, err := http.NewRequestWithContext(ctx.Context, h.Method, h.URL, body)
	if err != nil {
		return h.fail(ctx, span, fmt.Errorf("failed to create request: %w", err))
	}
	for key, value := range h.Headers {
		req.Header.Set(key, value)
	}

	client := h.Client
	if client == nil {
		timeout := h.Timeout
		if timeout == 0 {
			timeout = DefaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	started := ctx.Clock.Now()
	resp, err := client.Do(req)
	ctx.Metrics.Observe("task_http_duration_seconds", ctx.Clock.Now().Sub(started).Seconds())
	if err != nil {
		return h.fail(ctx, span, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return h.fail(ctx, span, fmt.Errorf("failed to read response: %w", err))
	}
	span.SetAttribute("http.status_code", resp.StatusCode)

	if h.ExpectStatus != 0 && resp.StatusCode != h.ExpectStatus {
		return h.fail(ctx, span, fmt.Errorf("http request returned status %d, expected %d", resp.StatusCode, h.ExpectStatus))
	}
	if h.ExpectStatus == 0 && resp.StatusCode >= 400 {
		return h.fail(ctx, span, fmt.Errorf("http request failed with status %d: %s", resp.StatusCode, string(respBody)))
	}

	if h.OnResponse != nil {
		if err := h.OnResponse(resp.StatusCode, respBody); err != nil {
			return h.fail(ctx, span, err)
		}
	}

	ctx.Metrics.Inc("task_http_success_total")
	ctx.Logger.Debug("HTTP task completed", map[string]interface{}{
		"task_name":     h.Name,
		"task_id":       ctx.TaskID,
		"iteration":     ctx.Iteration,
		"http_status":   resp.StatusCode,
		"response_size": len(respBody),
	})
	return nil
}

func (h *HTTPTask) fail(ctx *context.ExecutionContext, span context.Span, err error) error {
	span.RecordError(err)
	ctx.Metrics.Inc("task_http_errors_total")
	ctx.ErrorRecorder.RecordError(err, map[string]interface{}{
		"task_name":   h.Name,
		"http_method": h.Method,
		"http_url":    h.URL,
	})
	ctx.Logger.Warn("HTTP task failed", map[string]interface{}{
		"task_name": h.Name,
		"task_id":   ctx.TaskID,
		"http_url":  h.URL,
		"error":     err.Error(),
	})
	return err
}
