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

package context

// Tracer creates spans around units of work. Implementations should be
// thread-safe. Use NoOpTracer when tracing is disabled.
type Tracer interface {
	// StartSpan creates a new span. Callers end it with End(), typically via defer.
	//
	// Example:
	//   span := tracer.StartSpan("repeat.execute.poller")
	//   defer span.End()
	StartSpan(name string) Span
}

// Span represents a single trace span.
// Implementations must be safe for concurrent use.
type Span interface {
	// End marks the span as complete.
	End()

	// SetAttribute adds a key-value attribute to the span.
	SetAttribute(key string, value interface{})

	// RecordError records an error that occurred during the span.
	// It can be called multiple times before End.
	RecordError(err error)
}

// MetricsCollector handles metrics collection using Prometheus or similar systems.
// Implementations should be thread-safe for concurrent use.
//
// Use NoOpMetrics when metrics are disabled.
type MetricsCollector interface {
	// Inc increments a counter metric by 1.
	//
	// Example:
	//   metrics.Inc("repeat_executions_total")
	Inc(name string)

	// Add adds a value to a counter or gauge metric.
	Add(name string, value float64)

	// Observe records a value in a histogram metric.
	//
	// Example:
	//   metrics.Observe("repeat_execution_duration_seconds", 0.012)
	Observe(name string, value float64)

	// Set sets a gauge metric to a specific value.
	Set(name string, value float64)
}

// Logger handles structured logging with contextual fields.
// Implementations should be thread-safe for concurrent use.
//
// Fields are passed as map[string]interface{}; a nil map is allowed.
// Use NoOpLogger when logging is disabled, or ZerologLogger to write
// through zerolog.
type Logger interface {
	// Debug logs detailed troubleshooting information.
	//
	// Example:
	//   logger.Debug("Execution scheduled", map[string]interface{}{
	//       "task_id":   id,
	//       "iteration": 3,
	//   })
	Debug(msg string, fields map[string]interface{})

	// Info logs general informational messages.
	Info(msg string, fields map[string]interface{})

	// Warn logs potentially problematic situations.
	Warn(msg string, fields map[string]interface{})

	// Error logs failure conditions that should be investigated.
	//
	// Example:
	//   logger.Error("Action failed", map[string]interface{}{
	//       "task_id": id,
	//       "error":   err.Error(),
	//   })
	Error(msg string, fields map[string]interface{})
}
