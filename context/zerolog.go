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

import (
	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
// Structured fields are attached to the event as-is.
//
// Example:
//
//	logger := context.NewZerologLogger(
//	    zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
//	)
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug logs at debug level.
func (z *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (z *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (z *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level. An "error" field holding an error value is
// rendered through zerolog's error marshaller.
func (z *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	ev := z.logger.Error()
	if err, ok := fields["error"].(error); ok {
		ev = ev.Err(err)
		rest := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if k != "error" {
				rest[k] = v
			}
		}
		fields = rest
	}
	ev.Fields(fields).Msg(msg)
}
