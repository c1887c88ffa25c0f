/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ilhamster/netviz/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Logged returns a WrapFunc logging each request's method, path, status, and
// duration to l.
func Logged(l *slog.Logger) WrapFunc {
	return func(hf HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			hf(sr, req)
			level := slog.LevelInfo
			if sr.status >= http.StatusInternalServerError {
				level = slog.LevelError
			} else if sr.status >= http.StatusBadRequest {
				level = slog.LevelWarn
			}
			l.Log(req.Context(), level, "handled request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", sr.status,
				"duration", time.Since(start),
			)
		}
	}
}

// Instrumented returns a WrapFunc counting requests and observing their
// latency in m.
func Instrumented(m *metrics.Metrics) WrapFunc {
	return func(hf HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			hf(sr, req)
			m.Request(req.URL.Path, strconv.Itoa(sr.status), float64(time.Since(start).Microseconds())/1000)
		}
	}
}
