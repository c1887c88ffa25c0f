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

// Package result models the already-executed query results the host
// analytics platform hands to the widgets.
//
// A result set is a sequence of Series, one per distinct facet value.  Each
// Series carries its ordered facet Groups and an ordered sequence of Samples.
// For timeseries and facet queries a Sample is an {x, y} point; for raw event
// queries a Sample is a map of event fields, all of which are retained in
// Sample.Fields.
package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Group describes one facet of a Series.
type Group struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Metadata holds a Series' facet descriptors.
type Metadata struct {
	Groups []Group `json:"groups"`
}

// Sample is a single point or raw event in a Series.  X and Y are NaN when
// the sample doesn't carry them.
type Sample struct {
	X, Y   float64
	Fields map[string]any
}

// Point returns a Sample at (x, y).
func Point(x, y float64) Sample {
	return Sample{X: x, Y: y, Fields: map[string]any{"x": x, "y": y}}
}

// Event returns a raw event Sample with the provided fields.
func Event(fields map[string]any) Sample {
	return Sample{X: math.NaN(), Y: math.NaN(), Fields: fields}
}

// UnmarshalJSON decodes a Sample from a JSON object.
func (s *Sample) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("failed to decode sample: %w", err)
	}
	*s = Event(fields)
	s.X, s.Y = s.coordinate("x"), s.coordinate("y")
	return nil
}

// coordinate is like Number, but absent and null fields are NaN.
func (s Sample) coordinate(name string) float64 {
	if v, ok := s.Fields[name]; !ok || v == nil {
		return math.NaN()
	}
	return s.Number(name)
}

// Number returns the named field as a float64: 0 if it is absent or null,
// NaN if it is present but not numeric.
func (s Sample) Number(name string) float64 {
	v, ok := s.Fields[name]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// String returns the named field rendered as a string, and whether it was
// present and non-null.
func (s Sample) String(name string) (string, bool) {
	v, ok := s.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	}
	return fmt.Sprint(v), true
}

// Series is the result for one distinct facet value.
type Series struct {
	Metadata Metadata `json:"metadata"`
	Data     []Sample `json:"data"`
}

// Group returns the Series' group with the provided name, and whether it
// was found.
func (s Series) Group(name string) (Group, bool) {
	for _, g := range s.Metadata.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Ys returns the Y values of the Series' samples, in order.
func (s Series) Ys() []float64 {
	ret := make([]float64, len(s.Data))
	for idx, sample := range s.Data {
		ret[idx] = sample.Y
	}
	return ret
}

// Batch is one materialized result set together with the query text that
// produced it.
type Batch struct {
	Query   string   `json:"query"`
	Results []Series `json:"results"`
}

// Decode reads a JSON-encoded Batch from r.
func Decode(r io.Reader) (*Batch, error) {
	ret := &Batch{}
	if err := json.NewDecoder(r).Decode(ret); err != nil {
		return nil, fmt.Errorf("failed to decode result batch: %w", err)
	}
	return ret, nil
}
