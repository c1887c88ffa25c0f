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

// Package sankey reshapes query results into node/link flow graphs.
//
// Two input shapes are supported, chosen explicitly by the caller:
//
//   - Facet: rows pre-aggregated over two facet dimensions.  Each row with at
//     least two groups yields one link, from its first group's value to its
//     second's, weighted by the row's first sample.  Links are never merged,
//     so repeated facet pairs yield parallel links.
//   - Event: raw event samples, taken from the first row, with two
//     caller-named fields as the left and right endpoints.  Links are merged
//     per (left, right) pair, accumulating in_bytes * sample_rate.
//
// In both, nodes are deduplicated by ID, and nodes and links appear in order
// of first occurrence.  Link values are never negative.
package sankey

import (
	"math"
	"regexp"
	"strings"

	"github.com/ilhamster/netviz/result"
)

const (
	// InBytesField and SampleRateField are the event fields whose product
	// weighs an event.
	InBytesField    = "in_bytes"
	SampleRateField = "sample_rate"

	// MissingValue stands in for an absent event dimension value.
	MissingValue = "--"

	facetIDSeparator = "||"
)

// Node is a flow graph node.  ID is its sole identity; Name is displayed.
type Node struct {
	ID   string
	Name string
}

// Link is a weighted flow between two nodes, named by ID.
type Link struct {
	Source string
	Target string
	Value  float64
}

// Graph is a flow graph.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Dimensions names the event fields used as left and right endpoints.
type Dimensions struct {
	Left, Right string
}

// Input is a result set tagged with the way it should be reshaped.  It is
// implemented by Facet and Event.
type Input interface {
	build(gb *graphBuilder)
}

// Facet is a result set of rows faceted over two dimensions.
type Facet struct {
	Rows []result.Series
}

// Event is a result set of raw events.
type Event struct {
	Rows       []result.Series
	Dimensions Dimensions
}

// Transform builds a flow graph from the provided input.
func Transform(in Input) *Graph {
	gb := newGraphBuilder()
	in.build(gb)
	return gb.graph
}

func (f Facet) build(gb *graphBuilder) {
	for _, row := range f.Rows {
		groups := row.Metadata.Groups
		if len(groups) < 2 {
			continue
		}
		source := gb.node(groups[0].Value+facetIDSeparator+groups[0].Name, groups[0].Value)
		target := gb.node(groups[1].Value+facetIDSeparator+groups[1].Name, groups[1].Value)
		var value float64
		if len(row.Data) > 0 {
			value = row.Data[0].Y
		}
		gb.link(source, target, value)
	}
}

func (e Event) build(gb *graphBuilder) {
	if len(e.Rows) == 0 {
		return
	}
	for _, sample := range e.Rows[0].Data {
		left := dimensionValue(sample, e.Dimensions.Left)
		right := dimensionValue(sample, e.Dimensions.Right)
		source := gb.node(left+"-left", left)
		target := gb.node(right+"-right", right)
		gb.mergeLink(source, target, sample.Number(InBytesField)*sample.Number(SampleRateField))
	}
}

func dimensionValue(sample result.Sample, field string) string {
	if v, ok := sample.String(field); ok && v != "" {
		return v
	}
	return MissingValue
}

type linkKey struct {
	source, target string
}

type graphBuilder struct {
	graph *Graph
	nodes map[string]struct{}
	links map[linkKey]int
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		graph: &Graph{},
		nodes: map[string]struct{}{},
		links: map[linkKey]int{},
	}
}

// node adds the specified node if it's new, and returns its ID.
func (gb *graphBuilder) node(id, name string) string {
	if _, ok := gb.nodes[id]; !ok {
		gb.nodes[id] = struct{}{}
		gb.graph.Nodes = append(gb.graph.Nodes, Node{ID: id, Name: name})
	}
	return id
}

func (gb *graphBuilder) link(source, target string, value float64) {
	gb.graph.Links = append(gb.graph.Links, Link{
		Source: source,
		Target: target,
		Value:  nonNegative(value),
	})
}

func (gb *graphBuilder) mergeLink(source, target string, value float64) {
	key := linkKey{source, target}
	if idx, ok := gb.links[key]; ok {
		gb.graph.Links[idx].Value += nonNegative(value)
		return
	}
	gb.links[key] = len(gb.graph.Links)
	gb.link(source, target, value)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Mode names an Input variant.
type Mode string

// Supported modes.
const (
	FacetMode Mode = "facet"
	EventMode Mode = "event"
)

var facetClause = regexp.MustCompile(`(?i)\bFACET\b`)

// ModeOf guesses the mode of a query from its text: FacetMode if it has a
// FACET clause, EventMode otherwise.  This is a textual match, and can be
// fooled by, e.g., a string literal containing 'facet'.  Prefer an explicit
// mode where one is available.
func ModeOf(query string) Mode {
	if facetClause.MatchString(query) {
		return FacetMode
	}
	return EventMode
}

// NewInput returns the Input variant for mode over rows.  dims is ignored for
// FacetMode.  It returns nil for unsupported modes.
func NewInput(mode Mode, rows []result.Series, dims Dimensions) Input {
	switch mode {
	case FacetMode:
		return Facet{Rows: rows}
	case EventMode:
		return Event{Rows: rows, Dimensions: dims}
	}
	return nil
}

// ValidEventQuery reports whether query mentions both dimensions and both
// weighting fields.  It is a substring check: a field named as part of a
// longer identifier satisfies it, and a field selected via an alias does
// not.  Treat its result as advisory.
func ValidEventQuery(query string, dims Dimensions) bool {
	for _, field := range []string{dims.Left, dims.Right, InBytesField, SampleRateField} {
		if field == "" || !strings.Contains(query, field) {
			return false
		}
	}
	return true
}
