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

// Package choropleth reshapes country-faceted query results into map
// features and a per-country aggregate index.
//
// Each call to Transform produces a new, immutable Batch.  The Batch holds
// both the features to draw, aligned by position with the input rows, and
// the aggregates used for point lookups such as hover popups; a lookup is
// always answered from the Batch that produced the features being hovered,
// never from an earlier one.
package choropleth

import (
	"math"
	"strings"

	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/magnitude"
	"github.com/ilhamster/netviz/result"
)

// CountryGroup is the name of the facet group holding a row's country code.
const CountryGroup = "country"

// Aggregate is a country's traffic within one Batch.
type Aggregate struct {
	CountryCode string
	// RowIndex is the position of the country's row in the input, used to
	// pick a stable color.
	RowIndex int
	// Sum is the sum of the row's defined sample values.
	Sum float64
	// Samples holds the row's defined sample values, in order.
	Samples []float64
}

// IsEmpty returns true for the zero Aggregate, returned for unknown
// countries.
func (a Aggregate) IsEmpty() bool {
	return a.CountryCode == ""
}

// label formats the receiver's total with the provided unit suffix.  A
// country with no defined samples is labeled as zero.
func (a Aggregate) label(suffix string) string {
	if len(a.Samples) == 0 {
		return magnitude.Format(0, suffix)
	}
	return magnitude.FormatScaled(a.Samples, suffix, magnitude.DefaultScaleMax)
}

// Transformer converts result rows into Batches against a geo table.
type Transformer struct {
	table *geo.Table
}

// New returns a Transformer resolving geometry from the provided table, or
// from the bundled world table if it is nil.
func New(table *geo.Table) *Transformer {
	if table == nil {
		table = geo.Default()
	}
	return &Transformer{
		table: table,
	}
}

// Batch is the transformed form of one result set.
type Batch struct {
	features   []geo.Record
	aggregates map[string]Aggregate
	// Country codes in order of first appearance.
	codes []string
}

// Transform builds a Batch from the provided rows.  Rows without a country
// facet yield an empty Record at their position and are not indexed.  If
// several rows name the same country, the last one is indexed.
func (t *Transformer) Transform(rows []result.Series) *Batch {
	b := &Batch{
		features:   make([]geo.Record, len(rows)),
		aggregates: map[string]Aggregate{},
	}
	for idx, row := range rows {
		group, ok := row.Group(CountryGroup)
		if !ok {
			continue
		}
		code := strings.ToLower(group.Value)
		b.features[idx] = t.table.Lookup(code)
		if code == "" {
			continue
		}
		agg := Aggregate{
			CountryCode: code,
			RowIndex:    idx,
		}
		for _, y := range row.Ys() {
			if math.IsNaN(y) {
				continue
			}
			agg.Sum += y
			agg.Samples = append(agg.Samples, y)
		}
		if _, ok := b.aggregates[code]; !ok {
			b.codes = append(b.codes, code)
		}
		b.aggregates[code] = agg
	}
	return b
}

// Features returns one Record per input row, in input order.  Rows with no
// country, or an unknown one, have empty Records.
func (b *Batch) Features() []geo.Record {
	return b.features
}

// Aggregate returns the aggregate for the provided country code, ignoring
// case, or the empty Aggregate if the Batch has none.
func (b *Batch) Aggregate(code string) Aggregate {
	return b.aggregates[strings.ToLower(code)]
}

// Aggregates returns the Batch's aggregates in order of first appearance.
func (b *Batch) Aggregates() []Aggregate {
	ret := make([]Aggregate, len(b.codes))
	for idx, code := range b.codes {
		ret[idx] = b.aggregates[code]
	}
	return ret
}

// Sums returns the sums of Aggregates(), in the same order.
func (b *Batch) Sums() []float64 {
	ret := make([]float64, len(b.codes))
	for idx, code := range b.codes {
		ret[idx] = b.aggregates[code].Sum
	}
	return ret
}

// Viewport returns the bounds enclosing every feature, or nil if no feature
// has bounds.
func (b *Batch) Viewport() *geo.Bound {
	return geo.ReduceBounds(geo.RecordBounds(b.features))
}

// record returns the first feature Record for code, or the empty Record.
func (b *Batch) record(code string) geo.Record {
	code = strings.ToLower(code)
	for _, f := range b.features {
		if f.CountryCode == code {
			return f
		}
	}
	return geo.Record{}
}
