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

package geo

import (
	"math"

	"github.com/ilhamster/netviz/util"
	geojson "github.com/paulmach/go.geojson"
)

const (
	minLonKey = "bounds_min_lon"
	minLatKey = "bounds_min_lat"
	maxLonKey = "bounds_max_lon"
	maxLatKey = "bounds_max_lat"
)

// Bound is an axis-aligned longitude/latitude rectangle.
type Bound struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Contains returns true if other lies entirely within the receiver.
func (b Bound) Contains(other Bound) bool {
	return b.MinLon <= other.MinLon && b.MinLat <= other.MinLat &&
		b.MaxLon >= other.MaxLon && b.MaxLat >= other.MaxLat
}

// Define returns a PropertyUpdate annotating a Datum with the receiver.
func (b Bound) Define() util.PropertyUpdate {
	return util.Chain(
		util.DoubleProperty(minLonKey, b.MinLon),
		util.DoubleProperty(minLatKey, b.MinLat),
		util.DoubleProperty(maxLonKey, b.MaxLon),
		util.DoubleProperty(maxLatKey, b.MaxLat),
	)
}

// GeometryBounds returns the bounds of every coordinate in a Polygon or
// MultiPolygon geometry, or nil if there are no coordinates.
func GeometryBounds(g *geojson.Geometry) *Bound {
	if g == nil {
		return nil
	}
	var polys [][][][]float64
	switch {
	case g.IsPolygon():
		polys = [][][][]float64{g.Polygon}
	case g.IsMultiPolygon():
		polys = g.MultiPolygon
	default:
		return nil
	}
	ret := Bound{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	found := false
	for _, poly := range polys {
		for _, ring := range poly {
			for _, pt := range ring {
				if len(pt) < 2 {
					continue
				}
				found = true
				ret.MinLon = math.Min(ret.MinLon, pt[0])
				ret.MinLat = math.Min(ret.MinLat, pt[1])
				ret.MaxLon = math.Max(ret.MaxLon, pt[0])
				ret.MaxLat = math.Max(ret.MaxLat, pt[1])
			}
		}
	}
	if !found {
		return nil
	}
	return &ret
}

// ReduceBounds returns the smallest Bound enclosing every non-nil input, or
// nil if there are none.  A single-point result is widened by one degree in
// every direction so that it can still serve as a viewport.
func ReduceBounds(bounds []*Bound) *Bound {
	var ret *Bound
	for _, b := range bounds {
		if b == nil {
			continue
		}
		if ret == nil {
			acc := *b
			ret = &acc
			continue
		}
		ret.MinLon = math.Min(ret.MinLon, b.MinLon)
		ret.MinLat = math.Min(ret.MinLat, b.MinLat)
		ret.MaxLon = math.Max(ret.MaxLon, b.MaxLon)
		ret.MaxLat = math.Max(ret.MaxLat, b.MaxLat)
	}
	if ret != nil && ret.MaxLat == ret.MinLat && ret.MaxLon == ret.MinLon {
		ret.MinLon--
		ret.MinLat--
		ret.MaxLon++
		ret.MaxLat++
	}
	return ret
}

// RecordBounds returns the Bounds of each provided Record, in order.
func RecordBounds(recs []Record) []*Bound {
	ret := make([]*Bound, len(recs))
	for idx, rec := range recs {
		ret[idx] = rec.Bounds
	}
	return ret
}
