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

// Package geo provides static country geometry lookup and viewport bounds.
//
// Country geometry comes from a GeoJSON FeatureCollection whose features are
// Polygons or MultiPolygons, each identified by an ISO 3166-1 alpha-2 code
// and named by its 'name' property.  The code is read from the 'iso_a2'
// property, then 'iso_a2_eh', then the feature ID; property names match in
// either case, so Natural Earth admin-0 files parse as-is.  Natural Earth's
// '-99' placeholder is not a code: a feature with no other code is skipped.
//
// A coarse world table, with outlines of a few to a few dozen vertices for
// each of about 190 countries and territories, is bundled with the package
// and available via Default().  Other tables may be parsed with ParseTable or
// read from disk with LoadTable.
//
// Tables are read-only once built.  Lookups return copies, so a Record's
// Bounds may be freely modified by its holder; Geometry is shared and must
// not be.
package geo

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	geojson "github.com/paulmach/go.geojson"
)

const (
	codeProperty         = "iso_a2"
	fallbackCodeProperty = "iso_a2_eh"
	nameProperty         = "name"
	// unassignedCode marks features without an ISO 3166-1 code.
	unassignedCode = "-99"
)

//go:embed data/countries.geojson
var bundledCountries []byte

// Record is a country's geometry and display metadata.  The zero Record is
// the empty record, returned for unknown countries.
type Record struct {
	CountryCode string
	Name        string
	Geometry    *geojson.Geometry
	// Bounds is nil if Geometry has no coordinates.
	Bounds *Bound
}

// IsEmpty returns true if the receiver has no geometry to render.
func (r Record) IsEmpty() bool {
	return r.Geometry == nil
}

type entry struct {
	name     string
	geometry *geojson.Geometry
	bounds   *Bound
}

// Table maps lowercase country codes to country geometry.
type Table struct {
	entries map[string]entry
}

// ParseTable builds a Table from a GeoJSON FeatureCollection.
func ParseTable(geoJSON []byte) (*Table, error) {
	fc, err := geojson.UnmarshalFeatureCollection(geoJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse country geometry: %w", err)
	}
	t := &Table{
		entries: make(map[string]entry, len(fc.Features)),
	}
	for idx, f := range fc.Features {
		code, unassigned := featureCode(f)
		if code == "" {
			if unassigned {
				continue
			}
			return nil, fmt.Errorf("feature %d has no country code", idx)
		}
		code = strings.ToLower(code)
		if f.Geometry == nil || !(f.Geometry.IsPolygon() || f.Geometry.IsMultiPolygon()) {
			return nil, fmt.Errorf("feature '%s' must be a Polygon or MultiPolygon", code)
		}
		if _, ok := t.entries[code]; ok {
			return nil, fmt.Errorf("country '%s' is defined more than once", code)
		}
		name := stringProperty(f, nameProperty)
		t.entries[code] = entry{
			name:     name,
			geometry: f.Geometry,
			bounds:   GeometryBounds(f.Geometry),
		}
	}
	return t, nil
}

// stringProperty returns the named string property of f, trying the name
// as given and then in upper case.
func stringProperty(f *geojson.Feature, key string) string {
	for _, k := range []string{key, strings.ToUpper(key)} {
		if v, ok := f.Properties[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// featureCode returns f's country code, or "" if it has none.  unassigned is
// true if some candidate code was the unassigned placeholder.
func featureCode(f *geojson.Feature) (code string, unassigned bool) {
	id, _ := f.ID.(string)
	for _, candidate := range []string{
		stringProperty(f, codeProperty),
		stringProperty(f, fallbackCodeProperty),
		id,
	} {
		switch candidate {
		case "":
		case unassignedCode:
			unassigned = true
		default:
			return candidate, false
		}
	}
	return "", unassigned
}

// LoadTable reads and parses the GeoJSON file at path.
func LoadTable(path string) (*Table, error) {
	geoJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geo data: %w", err)
	}
	return ParseTable(geoJSON)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := ParseTable(bundledCountries)
	if err != nil {
		panic(fmt.Sprintf("bundled country geometry is invalid: %s", err))
	}
	return t
})

// Default returns the bundled world table.  It is parsed on first use.
func Default() *Table {
	return defaultTable()
}

// Lookup returns the record for the provided country code, ignoring case.
// Unknown and empty codes yield the empty Record.
func (t *Table) Lookup(code string) Record {
	code = strings.ToLower(code)
	e, ok := t.entries[code]
	if code == "" || !ok {
		return Record{}
	}
	ret := Record{
		CountryCode: code,
		Name:        e.name,
		Geometry:    e.geometry,
	}
	if e.bounds != nil {
		b := *e.bounds
		ret.Bounds = &b
	}
	return ret
}

// Codes returns the receiver's country codes in sorted order.
func (t *Table) Codes() []string {
	ret := make([]string, 0, len(t.entries))
	for code := range t.entries {
		ret = append(ret, code)
	}
	sort.Strings(ret)
	return ret
}
