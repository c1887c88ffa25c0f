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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	testutil "github.com/ilhamster/netviz/test_util"
	"github.com/ilhamster/netviz/util"
	geojson "github.com/paulmach/go.geojson"
)

const testGeoJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"iso_a2": "AA", "name": "Squareland"},
		"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]}
	}, {
		"type": "Feature",
		"id": "bb",
		"properties": {"name": "Islandia"},
		"geometry": {"type": "MultiPolygon", "coordinates": [
			[[[10, 10], [11, 10], [11, 11], [10, 10]]],
			[[[-5, 20], [-4, 20], [-4, 25], [-5, 20]]]
		]}
	}]
}`

func mustParse(t *testing.T, s string) *Table {
	t.Helper()
	tab, err := ParseTable([]byte(s))
	if err != nil {
		t.Fatalf("ParseTable() yielded unexpected error: %s", err)
	}
	return tab
}

func TestLookup(t *testing.T) {
	tab := mustParse(t, testGeoJSON)
	for _, test := range []struct {
		description string
		code        string
		wantName    string
		wantBounds  *Bound
		wantEmpty   bool
	}{{
		description: "polygon by property code",
		code:        "aa",
		wantName:    "Squareland",
		wantBounds:  &Bound{0, 0, 2, 2},
	}, {
		description: "upper case",
		code:        "AA",
		wantName:    "Squareland",
		wantBounds:  &Bound{0, 0, 2, 2},
	}, {
		description: "multipolygon by feature ID",
		code:        "Bb",
		wantName:    "Islandia",
		wantBounds:  &Bound{-5, 10, 11, 25},
	}, {
		description: "unknown",
		code:        "zz",
		wantEmpty:   true,
	}, {
		description: "empty code",
		code:        "",
		wantEmpty:   true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := tab.Lookup(test.code)
			if got.IsEmpty() != test.wantEmpty {
				t.Fatalf("Lookup(%q).IsEmpty() = %t, want %t", test.code, got.IsEmpty(), test.wantEmpty)
			}
			if test.wantEmpty {
				if diff := cmp.Diff(Record{}, got); diff != "" {
					t.Errorf("Lookup(%q) = %v, want the empty Record", test.code, got)
				}
				return
			}
			if got.Name != test.wantName {
				t.Errorf("Lookup(%q).Name = %q, want %q", test.code, got.Name, test.wantName)
			}
			if diff := cmp.Diff(test.wantBounds, got.Bounds); diff != "" {
				t.Errorf("Lookup(%q).Bounds = %v, diff (-want +got):\n%s", test.code, got.Bounds, diff)
			}
		})
	}
}

func TestLookupIsCaseInsensitiveOnDefaultTable(t *testing.T) {
	upper, lower := Default().Lookup("US"), Default().Lookup("us")
	if upper.IsEmpty() {
		t.Fatalf("Default().Lookup(US) is empty")
	}
	if diff := cmp.Diff(lower, upper); diff != "" {
		t.Errorf("Lookup(US) and Lookup(us) differ (-us +US):\n%s", diff)
	}
}

func TestLookupDoesNotExposeTable(t *testing.T) {
	tab := mustParse(t, testGeoJSON)
	first := tab.Lookup("aa")
	first.Bounds.MaxLon = 100
	if got := tab.Lookup("aa").Bounds.MaxLon; got != 2 {
		t.Errorf("mutating a looked-up Bound changed the table: MaxLon = %f", got)
	}
}

func TestParseTableErrors(t *testing.T) {
	for _, test := range []struct {
		description string
		geoJSON     string
	}{{
		description: "not geojson",
		geoJSON:     `[1, 2, 3]`,
	}, {
		description: "missing code",
		geoJSON: `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {},
			"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 1], [0, 0]]]}}]}`,
	}, {
		description: "point geometry",
		geoJSON: `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": {"iso_a2": "pt"},
			"geometry": {"type": "Point", "coordinates": [0, 0]}}]}`,
	}, {
		description: "duplicate code",
		geoJSON: `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {"iso_a2": "aa"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 1], [0, 0]]]}},
			{"type": "Feature", "properties": {"iso_a2": "AA"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 1], [0, 0]]]}}
		]}`,
	}} {
		t.Run(test.description, func(t *testing.T) {
			if _, err := ParseTable([]byte(test.geoJSON)); err == nil {
				t.Errorf("ParseTable() yielded no error, wanted one")
			}
		})
	}
}

func TestDefaultTable(t *testing.T) {
	codes := Default().Codes()
	if len(codes) < 180 {
		t.Fatalf("Default() table has %d countries, want at least 180", len(codes))
	}
	for _, code := range codes {
		if rec := Default().Lookup(code); rec.Bounds == nil || rec.Name == "" {
			t.Errorf("bundled country '%s' has no bounds or name", code)
		}
	}
	for _, code := range []string{
		"us", "ca", "br", "gb", "fr", "de", "ch", "at", "be", "nl", "ua", "ru",
		"tr", "il", "ae", "sa", "in", "cn", "hk", "tw", "jp", "kr", "sg", "id",
		"au", "nz", "za", "ng", "eg", "ke",
	} {
		if Default().Lookup(code).IsEmpty() {
			t.Errorf("bundled table is missing '%s'", code)
		}
	}
}

func TestDefaultOutlinesAreNotBoxes(t *testing.T) {
	for _, code := range Default().Codes() {
		g := Default().Lookup(code).Geometry
		polygons := g.MultiPolygon
		if g.IsPolygon() {
			polygons = [][][][]float64{g.Polygon}
		}
		for _, polygon := range polygons {
			lons, lats := map[float64]bool{}, map[float64]bool{}
			for _, pt := range polygon[0] {
				lons[pt[0]], lats[pt[1]] = true, true
			}
			if len(lons) <= 2 && len(lats) <= 2 {
				t.Errorf("bundled country '%s' has an axis-aligned box outline", code)
			}
		}
	}
}

const naturalEarthGeoJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"ISO_A2": "CH", "ISO_A2_EH": "CH", "NAME": "Switzerland"},
		"geometry": {"type": "Polygon", "coordinates": [[[6, 46], [10, 46], [9, 48], [6, 46]]]}
	}, {
		"type": "Feature",
		"properties": {"ISO_A2": "-99", "ISO_A2_EH": "FR", "NAME": "France"},
		"geometry": {"type": "Polygon", "coordinates": [[[-4, 43], [8, 43], [2, 51], [-4, 43]]]}
	}, {
		"type": "Feature",
		"properties": {"ISO_A2": "-99", "ISO_A2_EH": "-99", "NAME": "Somaliland"},
		"geometry": {"type": "Polygon", "coordinates": [[[43, 8], [48, 8], [45, 11], [43, 8]]]}
	}, {
		"type": "Feature",
		"properties": {"ISO_A2": "-99", "ISO_A2_EH": "-99", "NAME": "N. Cyprus"},
		"geometry": {"type": "Polygon", "coordinates": [[[33, 35], [34, 35], [34, 35.5], [33, 35]]]}
	}]
}`

func TestParseNaturalEarthTable(t *testing.T) {
	tab := mustParse(t, naturalEarthGeoJSON)
	if diff := cmp.Diff([]string{"ch", "fr"}, tab.Codes()); diff != "" {
		t.Errorf("Codes() diff (-want +got):\n%s", diff)
	}
	for _, test := range []struct {
		code     string
		wantName string
	}{
		{"CH", "Switzerland"},
		{"fr", "France"},
	} {
		if got := tab.Lookup(test.code).Name; got != test.wantName {
			t.Errorf("Lookup(%q).Name = %q, want %q", test.code, got, test.wantName)
		}
	}
	if !tab.Lookup("-99").IsEmpty() {
		t.Errorf("Lookup(-99) is not empty")
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.geojson")
	if err := os.WriteFile(path, []byte(testGeoJSON), 0o644); err != nil {
		t.Fatalf("failed to write geo data: %s", err)
	}
	tab, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() yielded unexpected error: %s", err)
	}
	if diff := cmp.Diff([]string{"aa", "bb"}, tab.Codes()); diff != "" {
		t.Errorf("Codes() diff (-want +got):\n%s", diff)
	}
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Errorf("LoadTable(missing) yielded no error, wanted one")
	}
}

func TestGeometryBounds(t *testing.T) {
	for _, test := range []struct {
		description string
		geometry    *geojson.Geometry
		want        *Bound
	}{{
		description: "nil",
	}, {
		description: "point",
		geometry:    geojson.NewPointGeometry([]float64{1, 2}),
	}, {
		description: "empty polygon",
		geometry:    geojson.NewPolygonGeometry(nil),
	}, {
		description: "polygon",
		geometry:    geojson.NewPolygonGeometry([][][]float64{{{-3, 4}, {5, -6}, {1, 1}}}),
		want:        &Bound{-3, -6, 5, 4},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := GeometryBounds(test.geometry)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("GeometryBounds() = %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestReduceBounds(t *testing.T) {
	for _, test := range []struct {
		description string
		bounds      []*Bound
		want        *Bound
	}{{
		description: "no features",
	}, {
		description: "no bounds present",
		bounds:      []*Bound{nil, nil},
	}, {
		description: "single point widened",
		bounds:      []*Bound{{5, 5, 5, 5}},
		want:        &Bound{4, 4, 6, 6},
	}, {
		description: "coincident points widened",
		bounds:      []*Bound{{5, 5, 5, 5}, nil, {5, 5, 5, 5}},
		want:        &Bound{4, 4, 6, 6},
	}, {
		description: "one collapsed axis is not widened",
		bounds:      []*Bound{{1, 5, 3, 5}},
		want:        &Bound{1, 5, 3, 5},
	}, {
		description: "union",
		bounds:      []*Bound{{0, 0, 2, 2}, nil, {-5, 10, 11, 25}, {1, -3, 1, -3}},
		want:        &Bound{-5, -3, 11, 25},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := ReduceBounds(test.bounds)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("ReduceBounds() = %v, diff (-want +got):\n%s", got, diff)
			}
			for _, b := range test.bounds {
				if b != nil && !got.Contains(*b) {
					t.Errorf("ReduceBounds() = %v does not contain input %v", *got, *b)
				}
			}
		})
	}
}

func TestReduceBoundsDoesNotModifyInputs(t *testing.T) {
	in := &Bound{5, 5, 5, 5}
	ReduceBounds([]*Bound{in})
	if diff := cmp.Diff(&Bound{5, 5, 5, 5}, in); diff != "" {
		t.Errorf("ReduceBounds() modified its input (-want +got):\n%s", diff)
	}
}

func TestReduceRecordBounds(t *testing.T) {
	tab := mustParse(t, testGeoJSON)
	recs := []Record{tab.Lookup("aa"), {}, tab.Lookup("bb")}
	got := ReduceBounds(RecordBounds(recs))
	if diff := cmp.Diff(&Bound{-5, 0, 11, 25}, got); diff != "" {
		t.Errorf("ReduceBounds(RecordBounds()) = %v, diff (-want +got):\n%s", got, diff)
	}
}

func TestBoundDefine(t *testing.T) {
	if msg, failed := testutil.NewUpdateComparator().
		WithTestUpdates(Bound{-1, -2, 3, 4}.Define()).
		WithWantUpdates(
			util.DoubleProperty(minLonKey, -1),
			util.DoubleProperty(minLatKey, -2),
			util.DoubleProperty(maxLonKey, 3),
			util.DoubleProperty(maxLatKey, 4),
		).
		Compare(t); failed {
		t.Fatal(msg)
	}
}
