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

package choropleth

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/netviz/color"
	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/label"
	"github.com/ilhamster/netviz/magnitude"
	"github.com/ilhamster/netviz/payload"
	"github.com/ilhamster/netviz/result"
	testutil "github.com/ilhamster/netviz/test_util"
	"github.com/ilhamster/netviz/util"
)

const testGeoJSON = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"iso_a2": "AA", "name": "Squareland"},
		"geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]}
	}, {
		"type": "Feature",
		"properties": {"iso_a2": "BB", "name": "Oblongia"},
		"geometry": {"type": "Polygon", "coordinates": [[[10, -4], [14, -4], [14, 1], [10, 1], [10, -4]]]}
	}]
}`

func testTransformer(t *testing.T) *Transformer {
	t.Helper()
	tab, err := geo.ParseTable([]byte(testGeoJSON))
	if err != nil {
		t.Fatalf("ParseTable() yielded unexpected error: %s", err)
	}
	return New(tab)
}

func row(country string, ys ...float64) result.Series {
	s := result.Series{}
	if country != "" {
		s.Metadata.Groups = []result.Group{{Type: "facet", Name: CountryGroup, Value: country}}
	}
	for idx, y := range ys {
		s.Data = append(s.Data, result.Point(float64(idx), y))
	}
	return s
}

func TestTransform(t *testing.T) {
	for _, test := range []struct {
		description    string
		rows           []result.Series
		wantCodes      []string
		wantAggregates []Aggregate
	}{{
		description: "known countries",
		rows: []result.Series{
			row("AA", 100, 200),
			row("bb", 5),
		},
		wantCodes: []string{"aa", "bb"},
		wantAggregates: []Aggregate{
			{CountryCode: "aa", RowIndex: 0, Sum: 300, Samples: []float64{100, 200}},
			{CountryCode: "bb", RowIndex: 1, Sum: 5, Samples: []float64{5}},
		},
	}, {
		description: "row without a country keeps its position",
		rows: []result.Series{
			row("", 1),
			row("BB", 2),
		},
		wantCodes: []string{"", "bb"},
		wantAggregates: []Aggregate{
			{CountryCode: "bb", RowIndex: 1, Sum: 2, Samples: []float64{2}},
		},
	}, {
		description: "unknown country is indexed without geometry",
		rows: []result.Series{
			row("ZZ", 7),
		},
		wantCodes: []string{""},
		wantAggregates: []Aggregate{
			{CountryCode: "zz", RowIndex: 0, Sum: 7, Samples: []float64{7}},
		},
	}, {
		description: "undefined samples are skipped",
		rows: []result.Series{
			row("aa", 1, math.NaN(), 2),
		},
		wantCodes: []string{"aa"},
		wantAggregates: []Aggregate{
			{CountryCode: "aa", RowIndex: 0, Sum: 3, Samples: []float64{1, 2}},
		},
	}, {
		description: "repeated country keeps the last row",
		rows: []result.Series{
			row("aa", 1),
			row("bb", 2),
			row("AA", 3),
		},
		wantCodes: []string{"aa", "bb", "aa"},
		wantAggregates: []Aggregate{
			{CountryCode: "aa", RowIndex: 2, Sum: 3, Samples: []float64{3}},
			{CountryCode: "bb", RowIndex: 1, Sum: 2, Samples: []float64{2}},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			b := testTransformer(t).Transform(test.rows)
			gotCodes := []string{}
			for _, f := range b.Features() {
				gotCodes = append(gotCodes, f.CountryCode)
			}
			if diff := cmp.Diff(test.wantCodes, gotCodes); diff != "" {
				t.Errorf("Got feature codes %v, diff (-want +got):\n%s", gotCodes, diff)
			}
			if diff := cmp.Diff(test.wantAggregates, b.Aggregates()); diff != "" {
				t.Errorf("Got aggregates %v, diff (-want +got):\n%s", b.Aggregates(), diff)
			}
		})
	}
}

func TestRowWithoutCountryHasNoAggregate(t *testing.T) {
	b := testTransformer(t).Transform([]result.Series{row("", 10)})
	if len(b.Features()) != 1 || !b.Features()[0].IsEmpty() {
		t.Fatalf("Features() = %v, want one empty Record", b.Features())
	}
	if got := b.Aggregates(); len(got) != 0 {
		t.Errorf("Aggregates() = %v, want none", got)
	}
}

func TestNewBatchReplacesAggregates(t *testing.T) {
	tr := testTransformer(t)
	first := tr.Transform([]result.Series{row("aa", 1), row("bb", 2)})
	second := tr.Transform([]result.Series{row("bb", 3)})
	if got := second.Aggregate("aa"); !got.IsEmpty() {
		t.Errorf("second batch Aggregate(aa) = %v, want empty", got)
	}
	if got := second.Aggregate("BB").Sum; got != 3 {
		t.Errorf("second batch Aggregate(BB).Sum = %f, want 3", got)
	}
	if got := first.Aggregate("aa").Sum; got != 1 {
		t.Errorf("first batch Aggregate(aa).Sum = %f, want 1", got)
	}
}

func TestSumsAndViewport(t *testing.T) {
	b := testTransformer(t).Transform([]result.Series{
		row("aa", 1, 2),
		row("zz", 4),
		row("bb", 8),
	})
	if diff := cmp.Diff([]float64{3, 4, 8}, b.Sums()); diff != "" {
		t.Errorf("Got sums %v, diff (-want +got):\n%s", b.Sums(), diff)
	}
	if diff := cmp.Diff(&geo.Bound{MinLon: 0, MinLat: -4, MaxLon: 14, MaxLat: 2}, b.Viewport()); diff != "" {
		t.Errorf("Got viewport %v, diff (-want +got):\n%s", b.Viewport(), diff)
	}
	empty := testTransformer(t).Transform([]result.Series{row("zz", 1)})
	if vp := empty.Viewport(); vp != nil {
		t.Errorf("Viewport() with no geometry = %v, want nil", vp)
	}
}

func TestPopup(t *testing.T) {
	b := testTransformer(t).Transform([]result.Series{
		row("aa", 1000, 2000, 3000),
		row("zz"),
	})
	for _, test := range []struct {
		description string
		code        string
		want        string
	}{{
		description: "known country",
		code:        "AA",
		want:        `<div class="netviz-popup"><b>Squareland</b><br>6000 B</div>`,
	}, {
		description: "country without geometry",
		code:        "zz",
		want:        `<div class="netviz-popup"><b>ZZ</b><br>0 B</div>`,
	}, {
		description: "absent country",
		code:        "bb",
		want:        `<div class="netviz-popup">No data for BB</div>`,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, err := b.Popup(test.code, "B")
			if err != nil {
				t.Fatalf("Popup() yielded unexpected error: %s", err)
			}
			if diff := cmp.Diff(test.want, got.String()); diff != "" {
				t.Errorf("Got popup %s, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestPopupEscapesNames(t *testing.T) {
	tab, err := geo.ParseTable([]byte(strings.Replace(testGeoJSON, "Squareland", "<Square & Land>", 1)))
	if err != nil {
		t.Fatalf("ParseTable() yielded unexpected error: %s", err)
	}
	got, err := New(tab).Transform([]result.Series{row("aa", 1)}).Popup("aa", "B")
	if err != nil {
		t.Fatalf("Popup() yielded unexpected error: %s", err)
	}
	if strings.Contains(got.String(), "<Square") {
		t.Errorf("Popup() = %s, want escaped country name", got)
	}
}

func TestRender(t *testing.T) {
	tab, err := geo.ParseTable([]byte(testGeoJSON))
	if err != nil {
		t.Fatalf("ParseTable() yielded unexpected error: %s", err)
	}
	b := New(tab).Transform([]result.Series{
		row("aa", 6000, 6000),
		row(""),
	})
	aa := tab.Lookup("aa")
	geometry, err := json.Marshal(aa.Geometry)
	if err != nil {
		t.Fatalf("failed to marshal geometry: %s", err)
	}
	popup, err := b.Popup("aa", "B")
	if err != nil {
		t.Fatalf("Popup() yielded unexpected error: %s", err)
	}
	pal := color.NewPalette("red", "blue")
	if err := testutil.CompareResponses(t,
		func(db util.DataBuilder) {
			b.Render(db, &RenderSettings{Suffix: "B", Palette: pal})
		},
		func(db testutil.TestDataBuilder) {
			db.With(
				geo.Bound{MinLon: 0, MinLat: 0, MaxLon: 2, MaxLat: 2}.Define(),
			).Child().With(
				util.StringProperty(countryCodeKey, "aa"),
				util.StringProperty(countryNameKey, "Squareland"),
				util.StringProperty(geometryKey, string(geometry)),
				aa.Bounds.Define(),
				util.DoubleProperty(sumKey, 12000),
				util.IntegerProperty(rowIndexKey, 0),
				magnitude.SelfMagnitude(12000),
				label.Text("12 KB"),
				color.Primary("red"),
			).Child().With(
				util.StringProperty(payload.TypeKey, PopupPayloadType),
				util.StringProperty(popupHTMLKey, popup.String()),
			).Parent().AndChild()
		},
	); err != nil {
		t.Fatalf("encountered unexpected error building the choropleth: %s", err)
	}
}

func TestRenderDrawsRepeatedCountryOnce(t *testing.T) {
	tab, err := geo.ParseTable([]byte(testGeoJSON))
	if err != nil {
		t.Fatalf("ParseTable() yielded unexpected error: %s", err)
	}
	b := New(tab).Transform([]result.Series{
		row("aa", 1000),
		row("AA", 3000),
	})
	aa := tab.Lookup("aa")
	geometry, err := json.Marshal(aa.Geometry)
	if err != nil {
		t.Fatalf("failed to marshal geometry: %s", err)
	}
	popup, err := b.Popup("aa", "B")
	if err != nil {
		t.Fatalf("Popup() yielded unexpected error: %s", err)
	}
	agg := b.Aggregate("aa")
	pal := color.NewPalette("red", "blue")
	if err := testutil.CompareResponses(t,
		func(db util.DataBuilder) {
			b.Render(db, &RenderSettings{Suffix: "B", Palette: pal})
		},
		func(db testutil.TestDataBuilder) {
			db.With(
				geo.Bound{MinLon: 0, MinLat: 0, MaxLon: 2, MaxLat: 2}.Define(),
			).Child().AndChild().With(
				util.StringProperty(countryCodeKey, "aa"),
				util.StringProperty(countryNameKey, "Squareland"),
				util.StringProperty(geometryKey, string(geometry)),
				aa.Bounds.Define(),
				util.DoubleProperty(sumKey, 3000),
				util.IntegerProperty(rowIndexKey, 1),
				magnitude.SelfMagnitude(3000),
				label.Text(agg.label("B")),
				color.Primary("blue"),
			).Child().With(
				util.StringProperty(payload.TypeKey, PopupPayloadType),
				util.StringProperty(popupHTMLKey, popup.String()),
			)
		},
	); err != nil {
		t.Fatalf("encountered unexpected error building the choropleth: %s", err)
	}
}

func TestRenderTable(t *testing.T) {
	b := testTransformer(t).Transform([]result.Series{
		row("bb", 2),
		row("zz", 3),
	})
	if err := testutil.CompareResponses(t,
		func(db util.DataBuilder) {
			b.RenderTable(db, "b")
		},
		func(db testutil.TestDataBuilder) {
			db.Child().
				Child().With(countryCol.Properties...).
				AndChild().With(rowIndexCol.Properties...).
				AndChild().With(totalCol.Properties...).
				Parent().
				AndChild().
				Child().With(
				countryCol.Cat.Tag(), util.StringProperty("table_cell", "Oblongia"),
			).AndChild().With(
				rowIndexCol.Cat.Tag(), util.IntegerProperty("table_cell", 0),
			).AndChild().With(
				totalCol.Cat.Tag(), util.StringProperty("table_cell", "2 b"),
			).Parent().With(
				util.StringProperty(countryCodeKey, "bb"),
				magnitude.SelfMagnitude(2),
			).AndChild().
				Child().With(
				countryCol.Cat.Tag(), util.StringProperty("table_cell", "zz"),
			).AndChild().With(
				rowIndexCol.Cat.Tag(), util.IntegerProperty("table_cell", 1),
			).AndChild().With(
				totalCol.Cat.Tag(), util.StringProperty("table_cell", "3 b"),
			).Parent().With(
				util.StringProperty(countryCodeKey, "zz"),
				magnitude.SelfMagnitude(3),
			)
		},
	); err != nil {
		t.Fatalf("encountered unexpected error building the table: %s", err)
	}
}
