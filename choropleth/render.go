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
	"fmt"

	"github.com/ilhamster/netviz/category"
	"github.com/ilhamster/netviz/color"
	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/label"
	"github.com/ilhamster/netviz/magnitude"
	"github.com/ilhamster/netviz/payload"
	"github.com/ilhamster/netviz/table"
	"github.com/ilhamster/netviz/util"
)

const (
	countryCodeKey = "choropleth_country_code"
	countryNameKey = "choropleth_country_name"
	geometryKey    = "choropleth_geometry"
	sumKey         = "choropleth_sum"
	rowIndexKey    = "choropleth_row_index"

	// PopupPayloadType is the payload type of a feature's hover popup.
	PopupPayloadType = "choropleth_popup"
	popupHTMLKey     = "choropleth_popup_html"
)

var (
	countryCol  = table.Column(category.New("country", "Country", "Country of the traffic"))
	rowIndexCol = table.Column(category.New("row_index", "Rank", "Position of the country's row in the result"))
	totalCol    = table.Column(category.New("total", "Total", "Total traffic"))
)

// RenderSettings configures how a Batch is rendered.
type RenderSettings struct {
	// Suffix is the unit appended to scaled totals, e.g. "B" or "b".
	Suffix string
	// Palette colors each country by its RowIndex.  Defaults to
	// color.Category10.
	Palette *color.Palette
}

type featureNode struct {
	db util.DataBuilder
}

func (fn *featureNode) Payload() util.DataBuilder {
	return fn.db.Child()
}

// Render writes the receiver to db: the viewport bounds, if any, on db
// itself, then one child per feature.  Placeholder features, for rows without
// a known country and for rows superseded by a later row naming the same
// country, are written as empty children so that children stay aligned with
// input rows.  Each country is thus drawn once, from its indexed row.
//
//	map
//	  properties
//	    * viewport bounds
//	  children
//	    * repeated features
//
//	feature
//	  properties
//	    * countryCodeKey, countryNameKey, geometryKey (GeoJSON)
//	    * feature bounds
//	    * sumKey, rowIndexKey, self magnitude, label, primary color
//	  children
//	    * popup payload
func (b *Batch) Render(db util.DataBuilder, settings *RenderSettings) {
	if settings == nil {
		settings = &RenderSettings{}
	}
	pal := settings.Palette
	if pal == nil {
		pal = color.Category10
	}
	if vp := b.Viewport(); vp != nil {
		db.With(vp.Define())
	}
	for idx, rec := range b.features {
		fn := &featureNode{db: db.Child()}
		if rec.IsEmpty() {
			continue
		}
		agg := b.Aggregate(rec.CountryCode)
		if agg.RowIndex != idx {
			continue
		}
		fn.db.With(
			util.StringProperty(countryCodeKey, rec.CountryCode),
			util.StringProperty(countryNameKey, rec.Name),
			geometryProperty(rec),
			boundsUpdate(rec.Bounds),
			util.DoubleProperty(sumKey, agg.Sum),
			util.IntegerProperty(rowIndexKey, int64(agg.RowIndex)),
			magnitude.SelfMagnitude(agg.Sum),
			label.Text(agg.label(settings.Suffix)),
			pal.Primary(agg.RowIndex),
		)
		popup, err := b.Popup(rec.CountryCode, settings.Suffix)
		if err != nil {
			fn.db.With(util.ErrorProperty(err))
			continue
		}
		payload.New(fn, PopupPayloadType).With(
			util.StringProperty(popupHTMLKey, popup.String()),
		)
	}
}

func boundsUpdate(b *geo.Bound) util.PropertyUpdate {
	if b == nil {
		return util.EmptyUpdate
	}
	return b.Define()
}

func geometryProperty(rec geo.Record) util.PropertyUpdate {
	g, err := json.Marshal(rec.Geometry)
	if err != nil {
		return util.ErrorProperty(fmt.Errorf("failed to encode geometry for '%s': %w", rec.CountryCode, err))
	}
	return util.StringProperty(geometryKey, string(g))
}

// RenderTable writes a country summary table to db, one row per indexed
// country in order of first appearance.
func (b *Batch) RenderTable(db util.DataBuilder, suffix string) {
	tab := table.New(db, nil, countryCol, rowIndexCol, totalCol)
	for _, agg := range b.Aggregates() {
		name := agg.CountryCode
		if rec := b.record(agg.CountryCode); rec.Name != "" {
			name = rec.Name
		}
		tab.Row(
			table.Cell(countryCol, util.String(name)),
			table.Cell(rowIndexCol, util.Integer(int64(agg.RowIndex))),
			table.Cell(totalCol, util.String(agg.label(suffix))),
		).With(
			util.StringProperty(countryCodeKey, agg.CountryCode),
			magnitude.SelfMagnitude(agg.Sum),
		)
	}
}

// RenderPopup writes the popup for the provided country to db as a popup
// payload.
func (b *Batch) RenderPopup(db util.DataBuilder, code, suffix string) {
	popup, err := b.Popup(code, suffix)
	if err != nil {
		db.With(util.ErrorProperty(err))
		return
	}
	db.With(
		util.StringProperty(payload.TypeKey, PopupPayloadType),
		util.StringProperty(popupHTMLKey, popup.String()),
	)
}
