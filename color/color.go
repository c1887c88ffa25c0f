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

// Package color supports declaring color spaces and palettes, and coloring
// renderable items.
//
// A Datum may be annotated with a primary color, its dominant fill, and a
// stroke color, used for borders and text.  Either may be given:
//
//   - directly, with Primary() or Stroke(), as an HTML color string;
//   - as a position along a color Space, a named continuum of colors defined
//     once in the response and linearly interpolated by the renderer from
//     0.0 (the first color) to 1.0 (the last);
//   - as an index into a Palette, a fixed, cyclic list of distinct colors.
//
// Palettes give items a stable color from their rank:
//
//	countries := color.NewPalette("#1f77b4", "#ff7f0e", "#2ca02c")
//	for idx, row := range rows {
//	  feature.With(countries.Primary(idx))
//	}
//
// If a datum specifies one color type in more than one way, the result is
// undefined.
package color

import "github.com/ilhamster/netviz/util"

const (
	colorSpaceNamePrefix = "color_space_"

	primaryColorSpaceKey      = "primary_color_space"
	primaryColorSpaceValueKey = "primary_color_space_value"
	primaryColorKey           = "primary_color"

	strokeColorSpaceKey      = "stroke_color_space"
	strokeColorSpaceValueKey = "stroke_color_space_value"
	strokeColorKey           = "stroke_color"
)

// Space is a color continuum mapping doubles in [0, 1] to colors.
type Space struct {
	name   string
	colors []string
}

// NewSpace defines a new color space interpolating between the provided
// colors.
func NewSpace(name string, colors ...string) *Space {
	return &Space{
		name:   name,
		colors: colors,
	}
}

// Name returns the Space's name.
func (s *Space) Name() string {
	return s.name
}

// Define annotates with a definition of the receiving Space.
func (s *Space) Define() util.PropertyUpdate {
	return util.StringsProperty(colorSpaceNamePrefix+s.name, s.colors...)
}

// PrimaryColor annotates with a primary color at the provided position along
// the receiver.
func (s *Space) PrimaryColor(colorValue float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(primaryColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(primaryColorSpaceValueKey, colorValue),
	)
}

// StrokeColor annotates with a stroke color at the provided position along
// the receiver.
func (s *Space) StrokeColor(colorValue float64) util.PropertyUpdate {
	return util.Chain(
		util.StringProperty(strokeColorSpaceKey, colorSpaceNamePrefix+s.name),
		util.DoubleProperty(strokeColorSpaceValueKey, colorValue),
	)
}

// Primary annotates with the specified primary color.
func Primary(colorValue string) util.PropertyUpdate {
	return util.StringProperty(primaryColorKey, colorValue)
}

// Stroke annotates with the specified stroke color.
func Stroke(colorValue string) util.PropertyUpdate {
	return util.StringProperty(strokeColorKey, colorValue)
}

// Palette is a cyclic list of distinct colors.
type Palette struct {
	colors []string
}

// NewPalette returns a Palette of the provided colors.
func NewPalette(colors ...string) *Palette {
	return &Palette{
		colors: colors,
	}
}

// Color returns the palette color for idx, wrapping around the palette.
// Negative indices and empty palettes yield "".
func (p *Palette) Color(idx int) string {
	if len(p.colors) == 0 || idx < 0 {
		return ""
	}
	return p.colors[idx%len(p.colors)]
}

// Primary annotates with the palette color for idx as the primary color.
func (p *Palette) Primary(idx int) util.PropertyUpdate {
	c := p.Color(idx)
	return util.If(c != "", Primary(c))
}

// Category10 is a ten-color categorical palette.
var Category10 = NewPalette(
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
)
