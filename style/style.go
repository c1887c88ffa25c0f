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

// Package style supports specifying SVG or CSS styling.
//
// A Style maps attribute names to values, both strings, and is attached to a
// Datum with Define().  Attribute names and values should follow SVG
// attributes or CSS properties, e.g.
// https://developer.mozilla.org/en-US/docs/Web/SVG/Attribute.
package style

import (
	"fmt"
	"sort"

	"github.com/ilhamster/netviz/util"
)

const keyPrefix = "style_"

// Style is a set of styles that can be attached to a Datum.
type Style struct {
	attrs map[string]string
}

// New returns a new, empty Style.
func New() *Style {
	return &Style{
		attrs: map[string]string{},
	}
}

// With sets the specified attribute in the receiver.
func (s *Style) With(attr, val string) *Style {
	s.attrs[attr] = val
	return s
}

// Define returns a PropertyUpdate defining the receiver into a Datum.
func (s *Style) Define() util.PropertyUpdate {
	attrs := make([]string, 0, len(s.attrs))
	for attr := range s.attrs {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	ret := make([]util.PropertyUpdate, len(attrs))
	for idx, attr := range attrs {
		ret[idx] = util.StringProperty(keyPrefix+attr, s.attrs[attr])
	}
	return util.Chain(ret...)
}

// Px formats the provided value as a pixel specifier.
func Px(valPx float64) string {
	return fmt.Sprintf("%.2fpx", valPx)
}
