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

package color

import (
	"testing"

	testutil "github.com/ilhamster/netviz/test_util"
	"github.com/ilhamster/netviz/util"
)

func TestColorDeclarations(t *testing.T) {
	traffic := NewSpace("traffic", "#f7fbff", "#08306b")
	pal := NewPalette("red", "green")
	for _, test := range []struct {
		description string
		updates     util.PropertyUpdate
		wantUpdates []util.PropertyUpdate
	}{{
		description: "space definition",
		updates:     traffic.Define(),
		wantUpdates: []util.PropertyUpdate{
			util.StringsProperty(colorSpaceNamePrefix+"traffic", "#f7fbff", "#08306b"),
		},
	}, {
		description: "primary from space, fixed stroke",
		updates: util.Chain(
			traffic.PrimaryColor(.25),
			Stroke("white"),
		),
		wantUpdates: []util.PropertyUpdate{
			util.StringProperty(primaryColorSpaceKey, colorSpaceNamePrefix+"traffic"),
			util.DoubleProperty(primaryColorSpaceValueKey, .25),
			util.StringProperty(strokeColorKey, "white"),
		},
	}, {
		description: "stroke from space",
		updates:     traffic.StrokeColor(1),
		wantUpdates: []util.PropertyUpdate{
			util.StringProperty(strokeColorSpaceKey, colorSpaceNamePrefix+"traffic"),
			util.DoubleProperty(strokeColorSpaceValueKey, 1),
		},
	}, {
		description: "palette wraps",
		updates:     pal.Primary(3),
		wantUpdates: []util.PropertyUpdate{
			util.StringProperty(primaryColorKey, "green"),
		},
	}, {
		description: "negative index sets nothing",
		updates:     pal.Primary(-1),
	}, {
		description: "empty palette sets nothing",
		updates:     NewPalette().Primary(0),
	}} {
		t.Run(test.description, func(t *testing.T) {
			if msg, failed := testutil.NewUpdateComparator().
				WithTestUpdates(test.updates).
				WithWantUpdates(test.wantUpdates...).
				Compare(t); failed {
				t.Fatal(msg)
			}
		})
	}
}

func TestPaletteColor(t *testing.T) {
	for idx, want := range []string{"#1f77b4", "#ff7f0e"} {
		if got := Category10.Color(idx); got != want {
			t.Errorf("Category10.Color(%d) = %q, want %q", idx, got, want)
		}
	}
	if got, want := Category10.Color(10), Category10.Color(0); got != want {
		t.Errorf("Category10.Color(10) = %q, want %q", got, want)
	}
}
