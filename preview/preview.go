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

// Package preview renders flow graphs and choropleth batches as standalone
// HTML pages, for inspecting results outside the host platform.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/ilhamster/netviz/choropleth"
	"github.com/ilhamster/netviz/magnitude"
	"github.com/ilhamster/netviz/sankey"
)

// WorldMap is the ECharts map type choropleths are drawn on.
const WorldMap = "world"

// nodeNames returns a display name for each node in g, by ID.  ECharts
// identifies Sankey nodes by name, so names shared by several nodes are
// replaced by the nodes' IDs.
func nodeNames(g *sankey.Graph) map[string]string {
	counts := map[string]int{}
	for _, node := range g.Nodes {
		counts[node.Name]++
	}
	ret := make(map[string]string, len(g.Nodes))
	for _, node := range g.Nodes {
		if counts[node.Name] > 1 {
			ret[node.ID] = node.ID
		} else {
			ret[node.ID] = node.Name
		}
	}
	return ret
}

// Sankey writes g to w as an HTML Sankey diagram.
func Sankey(w io.Writer, g *sankey.Graph, title string) error {
	names := nodeNames(g)
	nodes := make([]opts.SankeyNode, len(g.Nodes))
	for idx, node := range g.Nodes {
		nodes[idx] = opts.SankeyNode{Name: names[node.ID]}
	}
	links := make([]opts.SankeyLink, len(g.Links))
	for idx, link := range g.Links {
		links[idx] = opts.SankeyLink{
			Source: names[link.Source],
			Target: names[link.Target],
			Value:  float32(link.Value),
		}
	}
	chart := charts.NewSankey()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	chart.AddSeries("flows", nodes, links)
	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render sankey: %w", err)
	}
	return nil
}

// Choropleth writes b to w as an HTML world map, shading each country by its
// total.  The map is labeled with the largest total, scaled with suffix.
func Choropleth(w io.Writer, b *choropleth.Batch, title, suffix string) error {
	var data []opts.MapData
	var max float64
	for _, agg := range b.Aggregates() {
		data = append(data, opts.MapData{
			Name:  countryName(b, agg.CountryCode),
			Value: agg.Sum,
		})
		if agg.Sum > max {
			max = agg.Sum
		}
	}
	chart := charts.NewMap()
	chart.RegisterMapType(WorldMap)
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "max " + magnitude.Format(max, suffix),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: 0,
			Max: float32(max),
		}),
	)
	chart.AddSeries("traffic", data)
	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render choropleth: %w", err)
	}
	return nil
}

// countryName returns the display name for code, falling back to the code
// itself for countries without geometry.
func countryName(b *choropleth.Batch, code string) string {
	for _, f := range b.Features() {
		if f.CountryCode == code && f.Name != "" {
			return f.Name
		}
	}
	return strings.ToUpper(code)
}
