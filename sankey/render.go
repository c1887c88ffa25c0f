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

package sankey

import (
	"github.com/ilhamster/netviz/color"
	"github.com/ilhamster/netviz/label"
	"github.com/ilhamster/netviz/magnitude"
	"github.com/ilhamster/netviz/style"
	"github.com/ilhamster/netviz/util"
)

const (
	elementTypeKey = "sankey_element_type"
	nodeIDKey      = "sankey_node_id"
	nodeNameKey    = "sankey_node_name"
	sourceIDKey    = "sankey_source_id"
	targetIDKey    = "sankey_target_id"
	valueKey       = "sankey_value"
	valueLabelKey  = "sankey_value_label"

	nodeElement = "node"
	linkElement = "link"

	nodeCountKey = "sankey_node_count"
	linkCountKey = "sankey_link_count"
)

// Render writes the receiver into db.  Link labels are scaled with the
// provided unit suffix.  Nodes are colored from color.Category10, and links
// take their source node's color.
//
// Encoded, a graph is:
//
//	graph
//	  properties
//	    * nodeCountKey, linkCountKey
//	  children
//	    * repeated nodes, then repeated links
//
//	node
//	  properties
//	    * elementTypeKey: nodeElement
//	    * nodeIDKey, nodeNameKey
//	    * label format, primary color
//
//	link
//	  properties
//	    * elementTypeKey: linkElement
//	    * sourceIDKey, targetIDKey
//	    * valueKey, self magnitude, valueLabelKey
//	    * label format, stroke style
func (g *Graph) Render(db util.DataBuilder, suffix string) {
	db.With(
		util.IntegerProperty(nodeCountKey, int64(len(g.Nodes))),
		util.IntegerProperty(linkCountKey, int64(len(g.Links))),
	)
	nodeColors := make(map[string]string, len(g.Nodes))
	for idx, node := range g.Nodes {
		nodeColors[node.ID] = color.Category10.Color(idx)
		db.Child().With(
			util.StringProperty(elementTypeKey, nodeElement),
			util.StringProperty(nodeIDKey, node.ID),
			util.StringProperty(nodeNameKey, node.Name),
			label.Format("$("+nodeNameKey+")"),
			color.Category10.Primary(idx),
		)
	}
	for _, link := range g.Links {
		db.Child().With(
			util.StringProperty(elementTypeKey, linkElement),
			util.StringProperty(sourceIDKey, link.Source),
			util.StringProperty(targetIDKey, link.Target),
			util.DoubleProperty(valueKey, link.Value),
			magnitude.SelfMagnitude(link.Value),
			magnitude.ScaledLabel(valueLabelKey, []float64{link.Value}, suffix),
			label.Format("$("+valueLabelKey+")"),
			style.New().
				With("stroke", nodeColors[link.Source]).
				With("stroke-opacity", "0.4").
				Define(),
		)
	}
}
