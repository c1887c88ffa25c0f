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

// Package table provides structural helpers for defining tables, such as the
// per-country summary shown beside a choropleth.  A table is created on a
// dedicated DataBuilder with New, which must not be used for anything else:
//
//	tab := table.New(tableRoot, renderSettings, countryCol, totalCol)
//	tab.Row(
//	  table.Cell(countryCol, util.String("us")),
//	  table.Cell(totalCol, util.String("1500 KB")),
//	)
//
// Rows and cells may host payloads (see package payload).
//
// Encoded, a table is:
//
//	table
//	  properties
//	    * render settings
//	  children
//	    * header row, whose children are column definitions (categories)
//	    * repeated rows, whose children are cells and payloads
//
//	cell
//	  properties
//	    * column tag
//	    * cellKey: cell value, or formattedCellKey: format string
//	    * <decorators>
//	  children
//	    * repeated payloads
package table

import (
	"github.com/ilhamster/netviz/category"
	"github.com/ilhamster/netviz/util"
)

const (
	cellKey          = "table_cell"
	formattedCellKey = "table_formatted_cell"

	rowHeightPxKey = "table_row_height_px"
	fontSizePxKey  = "table_font_size_px"
)

// RenderSettings is a collection of table rendering settings.
type RenderSettings struct {
	// The height of a row in pixels.
	RowHeightPx int64
	// The table text font size in pixels.
	FontSizePx int64
}

func (rs *RenderSettings) define() util.PropertyUpdate {
	if rs == nil {
		return util.EmptyUpdate
	}
	return util.Chain(
		util.IntegerProperty(rowHeightPxKey, rs.RowHeightPx),
		util.IntegerProperty(fontSizePxKey, rs.FontSizePx),
	)
}

// ColumnUpdate is a table column: a category, giving the column's ID,
// display name, and description, plus arbitrary column properties.
type ColumnUpdate struct {
	Cat        *category.Category
	Properties []util.PropertyUpdate
}

// Column returns a new column with the specified category and properties.
func Column(cat *category.Category, properties ...util.PropertyUpdate) *ColumnUpdate {
	return &ColumnUpdate{
		Cat:        cat,
		Properties: append(properties, cat.Define()),
	}
}

// With annotates the receiving column with the provided properties.
func (cu *ColumnUpdate) With(properties ...util.PropertyUpdate) *ColumnUpdate {
	cu.Properties = append(cu.Properties, properties...)
	return cu
}

// CellUpdate is a PropertyUpdate specifically annotating a cell.
type CellUpdate util.PropertyUpdate

// Cell returns a CellUpdate placing value in the provided column.
func Cell(column *ColumnUpdate, value util.Value, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.Cat.Tag(),
		value(cellKey),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// FormattedCell returns a CellUpdate placing a format string in the provided
// column.  Properties referenced by the format string should be among
// cellUpdates.
func FormattedCell(column *ColumnUpdate, format string, cellUpdates ...util.PropertyUpdate) CellUpdate {
	cellUpdates = append(cellUpdates,
		column.Cat.Tag(),
		util.StringProperty(formattedCellKey, format),
	)
	return CellUpdate(util.Chain(cellUpdates...))
}

// Node is a table embedded in a response.
type Node struct {
	db util.DataBuilder
}

// New defines a new table with the specified columns in the provided
// DataBuilder.
func New(db util.DataBuilder, renderSettings *RenderSettings, columns ...*ColumnUpdate) *Node {
	header := db.Child()
	for _, column := range columns {
		header.Child().With(column.Properties...)
	}
	db.With(renderSettings.define())
	return &Node{
		db: db,
	}
}

// With annotates the receiving table with the provided properties.
func (n *Node) With(properties ...util.PropertyUpdate) *Node {
	n.db.With(properties...)
	return n
}

// RowNode is a table row.
type RowNode struct {
	db util.DataBuilder
}

// Row adds a row holding the provided cells to the receiving table.
func (n *Node) Row(cells ...CellUpdate) *RowNode {
	db := n.db.Child()
	for _, cell := range cells {
		db.Child().With(util.PropertyUpdate(cell))
	}
	return &RowNode{
		db: db,
	}
}

// With annotates the receiving row with the provided properties.
func (rn *RowNode) With(properties ...util.PropertyUpdate) *RowNode {
	rn.db.With(properties...)
	return rn
}

// Payload allows RowNode to implement payload.Payloader.
func (rn *RowNode) Payload() util.DataBuilder {
	return rn.db.Child()
}

// CellNode is a table cell to which payloads and properties may be attached.
type CellNode struct {
	db util.DataBuilder
}

// AddCell adds the specified cell to the receiving row.
func (rn *RowNode) AddCell(cellUpdate CellUpdate) *CellNode {
	return &CellNode{
		db: rn.db.Child().With(util.PropertyUpdate(cellUpdate)),
	}
}

// With annotates the receiving cell with the provided properties.
func (cn *CellNode) With(properties ...util.PropertyUpdate) *CellNode {
	cn.db.With(properties...)
	return cn
}

// Payload allows CellNode to implement payload.Payloader.
func (cn *CellNode) Payload() util.DataBuilder {
	return cn.db.Child()
}
