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

// Binary netviz_preview renders a JSON result batch, as accepted by the
// netviz service's /PutResults, to a standalone HTML chart.
//
//	netviz_preview -in batch.json -out flows.html -chart sankey -left src_as -right dst_as
//	netviz_preview -in batch.json -out map.html -chart map -suffix b
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ilhamster/netviz/choropleth"
	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/logger"
	"github.com/ilhamster/netviz/preview"
	"github.com/ilhamster/netviz/result"
	"github.com/ilhamster/netviz/sankey"
	"github.com/joho/godotenv"
)

var (
	in      = flag.String("in", "", "The result batch JSON file; stdin if unset")
	out     = flag.String("out", "", "The HTML output file; stdout if unset")
	chart   = flag.String("chart", "sankey", "The chart to render: 'sankey' or 'map'")
	mode    = flag.String("mode", "", "The sankey mode, 'facet' or 'event'; guessed from the query if unset")
	left    = flag.String("left", "", "The left dimension field, in event mode")
	right   = flag.String("right", "", "The right dimension field, in event mode")
	suffix  = flag.String("suffix", "B", "The unit suffix for scaled values")
	title   = flag.String("title", "", "The chart title; the batch's query if unset")
	geoData = flag.String("geo_data", "", "A GeoJSON file of country geometry to use instead of the bundled one")
)

func openInput() (io.ReadCloser, error) {
	if *in == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(*in)
}

func render(w io.Writer, batch *result.Batch) error {
	chartTitle := *title
	if chartTitle == "" {
		chartTitle = batch.Query
	}
	switch *chart {
	case "sankey":
		m := sankey.Mode(*mode)
		if *mode == "" {
			m = sankey.ModeOf(batch.Query)
		}
		dims := sankey.Dimensions{Left: *left, Right: *right}
		input := sankey.NewInput(m, batch.Results, dims)
		if input == nil {
			return fmt.Errorf("unsupported sankey mode '%s'", *mode)
		}
		return preview.Sankey(w, sankey.Transform(input), chartTitle)
	case "map":
		table := geo.Default()
		if *geoData != "" {
			var err error
			if table, err = geo.LoadTable(*geoData); err != nil {
				return err
			}
		}
		return preview.Choropleth(w, choropleth.New(table).Transform(batch.Results), chartTitle, *suffix)
	}
	return fmt.Errorf("unsupported chart '%s'", *chart)
}

// writePreview renders batch to -out, or to stdout if -out is unset.  The
// output file is closed before returning.
func writePreview(batch *result.Batch) error {
	if *out == "" {
		return render(os.Stdout, batch)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := render(f, batch); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func main() {
	_ = godotenv.Load(".env")
	log := logger.Setup()
	flag.Parse()

	r, err := openInput()
	if err != nil {
		log.Error("failed to open result batch", "error", err)
		os.Exit(1)
	}
	batch, err := result.Decode(r)
	r.Close()
	if err != nil {
		log.Error("failed to read result batch", "error", err)
		os.Exit(1)
	}
	if err := writePreview(batch); err != nil {
		log.Error("failed to render preview", "chart", *chart, "error", err)
		os.Exit(1)
	}
	log.Info("rendered preview", "chart", *chart, "rows", len(batch.Results), "out", *out)
}
