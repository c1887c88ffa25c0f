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

// Package datasource provides a netviz data source serving choropleth and
// flow diagram series from cached result batches.
//
// Batches are stored with Put, which returns a new batch ID, and are held in
// an LRU cache of fixed capacity.  Each DataRequest names its batch with the
// 'batch_id' global filter.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/ilhamster/netviz/choropleth"
	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/metrics"
	"github.com/ilhamster/netviz/result"
	"github.com/ilhamster/netviz/sankey"
	"github.com/ilhamster/netviz/util"
)

const (
	choroplethQuery       = "netviz.choropleth"
	countryTableQuery     = "netviz.country_table"
	popupQuery            = "netviz.popup"
	sankeyQuery           = "netviz.sankey"
	sankeyValidationQuery = "netviz.sankey_validation"

	// BatchIDKey is the global filter naming a request's batch.
	BatchIDKey = "batch_id"

	suffixKey         = "suffix"
	countryCodeKey    = "country_code"
	modeKey           = "mode"
	dimensionLeftKey  = "dimension_left"
	dimensionRightKey = "dimension_right"

	sankeyModeKey       = "sankey_mode"
	sankeyQueryValidKey = "sankey_query_valid"

	defaultSuffix = "B"
)

var (
	// ErrUnknownBatch is returned for batch IDs not in the cache.
	ErrUnknownBatch = errors.New("unknown batch")
	// ErrBadRequest is returned for requests with missing, mistyped, or
	// unsupported filters and options.
	ErrBadRequest = errors.New("bad request")
)

// Collection is a stored result batch, along with its choropleth
// transformation.
type Collection struct {
	batch *result.Batch
	geo   *choropleth.Batch
}

// Query returns the text of the query that produced the receiver.
func (c *Collection) Query() string {
	return c.batch.Query
}

// Rows returns the receiver's result rows.
func (c *Collection) Rows() []result.Series {
	return c.batch.Results
}

// Choropleth returns the receiver's choropleth batch.
func (c *Collection) Choropleth() *choropleth.Batch {
	return c.geo
}

type options struct {
	table   *geo.Table
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a DataSource.
type Option func(opts *options)

// WithGeoTable resolves country geometry from the provided table instead of
// the bundled one.
func WithGeoTable(table *geo.Table) Option {
	return func(opts *options) {
		opts.table = table
	}
}

// WithMetrics records stored and evicted batches in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *options) {
		opts.metrics = m
	}
}

// WithLogger logs to l instead of the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// DataSource implements querydispatcher.dataSource for result batches.  It
// holds the most recently used batches.
type DataSource struct {
	mu sync.Mutex
	// An LRU cache holding the most recently-accessed batches by ID.
	lru         *simplelru.LRU
	transformer *choropleth.Transformer
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New returns a new DataSource holding at most cap batches.
func New(cap int, optFns ...Option) (*DataSource, error) {
	opts := &options{
		logger: slog.Default(),
	}
	for _, optFn := range optFns {
		optFn(opts)
	}
	ds := &DataSource{
		transformer: choropleth.New(opts.table),
		metrics:     opts.metrics,
		logger:      opts.logger,
	}
	lru, err := simplelru.NewLRU(cap, func(key, value interface{}) {
		ds.metrics.BatchEvicted()
		ds.logger.Debug("evicted batch", "batch_id", key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create batch cache: %w", err)
	}
	ds.lru = lru
	return ds, nil
}

// Put stores the provided batch, returning its new ID.  This may evict the
// least recently used batch.
func (ds *DataSource) Put(batch *result.Batch) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate batch ID: %w", err)
	}
	coll := &Collection{
		batch: batch,
		geo:   ds.transformer.Transform(batch.Results),
	}
	ds.mu.Lock()
	ds.lru.Add(id.String(), coll)
	ds.mu.Unlock()
	ds.metrics.BatchStored()
	return id.String(), nil
}

// Get returns the batch with the provided ID, marking it as recently used.
func (ds *DataSource) Get(id string) (*Collection, error) {
	ds.mu.Lock()
	collIf, ok := ds.lru.Get(id)
	ds.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownBatch, id)
	}
	coll, ok := collIf.(*Collection)
	if !ok {
		return nil, fmt.Errorf("cached batch '%s' wasn't a Collection", id)
	}
	return coll, nil
}

// Len returns the number of cached batches.
func (ds *DataSource) Len() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.lru.Len()
}

// SupportedDataSeriesQueries returns the DataSeriesRequest query names
// supported by DataSource.
func (ds *DataSource) SupportedDataSeriesQueries() []string {
	return []string{
		choroplethQuery,
		countryTableQuery,
		popupQuery,
		sankeyQuery,
		sankeyValidationQuery,
	}
}

// HandleDataSeriesRequests handles the provided set of DataSeriesRequests, with
// the provided global filters.  It assembles its responses in the provided
// DataResponseBuilder.
func (ds *DataSource) HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error {
	start := time.Now()
	queryNames := make([]string, 0, len(reqs))
	for _, req := range reqs {
		queryNames = append(queryNames, req.QueryName)
	}
	defer func() {
		ds.logger.Debug("handled data series requests", "queries", strings.Join(queryNames, ", "), "duration", time.Since(start))
	}()
	batchIDVal, ok := globalFilters[BatchIDKey]
	if !ok {
		return fmt.Errorf("%w: missing required filter option '%s'", ErrBadRequest, BatchIDKey)
	}
	batchID, err := util.ExpectStringValue(batchIDVal)
	if err != nil {
		return fmt.Errorf("%w: required filter option '%s' must be a string", ErrBadRequest, BatchIDKey)
	}
	coll, err := ds.Get(batchID)
	if err != nil {
		return err
	}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		series := drb.DataSeries(req)
		var err error
		switch req.QueryName {
		case choroplethQuery:
			err = handleChoroplethQuery(coll, series, req.Options)
		case countryTableQuery:
			err = handleCountryTableQuery(coll, series, req.Options)
		case popupQuery:
			err = handlePopupQuery(coll, series, req.Options)
		case sankeyQuery:
			err = handleSankeyQuery(coll, series, req.Options)
		case sankeyValidationQuery:
			err = handleSankeyValidationQuery(coll, series, req.Options)
		default:
			err = fmt.Errorf("unsupported data query")
		}
		if err != nil {
			return fmt.Errorf("%w: error handling data query %s: %w", ErrBadRequest, req.QueryName, err)
		}
	}
	return nil
}

func handleChoroplethQuery(coll *Collection, series util.DataBuilder, reqOpts map[string]*util.V) error {
	suffix, err := util.StringOption(reqOpts, suffixKey, defaultSuffix)
	if err != nil {
		return err
	}
	coll.geo.Render(series, &choropleth.RenderSettings{
		Suffix: suffix,
	})
	return nil
}

func handleCountryTableQuery(coll *Collection, series util.DataBuilder, reqOpts map[string]*util.V) error {
	suffix, err := util.StringOption(reqOpts, suffixKey, defaultSuffix)
	if err != nil {
		return err
	}
	coll.geo.RenderTable(series, suffix)
	return nil
}

func handlePopupQuery(coll *Collection, series util.DataBuilder, reqOpts map[string]*util.V) error {
	suffix, err := util.StringOption(reqOpts, suffixKey, defaultSuffix)
	if err != nil {
		return err
	}
	code, err := util.StringOption(reqOpts, countryCodeKey, "")
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("missing required option '%s'", countryCodeKey)
	}
	coll.geo.RenderPopup(series, code, suffix)
	return nil
}

func dimensions(reqOpts map[string]*util.V) (sankey.Dimensions, error) {
	left, err := util.StringOption(reqOpts, dimensionLeftKey, "")
	if err != nil {
		return sankey.Dimensions{}, err
	}
	right, err := util.StringOption(reqOpts, dimensionRightKey, "")
	if err != nil {
		return sankey.Dimensions{}, err
	}
	return sankey.Dimensions{Left: left, Right: right}, nil
}

func handleSankeyQuery(coll *Collection, series util.DataBuilder, reqOpts map[string]*util.V) error {
	suffix, err := util.StringOption(reqOpts, suffixKey, defaultSuffix)
	if err != nil {
		return err
	}
	modeStr, err := util.StringOption(reqOpts, modeKey, "")
	if err != nil {
		return err
	}
	mode := sankey.Mode(modeStr)
	if modeStr == "" {
		mode = sankey.ModeOf(coll.Query())
	}
	dims, err := dimensions(reqOpts)
	if err != nil {
		return err
	}
	in := sankey.NewInput(mode, coll.Rows(), dims)
	if in == nil {
		return fmt.Errorf("unsupported %s '%s'", modeKey, modeStr)
	}
	sankey.Transform(in).Render(series, suffix)
	series.With(util.StringProperty(sankeyModeKey, string(mode)))
	return nil
}

func handleSankeyValidationQuery(coll *Collection, series util.DataBuilder, reqOpts map[string]*util.V) error {
	dims, err := dimensions(reqOpts)
	if err != nil {
		return err
	}
	series.With(
		util.StringProperty(sankeyModeKey, string(sankey.ModeOf(coll.Query()))),
		util.StringProperty(sankeyQueryValidKey, strconv.FormatBool(sankey.ValidEventQuery(coll.Query(), dims))),
	)
	return nil
}
