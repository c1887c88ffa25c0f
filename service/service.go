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

// Package service assembles the netviz HTTP service.
package service

import (
	"log/slog"
	"net/http"

	"github.com/ilhamster/netviz/datasource"
	"github.com/ilhamster/netviz/geo"
	"github.com/ilhamster/netviz/handlers"
	"github.com/ilhamster/netviz/metrics"
	querydispatcher "github.com/ilhamster/netviz/query_dispatcher"
)

// MetricsPath is the path of the Prometheus metrics handler.
const MetricsPath = "/metrics"

// Config configures a Service.
type Config struct {
	// CacheCapacity is the number of result batches held at once.
	CacheCapacity int
	// GeoDataFile, if set, names a GeoJSON file of country geometry to use
	// instead of the bundled table.
	GeoDataFile string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics defaults to a Metrics on a new registry.
	Metrics *metrics.Metrics
}

// Service is the netviz service: a data source with its query and ingestion
// handlers.
type Service struct {
	queryHandler   handlers.WrappableHandler
	resultsHandler handlers.WrappableHandler
	metrics        *metrics.Metrics
}

func loadGeoTable(path string) (*geo.Table, error) {
	if path == "" {
		return geo.Default(), nil
	}
	return geo.LoadTable(path)
}

// New returns a new Service configured by cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	table, err := loadGeoTable(cfg.GeoDataFile)
	if err != nil {
		return nil, err
	}
	ds, err := datasource.New(cfg.CacheCapacity,
		datasource.WithGeoTable(table),
		datasource.WithMetrics(cfg.Metrics),
		datasource.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, err
	}
	qd, err := querydispatcher.New(ds)
	if err != nil {
		return nil, err
	}
	wrappers := []handlers.WrapFunc{
		handlers.Logged(cfg.Logger),
		handlers.Instrumented(cfg.Metrics),
	}
	return &Service{
		queryHandler:   handlers.NewQueryHandler(qd).Wrap(wrappers...),
		resultsHandler: handlers.NewResultsHandler(ds).Wrap(wrappers...),
		metrics:        cfg.Metrics,
	}, nil
}

// RegisterHandlers registers the receiver's handlers on mux.
func (s *Service) RegisterHandlers(mux *http.ServeMux) {
	for _, h := range []handlers.Handler{s.queryHandler, s.resultsHandler} {
		for path, handler := range h.HandlersByPath() {
			mux.HandleFunc(path, handler)
		}
	}
	mux.Handle(MetricsPath, s.metrics.Handler())
}
