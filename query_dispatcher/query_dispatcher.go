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

// Package querydispatcher provides QueryDispatcher, which routes the series
// requests of a netviz DataRequest to the data sources able to serve them.
package querydispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilhamster/netviz/util"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedQuery is returned for series requests no data source handles.
var ErrUnsupportedQuery = errors.New("unsupported data query")

// dataSource is a single source of widget data series.  dataSource instances
// must support concurrent HandleDataSeriesRequests calls.
type dataSource interface {
	// SupportedDataSeriesQueries returns the DataSeriesRequest.QueryNames
	// this dataSource is able to handle.  Query names must be unique across
	// data sources; they are conventionally prefixed, as in 'netviz.sankey'.
	SupportedDataSeriesQueries() []string
	// HandleDataSeriesRequests handles a set of DataSeriesRequests with the
	// supplied global filters, adding one DataSeries per request to drb.  Any
	// returned error cancels the entire DataRequest and surfaces to the
	// client.
	HandleDataSeriesRequests(ctx context.Context, globalFilters map[string]*util.V, drb *util.DataResponseBuilder, reqs []*util.DataSeriesRequest) error
}

// QueryDispatcher multiplexes several data sources behind a single
// DataRequest interface.
type QueryDispatcher struct {
	dataSources []dataSource
	// Maps data series query names to indices (in dataSources) of the
	// dataSources that handle those queries.
	dataSeriesQueryHandlers map[string]int
}

// New returns a *QueryDispatcher wrapping the provided dataSources.  It
// returns an error if two dataSources claim the same query.
func New(dss ...dataSource) (*QueryDispatcher, error) {
	qd := &QueryDispatcher{
		dataSeriesQueryHandlers: map[string]int{},
	}
	for dsIdx, ds := range dss {
		qd.dataSources = append(qd.dataSources, ds)
		for _, queryName := range ds.SupportedDataSeriesQueries() {
			if _, ok := qd.dataSeriesQueryHandlers[queryName]; ok {
				return nil, fmt.Errorf("multiple dataSources handle data query '%s'", queryName)
			}
			qd.dataSeriesQueryHandlers[queryName] = dsIdx
		}
	}
	return qd, nil
}

// HandleDataRequest groups the provided DataRequest's series requests by data
// source, hands each group to its source concurrently, and assembles the
// resulting series into a single Data response.  Series from different data
// sources may appear in any order.
func (qd *QueryDispatcher) HandleDataRequest(ctx context.Context, req *util.DataRequest) (*util.Data, error) {
	drb := util.NewDataResponseBuilder()
	// A mapping from dataSource index to the series requests it handles.
	groupedReqs := map[int][]*util.DataSeriesRequest{}
	for _, seriesReq := range req.SeriesRequests {
		dsIdx, ok := qd.dataSeriesQueryHandlers[seriesReq.QueryName]
		if !ok {
			return nil, fmt.Errorf("%w '%s'", ErrUnsupportedQuery, seriesReq.QueryName)
		}
		groupedReqs[dsIdx] = append(groupedReqs[dsIdx], seriesReq)
	}
	errg, ctx := errgroup.WithContext(ctx)
	for dsIdx, seriesReqs := range groupedReqs {
		ds := qd.dataSources[dsIdx]
		seriesReqs := seriesReqs
		errg.Go(func() error {
			return ds.HandleDataSeriesRequests(ctx, req.GlobalFilters, drb, seriesReqs)
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return drb.Data()
}
