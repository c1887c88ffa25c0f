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

package handlers

import (
	"errors"
	"net/http"

	"github.com/ilhamster/netviz/datasource"
	querydispatcher "github.com/ilhamster/netviz/query_dispatcher"
	"github.com/ilhamster/netviz/result"
)

const (
	// PutResultsPath is the path of the result batch ingestion handler.
	PutResultsPath = "/PutResults"

	maxBatchBytes = 32 << 20
)

// BatchStore stores result batches, returning their IDs.
type BatchStore interface {
	Put(batch *result.Batch) (string, error)
}

// PutResultsResponse is the response to a successful PutResults request.
type PutResultsResponse struct {
	BatchID string `json:"batch_id"`
}

type resultsHandler struct {
	store    BatchStore
	wrappers []WrapFunc
}

// NewResultsHandler returns a Handler accepting JSON-encoded result batches,
// via POST, into the provided store.
func NewResultsHandler(store BatchStore) WrappableHandler {
	return &resultsHandler{
		store: store,
	}
}

func (rh *resultsHandler) Wrap(wrappers ...WrapFunc) WrappableHandler {
	rh.wrappers = append(rh.wrappers, wrappers...)
	return rh
}

func (rh *resultsHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		PutResultsPath: wrap(rh.putResultsHandler, rh.wrappers),
	}
}

func (rh *resultsHandler) putResultsHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "PutResults requires POST", http.StatusMethodNotAllowed)
		return
	}
	batch, err := result.Decode(http.MaxBytesReader(w, req.Body, maxBatchBytes))
	if err != nil {
		http.Error(w, "Failed to parse result batch: "+err.Error(), http.StatusBadRequest)
		return
	}
	id, err := rh.store.Put(batch)
	if err != nil {
		http.Error(w, "Failed to store result batch: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendJSON(w, &PutResultsResponse{BatchID: id})
}

// statusOf returns the HTTP status for a failed data request.
func statusOf(err error) int {
	switch {
	case errors.Is(err, datasource.ErrUnknownBatch):
		return http.StatusNotFound
	case errors.Is(err, datasource.ErrBadRequest), errors.Is(err, querydispatcher.ErrUnsupportedQuery):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
