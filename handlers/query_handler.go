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

// Package handlers provides the netviz HTTP surface: data queries, result
// batch ingestion, and wrappers for logging and instrumenting handlers.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	querydispatcher "github.com/ilhamster/netviz/query_dispatcher"
	"github.com/ilhamster/netviz/util"
)

// HandlerFunc is a HTTP handler function.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// WrapFunc is a function that rewrites a HandlerFunc.
type WrapFunc func(HandlerFunc) HandlerFunc

// Handler describes a netviz HTTP handler.
type Handler interface {
	HandlersByPath() map[string]func(http.ResponseWriter, *http.Request)
}

// WrappableHandler is a Handler supporting a Wrap method that wraps all its
// handlers, e.g. adding logging.
type WrappableHandler interface {
	Handler
	Wrap(...WrapFunc) WrappableHandler
}

// QueryHandler is a Handler for data queries.
type QueryHandler = WrappableHandler

func wrap(hf HandlerFunc, wrappers []WrapFunc) HandlerFunc {
	for _, wrapper := range wrappers {
		hf = wrapper(hf)
	}
	return hf
}

// sendJSON serializes the provided value and sends it along w.  Any failure
// during serialization yields an HTTP internal status error.
func sendJSON(w http.ResponseWriter, v any) {
	respStr, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	fmt.Fprint(w, string(respStr))
}

// queryHandler is an http.Handler serving netviz data queries.
type queryHandler struct {
	qd       *querydispatcher.QueryDispatcher
	wrappers []WrapFunc
}

// NewQueryHandler returns a new Handler serving data requests using the
// provided QueryDispatcher.
func NewQueryHandler(qd *querydispatcher.QueryDispatcher) QueryHandler {
	return &queryHandler{
		qd: qd,
	}
}

const (
	// DataPath is the path of the data query handler.
	DataPath = "/GetData"
)

type contextKey string

var (
	httpReqKey contextKey = "netviz_http_req"
)

// RequestOf returns the http Request attached to the provided Context, or nil
// if no Request is attached.  Returns an error if something other than a
// Request is stored in the Context.
func RequestOf(ctx context.Context) (*http.Request, error) {
	reqIf := ctx.Value(httpReqKey)
	if reqIf == nil {
		return nil, nil
	}
	req, ok := reqIf.(*http.Request)
	if !ok {
		return nil, fmt.Errorf("expected *http.Request to be stored in context, but got something else")
	}
	return req, nil
}

func (qh *queryHandler) Wrap(wrappers ...WrapFunc) WrappableHandler {
	qh.wrappers = append(qh.wrappers, wrappers...)
	return qh
}

// HandlersByPath returns a mapping of HTTP request path to HTTP handler for
// this Handler.
func (qh *queryHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	return map[string]func(http.ResponseWriter, *http.Request){
		DataPath: wrap(qh.getDataHandler, qh.wrappers),
	}
}

func (qh *queryHandler) getDataHandler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	dataReq, err := util.DataRequestFromJSON([]byte(req.Form.Get("req")))
	if err != nil {
		http.Error(w, "Failed to parse DataRequest: "+err.Error(), http.StatusBadRequest)
		return
	}
	ctx := context.WithValue(req.Context(), httpReqKey, req)
	resp, err := qh.qd.HandleDataRequest(ctx, dataReq)
	if err != nil {
		http.Error(w, "DataRequest failed: "+err.Error(), statusOf(err))
		return
	}
	sendJSON(w, resp)
}
