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

// Package util defines the response encoding shared by the netviz widgets:
//
// DataResponseBuilder, for populating responses to DataRequests;
//
// {type}Value functions (type={String, Strings, Integer, Integers, Double})
// for constructing Values of the specified type;
//
// Expect{type}Value functions, over the same types, for retrieving values of
// the specified types from Values, returning an error on a type mismatch;
//
// DataBuilder, for assembling response data programmatically.
package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type valueType int

// Enumerated value types.  The numbering is part of the wire format.
const (
	unsetValue valueType = iota
	StringValueType
	StringIndexValueType
	StringsValueType
	StringIndicesValueType
	IntegerValueType
	IntegersValueType
	DoubleValueType
)

// V is a single typed value in a request or response.
type V struct {
	V any
	T valueType
}

// PrettyPrint returns the receiver, deterministically prettyprinted.
// String-index values print the same as the strings they index.  Only for
// use in tests.
func (v *V) PrettyPrint(st []string) string {
	var ret string
	var err error
	switch v.T {
	case unsetValue:
		ret = "unset"
	case StringValueType:
		ret, err = ExpectStringValue(v)
		ret = "'" + ret + "'"
	case StringIndexValueType:
		var strIdx int64
		if strIdx, err = expectStringIndexValue(v); err == nil {
			ret = "'" + st[strIdx] + "'"
		}
	case StringsValueType:
		var strs []string
		strs, err = ExpectStringsValue(v)
		ret = "[ '" + strings.Join(strs, "', '") + "' ]"
	case StringIndicesValueType:
		var strIdxs []int64
		if strIdxs, err = expectStringIndicesValue(v); err == nil {
			strs := make([]string, len(strIdxs))
			for idx, strIdx := range strIdxs {
				strs[idx] = st[strIdx]
			}
			ret = "[ '" + strings.Join(strs, "', '") + "' ]"
		}
	case IntegerValueType:
		var i int64
		if i, err = ExpectIntegerValue(v); err == nil {
			ret = strconv.FormatInt(i, 10)
		}
	case IntegersValueType:
		var ints []int64
		if ints, err = ExpectIntegersValue(v); err == nil {
			strs := make([]string, len(ints))
			for idx, i := range ints {
				strs[idx] = strconv.FormatInt(i, 10)
			}
			ret = "[ " + strings.Join(strs, ", ") + " ]"
		}
	case DoubleValueType:
		var d float64
		if d, err = ExpectDoubleValue(v); err == nil {
			ret = fmt.Sprintf("%.6f", d)
		}
	}
	if err != nil {
		return "error: " + err.Error()
	}
	return ret
}

// MarshalJSON encodes a V as the two-element array [type, value].
func (v *V) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{v.T, v.V})
}

func (v *V) fromAny(got []any) error {
	if len(got) != 2 {
		return fmt.Errorf("value must be a [type, value] pair, got %d elements", len(got))
	}
	num, ok := got[0].(json.Number)
	if !ok {
		return fmt.Errorf("value type must be a number")
	}
	t, err := num.Int64()
	if err != nil {
		return err
	}
	v.T = valueType(t)
	tv := got[1]
	switch v.T {
	case StringIndexValueType, IntegerValueType:
		n, ok := tv.(json.Number)
		if !ok {
			return fmt.Errorf("expected a number for value type %d", v.T)
		}
		v.V, err = n.Int64()
	case StringsValueType:
		strIfs, ok := tv.([]any)
		if !ok {
			return fmt.Errorf("expected a string list")
		}
		strs := make([]string, len(strIfs))
		for idx, strIf := range strIfs {
			s, ok := strIf.(string)
			if !ok {
				return fmt.Errorf("expected a string list")
			}
			if strs[idx], err = url.QueryUnescape(s); err != nil {
				return err
			}
		}
		v.V = strs
	case DoubleValueType:
		n, ok := tv.(json.Number)
		if !ok {
			return fmt.Errorf("expected a number for a double value")
		}
		v.V, err = n.Float64()
	case StringIndicesValueType, IntegersValueType:
		nums, ok := tv.([]any)
		if !ok {
			return fmt.Errorf("expected a number list")
		}
		ints := make([]int64, len(nums))
		for idx, num := range nums {
			n, ok := num.(json.Number)
			if !ok {
				return fmt.Errorf("expected a number list")
			}
			if ints[idx], err = n.Int64(); err != nil {
				return err
			}
		}
		v.V = ints
	default:
		v.V = tv
	}
	return err
}

// UnmarshalJSON unmarshals the provided JSON bytes into the receiving V.
func (v *V) UnmarshalJSON(data []byte) error {
	var got []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&got); err != nil {
		return err
	}
	return v.fromAny(got)
}

// Datum is a single node in a data series response.
type Datum struct {
	Properties map[int64]*V
	Children   []*Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (d *Datum) PrettyPrint(indent string, st []string) string {
	ret := []string{}
	// Properties print in increasing key-string order.
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return st[keys[a]] < st[keys[b]]
	})
	for _, k := range keys {
		ret = append(ret,
			fmt.Sprintf("%sProp '%s': %s", indent, st[k], d.Properties[k].PrettyPrint(st)),
		)
	}
	for _, child := range d.Children {
		ret = append(ret,
			fmt.Sprintf("%sChild:", indent),
			child.PrettyPrint(indent+"  ", st),
		)
	}
	return strings.Join(ret, "\n")
}

// MarshalJSON encodes a Datum as [properties, children], where properties is
// a list of [key, V] pairs in increasing key order.
func (d *Datum) MarshalJSON() ([]byte, error) {
	keys := make([]int64, 0, len(d.Properties))
	for k := range d.Properties {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		return keys[a] < keys[b]
	})
	props := make([]any, len(keys))
	for idx, k := range keys {
		props[idx] = []any{k, d.Properties[k]}
	}
	return json.Marshal([]any{props, d.Children})
}

// DataSeriesRequest is a request for a specific data series.
type DataSeriesRequest struct {
	QueryName  string
	SeriesName string
	Options    map[string]*V
}

// DataSeries is a complete data series response.
type DataSeries struct {
	SeriesName string
	Root       *Datum
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (ds *DataSeries) PrettyPrint(indent string, st []string) string {
	return strings.Join([]string{
		fmt.Sprintf("%sSeries %s", indent, ds.SeriesName),
		indent + "  " + "Root:",
		ds.Root.PrettyPrint(indent+"    ", st),
	}, "\n")
}

// DataRequest is a request for one or more data series.
type DataRequest struct {
	GlobalFilters  map[string]*V
	SeriesRequests []*DataSeriesRequest
}

// DataRequestFromJSON attempts to construct a DataRequest from the provided
// JSON.
func DataRequestFromJSON(j []byte) (*DataRequest, error) {
	ret := &DataRequest{}
	if err := json.Unmarshal(j, ret); err != nil {
		return nil, fmt.Errorf("failed to decode DataRequest: %w", err)
	}
	return ret, nil
}

// Data is a complete data response.
type Data struct {
	StringTable []string
	DataSeries  []*DataSeries
}

// PrettyPrint returns the receiver deterministically prettyprinted.
// Only for use in tests.
func (d *Data) PrettyPrint() string {
	ret := []string{"Data:"}
	for _, series := range d.DataSeries {
		ret = append(ret, series.PrettyPrint("  ", d.StringTable))
	}
	return strings.Join(ret, "\n")
}

// stringTable associates strings with unique, dense indices.  It is
// thread-safe.
type stringTable struct {
	stringsToIndices map[string]int64
	stringsByIndex   []string
	mu               sync.RWMutex
}

func newStringTable() *stringTable {
	return &stringTable{
		stringsToIndices: map[string]int64{},
	}
}

// stringIndex returns the index of str, adding it if necessary.
func (st *stringTable) stringIndex(str string) int64 {
	st.mu.RLock()
	idx, ok := st.stringsToIndices[str]
	st.mu.RUnlock()
	if ok {
		return idx
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	// Another writer may have inserted str since the read above.
	if idx, ok := st.stringsToIndices[str]; ok {
		return idx
	}
	idx = int64(len(st.stringsByIndex))
	st.stringsByIndex = append(st.stringsByIndex, str)
	st.stringsToIndices[str] = idx
	return idx
}

type errs struct {
	errs []error
	mu   sync.Mutex
}

func (e *errs) add(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

func (e *errs) has() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs) > 0
}

func (e *errs) toError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(e.errs))
	for idx, err := range e.errs {
		msgs[idx] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, ", "))
}

// DataResponseBuilder streamlines assembling responses to DataRequests.
type DataResponseBuilder struct {
	st   *stringTable
	errs *errs
	d    *Data
	mu   sync.Mutex
}

// NewDataResponseBuilder returns a new, empty DataResponseBuilder.
func NewDataResponseBuilder() *DataResponseBuilder {
	return &DataResponseBuilder{
		st:   newStringTable(),
		errs: &errs{},
		d: &Data{
			StringTable: []string{},
			DataSeries:  []*DataSeries{},
		},
	}
}

// DataBuilder is implemented by types that can assemble responses.
type DataBuilder interface {
	With(updates ...PropertyUpdate) DataBuilder
	Child() DataBuilder
}

// DataSeries returns a new DataBuilder for assembling the response to the
// provided DataSeriesRequest.  DataSeries is safe for concurrent use.
func (drb *DataResponseBuilder) DataSeries(req *DataSeriesRequest) DataBuilder {
	ret := newDatumBuilder(drb.errs, drb.st)
	drb.mu.Lock()
	drb.d.DataSeries = append(drb.d.DataSeries, &DataSeries{
		SeriesName: req.SeriesName,
		Root:       ret.d,
	})
	drb.mu.Unlock()
	return ret
}

// Data completes and returns the Data under construction, or the first
// errors encountered while building it.
func (drb *DataResponseBuilder) Data() (*Data, error) {
	if err := drb.errs.toError(); err != nil {
		return nil, err
	}
	drb.st.mu.RLock()
	drb.d.StringTable = drb.st.stringsByIndex
	drb.st.mu.RUnlock()
	return drb.d, nil
}

// StringValue returns a new Value wrapping the provided string.
func StringValue(str string) *V {
	return &V{V: str, T: StringValueType}
}

// StringIndexValue returns a new Value wrapping the provided string index.
func StringIndexValue(strIdx int64) *V {
	return &V{V: strIdx, T: StringIndexValueType}
}

// StringsValue returns a new Value wrapping the provided strings.
func StringsValue(strs ...string) *V {
	return &V{V: strs, T: StringsValueType}
}

// StringIndicesValue returns a new Value wrapping the provided string
// indices.
func StringIndicesValue(strIdxs ...int64) *V {
	return &V{V: strIdxs, T: StringIndicesValueType}
}

// IntegerValue returns a new Value wrapping the provided int64.
func IntegerValue(i int64) *V {
	return &V{V: i, T: IntegerValueType}
}

// IntegersValue returns a new Value wrapping the provided int64s.
func IntegersValue(ints ...int64) *V {
	return &V{V: ints, T: IntegersValueType}
}

// DoubleValue returns a new Value wrapping the provided float64.
func DoubleValue(f float64) *V {
	return &V{V: f, T: DoubleValueType}
}

// ExpectStringValue expects the provided Value to be a string, returning
// that string or an error if it isn't.
func ExpectStringValue(val *V) (string, error) {
	if val == nil || val.T != StringValueType {
		return "", fmt.Errorf("expected value type 'str'")
	}
	return url.QueryUnescape(val.V.(string))
}

func expectStringIndexValue(val *V) (int64, error) {
	if val == nil || val.T != StringIndexValueType {
		return 0, fmt.Errorf("expected value type 'str_idx'")
	}
	return val.V.(int64), nil
}

// ExpectStringsValue expects the provided Value to be a Strings, returning
// its string slice, or an error if it isn't.
func ExpectStringsValue(val *V) ([]string, error) {
	if val == nil || val.T != StringsValueType {
		return nil, fmt.Errorf("expected value type 'strs'")
	}
	return val.V.([]string), nil
}

func expectStringIndicesValue(val *V) ([]int64, error) {
	if val == nil || val.T != StringIndicesValueType {
		return nil, fmt.Errorf("expected value type 'str_idxs'")
	}
	return val.V.([]int64), nil
}

// ExpectIntegerValue expects the provided Value to be an integer, returning
// that integer or an error if it isn't.
func ExpectIntegerValue(val *V) (int64, error) {
	if val == nil || val.T != IntegerValueType {
		return 0, fmt.Errorf("expected value type 'int'")
	}
	return val.V.(int64), nil
}

// ExpectIntegersValue expects the provided Value to be an Integers, returning
// its int64 slice or an error if it isn't.
func ExpectIntegersValue(val *V) ([]int64, error) {
	if val == nil || val.T != IntegersValueType {
		return nil, fmt.Errorf("expected value type 'ints'")
	}
	return val.V.([]int64), nil
}

// ExpectDoubleValue expects the provided Value to be a float64, returning
// that float or an error if it isn't.
func ExpectDoubleValue(val *V) (float64, error) {
	if val == nil || val.T != DoubleValueType {
		return 0, fmt.Errorf("expected value type 'dbl'")
	}
	return val.V.(float64), nil
}

// StringOption returns the string option stored under key in opts, or def if
// there is none.  It returns an error if the option has another type.
func StringOption(opts map[string]*V, key, def string) (string, error) {
	val, ok := opts[key]
	if !ok {
		return def, nil
	}
	ret, err := ExpectStringValue(val)
	if err != nil {
		return "", fmt.Errorf("option '%s': %w", key, err)
	}
	return ret, nil
}

// PropertyUpdate is a function that updates a provided datumBuilder.  A nil
// PropertyUpdate does nothing.
type PropertyUpdate func(db *datumBuilder) error

// Value specifies a value for a property whose key is not yet known.
type Value func(key string) PropertyUpdate

// EmptyUpdate is a PropertyUpdate that does nothing.
var EmptyUpdate PropertyUpdate = nil

// ErrorProperty injects an error into the response under construction.
func ErrorProperty(err error) PropertyUpdate {
	return func(db *datumBuilder) error {
		return err
	}
}

// datumBuilder assembles a single Datum.
type datumBuilder struct {
	errs      *errs
	st        *stringTable
	valsByKey map[int64]*V
	d         *Datum
}

func newDatumBuilder(errs *errs, st *stringTable) *datumBuilder {
	valsByKey := map[int64]*V{}
	return &datumBuilder{
		errs:      errs,
		st:        st,
		valsByKey: valsByKey,
		d: &Datum{
			Properties: valsByKey,
			Children:   []*Datum{},
		},
	}
}

// With applies the provided PropertyUpdates to the receiver in order.  Once
// any update has failed, further updates are ignored.
func (db *datumBuilder) With(updates ...PropertyUpdate) DataBuilder {
	if db.errs.has() {
		return db
	}
	for _, update := range updates {
		if update == nil {
			continue
		}
		if err := update(db); err != nil {
			db.errs.add(err)
			break
		}
	}
	return db
}

func (db *datumBuilder) Child() DataBuilder {
	child := newDatumBuilder(db.errs, db.st)
	db.d.Children = append(db.d.Children, child.d)
	return child
}

func (db *datumBuilder) set(key string, val *V) {
	db.valsByKey[db.st.stringIndex(key)] = val
}

func (db *datumBuilder) strIdxs(values []string) []int64 {
	ret := make([]int64, len(values))
	for idx, val := range values {
		ret[idx] = db.st.stringIndex(val)
	}
	return ret
}

// If applies the provided PropertyUpdate if the provided predicate is true.
func If(predicate bool, pu PropertyUpdate) PropertyUpdate {
	if predicate {
		return pu
	}
	return EmptyUpdate
}

// Chain applies the provided PropertyUpdates in order.
func Chain(updates ...PropertyUpdate) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.With(updates...)
		return nil
	}
}

// String produces a Value setting the specified string value.
func String(value string) Value {
	return func(key string) PropertyUpdate {
		return StringProperty(key, value)
	}
}

// Integer produces a Value setting the specified int64 value.
func Integer(value int64) Value {
	return func(key string) PropertyUpdate {
		return IntegerProperty(key, value)
	}
}

// Double produces a Value setting the specified float64 value.
func Double(value float64) Value {
	return func(key string) PropertyUpdate {
		return DoubleProperty(key, value)
	}
}

// StringProperty returns a PropertyUpdate adding the specified string
// property.
func StringProperty(key, value string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, StringIndexValue(db.st.stringIndex(value)))
		return nil
	}
}

// StringsProperty returns a PropertyUpdate adding the specified string slice
// property.
func StringsProperty(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, StringIndicesValue(db.strIdxs(values)...))
		return nil
	}
}

// StringsPropertyExtended returns a PropertyUpdate extending the specified
// string slice property, creating it if necessary.
func StringsPropertyExtended(key string, values ...string) PropertyUpdate {
	return func(db *datumBuilder) error {
		val, ok := db.valsByKey[db.st.stringIndex(key)]
		if !ok {
			db.set(key, StringIndicesValue(db.strIdxs(values)...))
			return nil
		}
		strIdxs, err := expectStringIndicesValue(val)
		if err != nil {
			return fmt.Errorf("can't extend property '%s': %w", key, err)
		}
		val.V = append(strIdxs, db.strIdxs(values)...)
		return nil
	}
}

// IntegerProperty returns a PropertyUpdate adding the specified integer
// property.
func IntegerProperty(key string, value int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegerValue(value))
		return nil
	}
}

// IntegersProperty returns a PropertyUpdate adding the specified integer
// slice property.
func IntegersProperty(key string, values ...int64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, IntegersValue(values...))
		return nil
	}
}

// DoubleProperty returns a PropertyUpdate adding the specified double
// property.
func DoubleProperty(key string, value float64) PropertyUpdate {
	return func(db *datumBuilder) error {
		db.set(key, DoubleValue(value))
		return nil
	}
}
