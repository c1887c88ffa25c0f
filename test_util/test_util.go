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

// Package testutil provides helpers for testing netviz response construction.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/netviz/util"
)

// UpdateComparator checks that a set of PropertyUpdates under test yields the
// same Datum as a set of expected PropertyUpdates.
type UpdateComparator struct {
	got, want []util.PropertyUpdate
}

// NewUpdateComparator returns a new, empty UpdateComparator.
func NewUpdateComparator() *UpdateComparator {
	return &UpdateComparator{}
}

// WithTestUpdates sets the updates under test.
func (uc *UpdateComparator) WithTestUpdates(got ...util.PropertyUpdate) *UpdateComparator {
	uc.got = got
	return uc
}

// WithWantUpdates sets the expected updates.
func (uc *UpdateComparator) WithWantUpdates(want ...util.PropertyUpdate) *UpdateComparator {
	uc.want = want
	return uc
}

// Compare applies both update sets to sibling Datums and compares their
// prettyprinted forms.  It returns a difference message and true if they
// differ, or "" and false if they don't.
func (uc *UpdateComparator) Compare(t *testing.T) (string, bool) {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{})
	series.Child().With(uc.got...)
	series.Child().With(uc.want...)
	data, err := drb.Data()
	if err != nil {
		t.Fatalf("failed to build compared updates: %s", err)
	}
	children := data.DataSeries[0].Root.Children
	if diff := cmp.Diff(
		children[1].PrettyPrint("", data.StringTable),
		children[0].PrettyPrint("", data.StringTable),
	); diff != "" {
		return fmt.Sprintf("Got series %s, diff (-want +got):\n%s",
			data.DataSeries[0].PrettyPrint("", data.StringTable), diff), true
	}
	return "", false
}

// TestDataBuilder is a DataBuilder that can also navigate back up the tree it
// builds, for fluently writing expected responses.
type TestDataBuilder interface {
	With(updates ...util.PropertyUpdate) TestDataBuilder
	Child() TestDataBuilder
	AndChild() TestDataBuilder
	Parent() TestDataBuilder
}

type testDataBuilder struct {
	db     util.DataBuilder
	parent *testDataBuilder
}

func (tdb *testDataBuilder) With(updates ...util.PropertyUpdate) TestDataBuilder {
	tdb.db.With(updates...)
	return tdb
}

func (tdb *testDataBuilder) Child() TestDataBuilder {
	return &testDataBuilder{
		db:     tdb.db.Child(),
		parent: tdb,
	}
}

// AndChild adds a sibling of the receiver.  At the root, it adds a child.
func (tdb *testDataBuilder) AndChild() TestDataBuilder {
	if tdb.parent == nil {
		return tdb.Child()
	}
	return tdb.parent.Child()
}

// Parent returns the receiver's parent, or the receiver itself at the root.
func (tdb *testDataBuilder) Parent() TestDataBuilder {
	if tdb.parent == nil {
		return tdb
	}
	return tdb.parent
}

func build(t *testing.T, buildIf any) *util.DataResponseBuilder {
	t.Helper()
	drb := util.NewDataResponseBuilder()
	series := drb.DataSeries(&util.DataSeriesRequest{})
	switch build := buildIf.(type) {
	case func(util.DataBuilder):
		build(series)
	case func(TestDataBuilder):
		build(&testDataBuilder{db: series})
	default:
		t.Fatalf("expected a func(util.DataBuilder) or a func(testutil.TestDataBuilder), got %T", buildIf)
	}
	return drb
}

func dataOf(d any) (*util.Data, error) {
	switch v := d.(type) {
	case *util.Data:
		return v, nil
	case *util.DataResponseBuilder:
		return v.Data()
	}
	return nil, fmt.Errorf("expected a *util.Data or a *util.DataResponseBuilder, got %T", d)
}

// CompareDataResponses compares got and want, each either a *util.Data or a
// *util.DataResponseBuilder, and reports any difference between them on t.
// Errors building either response are returned.
func CompareDataResponses(t *testing.T, got, want any) error {
	t.Helper()
	gotData, err := dataOf(got)
	if err != nil {
		return fmt.Errorf("building got: %w", err)
	}
	wantData, err := dataOf(want)
	if err != nil {
		return fmt.Errorf("building want: %w", err)
	}
	if diff := cmp.Diff(wantData.PrettyPrint(), gotData.PrettyPrint()); diff != "" {
		t.Errorf("Got data %s, diff (-want +got):\n%s", gotData.PrettyPrint(), diff)
	}
	return nil
}

// CompareResponses builds two responses, one with each provided callback,
// and reports any difference between them on t.  Each callback must accept
// either a util.DataBuilder or a TestDataBuilder.  Errors building either
// response are returned.
func CompareResponses(t *testing.T, buildGot, buildWant any) error {
	t.Helper()
	return CompareDataResponses(t, build(t, buildGot), build(t, buildWant))
}
