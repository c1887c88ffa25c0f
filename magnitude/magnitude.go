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

// Package magnitude supports attaching magnitudes to items, and formatting
// large byte and bit counts with SI ('greek') prefixes.
//
// The prefix for a collection of samples is chosen from an upper estimate of
// the samples, mean + n standard deviations, rather than their maximum, so a
// single outlier doesn't push every label into a larger unit.  Prefixes are
// tried largest first; the first whose magnitude leaves the estimate above
// scaleMax is used.  So with the default scaleMax of 5, 6000 scales to "6 K"
// but 1500000 scales to "1500 K", since 1500000/1e6 = 1.5 is not above 5.
//
// Samples are float64s, and NaN stands for an undefined sample: it is dropped
// from dispersion statistics.  An empty (or all-NaN) sample set has NaN mean
// and deviation; callers that don't want "NaN" labels must check for empty
// input first.
package magnitude

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ilhamster/netviz/util"
)

const (
	selfMagnitudeKey = "self_magnitude"

	// DefaultScaleMax is the default threshold a scaled estimate must exceed
	// for a prefix to be chosen.
	DefaultScaleMax = 5
	// DefaultDeviations is the default number of standard deviations above
	// the mean used as a sample set's upper estimate.
	DefaultDeviations = 2
)

// Prefix is an SI magnitude prefix symbol.
type Prefix string

// Supported prefixes.
const (
	NoPrefix Prefix = ""
	Kilo     Prefix = "K"
	Mega     Prefix = "M"
	Giga     Prefix = "G"
	Tera     Prefix = "T"
	Peta     Prefix = "P"
)

type prefixMagnitude struct {
	prefix    Prefix
	magnitude float64
}

// In descending magnitude order; ChoosePrefix relies on this.
var prefixes = []prefixMagnitude{
	{Peta, 1e15},
	{Tera, 1e12},
	{Giga, 1e9},
	{Mega, 1e6},
	{Kilo, 1e3},
}

// Magnitude returns the multiplier for the receiver, or 1 if the receiver
// isn't a recognized prefix.
func (p Prefix) Magnitude() float64 {
	for _, pm := range prefixes {
		if pm.prefix == p {
			return pm.magnitude
		}
	}
	return 1
}

// SelfMagnitude returns a PropertyUpdate that annotates with the provided
// self-magnitude.
func SelfMagnitude(selfMagnitude float64) util.PropertyUpdate {
	return util.DoubleProperty(selfMagnitudeKey, selfMagnitude)
}

// ScaledLabel returns a PropertyUpdate setting key to the scaled, formatted
// sum of values.
func ScaledLabel(key string, values []float64, suffix string) util.PropertyUpdate {
	return util.StringProperty(key, FormatScaled(values, suffix, DefaultScaleMax))
}

// Dispersion returns the mean and population standard deviation of the
// non-NaN samples.  Both are NaN if there are no such samples.
func Dispersion(samples []float64) (mean, stdDev float64) {
	var n, sum float64
	for _, s := range samples {
		if math.IsNaN(s) {
			continue
		}
		n++
		sum += s
	}
	mean = sum / n
	var sqDev float64
	for _, s := range samples {
		if math.IsNaN(s) {
			continue
		}
		sqDev += (s - mean) * (s - mean)
	}
	return mean, math.Sqrt(sqDev / n)
}

// UpperEstimate returns the mean of the samples plus n standard deviations.
func UpperEstimate(samples []float64, n float64) float64 {
	mean, stdDev := Dispersion(samples)
	return mean + n*stdDev
}

// ChoosePrefix returns the largest prefix whose magnitude, dividing the
// samples' upper estimate, leaves a value above scaleMax.  If there is none,
// it returns NoPrefix.
func ChoosePrefix(samples []float64, scaleMax float64) Prefix {
	upper := UpperEstimate(samples, DefaultDeviations)
	for _, pm := range prefixes {
		if upper/pm.magnitude > scaleMax {
			return pm.prefix
		}
	}
	return NoPrefix
}

// ScaleByPrefix divides value by the magnitude of p.  Unrecognized and empty
// prefixes leave value unchanged.
func ScaleByPrefix(value float64, p Prefix) float64 {
	return value / p.Magnitude()
}

// FormatScaled sums values and formats the sum as
// "<rounded scaled sum> <prefix><suffix>", with the prefix chosen from the
// full set of values.
func FormatScaled(values []float64, suffix string, scaleMax float64) string {
	var sum float64
	for _, v := range values {
		sum += v
	}
	if len(values) == 0 {
		sum = math.NaN()
	}
	p := ChoosePrefix(values, scaleMax)
	scaled := math.Round(ScaleByPrefix(sum, p))
	return fmt.Sprintf("%s %s%s", strconv.FormatFloat(scaled, 'f', 0, 64), p, suffix)
}

// Format formats a single value as FormatScaled does, with the default
// scaleMax.
func Format(value float64, suffix string) string {
	return FormatScaled([]float64{value}, suffix, DefaultScaleMax)
}

// ParseLenient parses each string as a float64.  Unparseable strings become
// NaN, which then propagates through any sum they're part of.
func ParseLenient(vals ...string) []float64 {
	ret := make([]float64, len(vals))
	for idx, val := range vals {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			f = math.NaN()
		}
		ret[idx] = f
	}
	return ret
}

// Parse parses each string as a float64, returning an error naming the first
// string that isn't numeric.
func Parse(vals ...string) ([]float64, error) {
	ret := make([]float64, len(vals))
	for idx, val := range vals {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("sample %d (%q) is not numeric: %w", idx, val, err)
		}
		ret[idx] = f
	}
	return ret, nil
}
