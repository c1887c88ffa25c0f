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

// Package payload attaches embedded data of arbitrary structure to elements
// of structured responses: a hover popup under a map feature, for instance,
// or a nested table under a table row.  Any element able to host a payload
// implements Payloader.
package payload

import "github.com/ilhamster/netviz/util"

// TypeKey, present in a Datum's properties, marks that Datum as an embedded
// payload, and holds the payload's type.
const TypeKey = "payload_type"

// Payloader is implemented by types able to accept payloads.
type Payloader interface {
	// Payload adds a child to the receiver and returns it.
	Payload() util.DataBuilder
}

// New creates and returns a payload of the specified type under the provided
// parent.
func New(parent Payloader, payloadType string) util.DataBuilder {
	return parent.Payload().With(
		util.StringProperty(TypeKey, payloadType),
	)
}
