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

package choropleth

import (
	"fmt"
	"strings"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
)

var popupTemplate = template.Must(template.New("popup").Parse(
	`<div class="netviz-popup">{{if .Found}}<b>{{.Name}}</b><br>{{.Total}}{{else}}No data for {{.Name}}{{end}}</div>`,
))

type popupData struct {
	Found bool
	Name  string
	Total string
}

// Popup renders the hover popup for the provided country: its name and its
// scaled total, with the provided unit suffix.  Countries absent from the
// Batch render a 'no data' popup.
func (b *Batch) Popup(code, suffix string) (safehtml.HTML, error) {
	agg := b.Aggregate(code)
	data := popupData{
		Found: !agg.IsEmpty(),
		Name:  strings.ToUpper(code),
	}
	if rec := b.record(code); rec.Name != "" {
		data.Name = rec.Name
	}
	if data.Found {
		data.Total = agg.label(suffix)
	}
	html, err := popupTemplate.ExecuteToHTML(data)
	if err != nil {
		return safehtml.HTML{}, fmt.Errorf("failed to render popup for '%s': %w", code, err)
	}
	return html, nil
}
