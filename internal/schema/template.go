// Copyright 2026 The Casefolio Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"strings"
)

// Placeholder is the token repositories write into SQL templates where
// the tenant schema qualifier belongs, e.g.
//
//	SELECT id, name FROM {{schema}}.clients WHERE active = $1
//
// Expansion replaces every occurrence. Positional parameter placeholders
// ($1, $2, ...) are never touched; bound values always go through the
// driver's parameter binding.
const Placeholder = "{{schema}}"

// Expand substitutes the quoted schema identifier for every occurrence
// of Placeholder in the template. The identifier is validated against
// the allow-list before any substitution happens.
func Expand(template, schemaName string) (string, error) {
	if err := ValidateIdentifier(schemaName); err != nil {
		return "", err
	}
	if !strings.Contains(template, Placeholder) {
		return "", ErrMissingPlaceholder
	}
	return strings.ReplaceAll(template, Placeholder, QuoteIdentifier(schemaName)), nil
}
