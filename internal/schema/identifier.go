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
	"fmt"
	"strings"
)

// SchemaPrefix is prepended to every derived tenant schema name so tenant
// namespaces can never collide with the shared public schema or system
// schemas.
const SchemaPrefix = "tenant_"

// maxIdentifierLen matches the PostgreSQL identifier limit (NAMEDATALEN-1).
const maxIdentifierLen = 63

// ValidateIdentifier checks a schema identifier against a strict
// allow-list: lowercase letters, digits and underscore, starting with a
// letter or underscore. This is the single point where tenant-derived
// data reaches raw SQL text, so no other validation path exists.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentifier, name, maxIdentifierLen)
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return fmt.Errorf("%w: %q starts with a digit", ErrInvalidIdentifier, name)
			}
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIdentifier, name, string(c))
		}
	}
	return nil
}

// QuoteIdentifier double-quotes an already-validated identifier for use
// as a SQL namespace qualifier. It must only be called after
// ValidateIdentifier; quoting alone is not an injection defense.
func QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

// ForTenant derives the schema name for a tenant identifier: SchemaPrefix
// plus the identifier lowercased with hyphens folded to underscores (UUID
// tenant ids contain hyphens). The derivation is deterministic and the
// result is validated before use, so a tenant id that cannot be expressed
// as a safe identifier is rejected rather than escaped.
func ForTenant(tenantID string) (string, error) {
	folded := strings.ToLower(strings.ReplaceAll(tenantID, "-", "_"))
	name := SchemaPrefix + folded
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("tenant id %q yields no valid schema name: %w", tenantID, err)
	}
	return name, nil
}
