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

// Package tenantpg implements the per-module repositories over the
// tenant-scoped query executor. Every SQL string here is a template
// carrying the {{schema}} placeholder; none of these repositories ever
// see a concrete schema name.
package tenantpg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is the slice of the schema layer the repositories consume.
// Satisfied by *schema.Executor.
type Executor interface {
	Query(ctx context.Context, tenantID, template string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, tenantID, template string, args ...any) (pgx.Row, error)
	Exec(ctx context.Context, tenantID, template string, args ...any) (pgconn.CommandTag, error)
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// pageWindow converts page/limit to limit/offset with defaults applied.
func pageWindow(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// newID generates a row identifier before the insert completes. UUIDv7
// keeps IDs time-ordered with a random suffix, so callers can hand them
// out immediately.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// whereClause joins conditions with AND. The active = TRUE condition is
// always first: soft-deleted rows are invisible to every query.
type whereClause struct {
	conds []string
	args  []any
}

func newWhere() *whereClause {
	return &whereClause{conds: []string{"active"}}
}

func (w *whereClause) add(cond string, args ...any) {
	n := len(w.args)
	for i := range args {
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", n+i+1), 1)
	}
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// String renders the clause; next positional placeholders continue from
// len(w.args)+1.
func (w *whereClause) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder index for the next appended argument.
func (w *whereClause) next() int {
	return len(w.args) + 1
}
