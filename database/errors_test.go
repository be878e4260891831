/*
 * Copyright 2026 lineage-db.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSQLErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", sql.ErrNoRows, true, NoRowsErr},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), true, NoRowsErr},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), true, ForeignKeyViolationErr},
		{"foreign key sqlstate", errors.New("ERROR: insert or update violates foreign key (SQLSTATE 23503)"), true, ForeignKeyViolationErr},
		{"unique", errors.New("UNIQUE constraint failed: parents.uid"), true, DuplicateKeyErr},
		{"not null", errors.New("NOT NULL constraint failed: parents.parent_name"), true, NotNullViolationErr},
		{"check", errors.New("CHECK constraint failed: age"), true, CheckConstraintViolationErr},
		{"syntax", errors.New(`near "SELEC": syntax error`), true, SyntaxErr},
		{"no table", errors.New("no such table: ancestors"), true, NoTableErr},
		{"no column", errors.New("no such column: surname"), true, NoColumnErr},
		{"table exists", errors.New("table parents already exists"), true, ExistTableErr},
		{"type mismatch", errors.New("datatype mismatch"), true, TypeMismatchErr},
		{"unreachable", errors.New("unable to open database file"), true, StoreUnreachableErr},
		{"locked", errors.New("database is locked"), true, StoreUnreachableErr},
		{"unclassified", errors.New("something else entirely"), false, UnknownErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSQLError(tt.err)
			require.Equal(t, tt.is, is)
			require.Equal(t, tt.kind, kind)
		})
	}
}

func TestWrapErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), ErrConstraintViolation},
		{"unique", errors.New("UNIQUE constraint failed: parents.uid"), ErrConstraintViolation},
		{"not null", errors.New("NOT NULL constraint failed: children.child_name"), ErrConstraintViolation},
		{"syntax", errors.New(`near "FORM": syntax error`), ErrStatement},
		{"no table", errors.New("no such table: ancestors"), ErrStatement},
		{"no column", errors.New("no such column: surname"), ErrStatement},
		{"unreachable", errors.New("unable to open database file"), ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)
			require.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}
}

func TestWrapErrorPassThrough(t *testing.T) {
	require.NoError(t, WrapError(nil))

	// sql.ErrNoRows is not a failure of the statement or the store; callers
	// check for it directly.
	require.True(t, errors.Is(WrapError(sql.ErrNoRows), sql.ErrNoRows))

	plain := errors.New("something else entirely")
	require.Same(t, plain, WrapError(plain))
}

func TestWrapErrorIdempotent(t *testing.T) {
	once := WrapError(errors.New("FOREIGN KEY constraint failed"))
	twice := WrapError(once)
	require.Same(t, once, twice)
}

func TestIsConstraintViolation(t *testing.T) {
	require.True(t, IsConstraintViolation(errors.New("FOREIGN KEY constraint failed")))
	require.True(t, IsConstraintViolation(WrapError(errors.New("UNIQUE constraint failed: parents.uid"))))
	require.False(t, IsConstraintViolation(errors.New("no such table: ancestors")))
	require.False(t, IsConstraintViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	require.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	require.False(t, IsForeignKeyViolation(errors.New("UNIQUE constraint failed: parents.uid")))
	require.False(t, IsForeignKeyViolation(nil))
}
