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
	"strings"
)

// Sentinel errors forming the failure taxonomy of the store. All failures
// surface to the caller wrapped around one of these; nothing is retried or
// swallowed.
var (
	// ErrConnection marks a store that is unreachable or unopenable.
	ErrConnection = errors.New("store connection error")
	// ErrConstraintViolation marks a write rejected by a declared constraint.
	// For foreign keys this only happens while enforcement is active.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStatement marks a malformed or unresolvable statement.
	ErrStatement = errors.New("statement error")
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoTableErr
	NoColumnErr
	NoIndexErr
	SyntaxErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	TypeMismatchErr
	StoreUnreachableErr
)

// IsSQLError classifies a driver error by message and SQLSTATE fragments.
// The embedded engine reports errors as text, so classification is string
// based; SQLSTATE codes cover drivers that include them.
func IsSQLError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "unable to open database") ||
		strings.Contains(s, "database is locked") ||
		strings.Contains(s, "file is not a database") {
		return true, StoreUnreachableErr
	}
	if strings.Contains(s, "foreign key constraint failed") ||
		strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "sqlstate 23503") {
		return true, ForeignKeyViolationErr
	}
	if strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "sqlstate 23505") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not null constraint failed") ||
		strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "sqlstate 23502") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "check constraint failed") ||
		strings.Contains(s, "sqlstate 23514") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "syntax error") {
		return true, SyntaxErr
	}
	if strings.Contains(s, "no such table") ||
		strings.Contains(s, "sqlstate 42p01") {
		return true, NoTableErr
	}
	if strings.Contains(s, "no such column") ||
		strings.Contains(s, "sqlstate 42703") {
		return true, NoColumnErr
	}
	if strings.Contains(s, "no such index") ||
		strings.Contains(s, "sqlstate 42704") {
		return true, NoIndexErr
	}
	if strings.Contains(s, "already exists") &&
		(strings.Contains(s, "table") || strings.Contains(s, "relation")) {
		return true, ExistTableErr
	}
	if strings.Contains(s, "datatype mismatch") ||
		strings.Contains(s, "sqlstate 42804") {
		return true, TypeMismatchErr
	}
	return false, UnknownErr
}

// WrapError attaches the matching sentinel to a driver error so callers can
// test with errors.Is. Errors with no taxonomy match, sql.ErrNoRows
// included, pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrStatement) {
		return err
	}

	is, kind := IsSQLError(err)
	if !is {
		return err
	}

	switch kind {
	case ForeignKeyViolationErr, DuplicateKeyErr, NotNullViolationErr, CheckConstraintViolationErr:
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	case SyntaxErr, NoTableErr, NoColumnErr, NoIndexErr, TypeMismatchErr:
		return fmt.Errorf("%w: %v", ErrStatement, err)
	case StoreUnreachableErr:
		return fmt.Errorf("%w: %v", ErrConnection, err)
	default:
		return err
	}
}

// IsConstraintViolation reports whether err carries the constraint sentinel
// or classifies as a constraint failure.
func IsConstraintViolation(err error) bool {
	if errors.Is(err, ErrConstraintViolation) {
		return true
	}
	is, kind := IsSQLError(err)
	if !is {
		return false
	}
	switch kind {
	case ForeignKeyViolationErr, DuplicateKeyErr, NotNullViolationErr, CheckConstraintViolationErr:
		return true
	}
	return false
}

// IsForeignKeyViolation reports whether err is specifically a foreign key
// check failure.
func IsForeignKeyViolation(err error) bool {
	is, kind := IsSQLError(err)
	return is && kind == ForeignKeyViolationErr
}
