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
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string
}

// ForeignKeyDeclarer is implemented by models whose table declares foreign
// keys. SQLite only accepts foreign keys inside CREATE TABLE, so the schema
// manager collects these at table creation time.
type ForeignKeyDeclarer interface {
	ForeignKeys() []ForeignKeyConstraint
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// TableClause returns the clause appended to CREATE TABLE, without the
// leading FOREIGN KEY keyword which the query builder supplies.
func (fk *ForeignKeyConstraint) TableClause() string {
	clause := fmt.Sprintf(`("%s") REFERENCES "%s" ("%s")`,
		fk.Column, fk.ReferenceTable, fk.ReferenceColumn)

	if fk.OnUpdate != "" {
		clause += fmt.Sprintf(" ON UPDATE %s", fk.OnUpdate)
	}
	if fk.OnDelete != "" {
		clause += fmt.Sprintf(" ON DELETE %s", fk.OnDelete)
	}

	return clause
}

// IntegrityViolation is one row reported by the engine's referential
// integrity scan: a child row whose foreign key resolves to no parent.
type IntegrityViolation struct {
	Table           string
	RowID           sql.NullInt64
	ReferencedTable string
	ConstraintIndex int
}

func (v IntegrityViolation) String() string {
	return fmt.Sprintf("%s rowid=%d -> %s (fk %d)", v.Table, v.RowID.Int64, v.ReferencedTable, v.ConstraintIndex)
}

// ForeignKeyManager manages declared foreign key constraints and inspects
// the live store for enforcement state and dangling references.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the model-declared constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{
		constraints: RegisteredForeignKeys(),
		logger:      logger,
	}
}

// RegisteredForeignKeys collects the constraints declared by all registered
// models, in model priority order.
func RegisteredForeignKeys() []ForeignKeyConstraint {
	var constraints []ForeignKeyConstraint
	for _, model := range RegisteredModels() {
		if declarer, ok := model.Instance().(ForeignKeyDeclarer); ok {
			constraints = append(constraints, declarer.ForeignKeys()...)
		}
	}
	return constraints
}

// GetConstraintsByTable returns the constraints declared for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// VerifyEnforcement reads the foreign_keys pragma from the session behind db.
func (fkm *ForeignKeyManager) VerifyEnforcement(ctx context.Context, db bun.IDB) (bool, error) {
	var value int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&value); err != nil {
		return false, fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	return value == 1, nil
}

// CheckIntegrity scans the store for dangling references. Writes performed
// on sessions without enforcement can leave child rows whose foreign key
// matches no parent; the scan reports every such row regardless of the
// current session's enforcement setting.
func (fkm *ForeignKeyManager) CheckIntegrity(ctx context.Context, db bun.IDB) ([]IntegrityViolation, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("foreign key check failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var violations []IntegrityViolation
	for rows.Next() {
		var v IntegrityViolation
		if err := rows.Scan(&v.Table, &v.RowID, &v.ReferencedTable, &v.ConstraintIndex); err != nil {
			return nil, fmt.Errorf("failed to scan integrity violation: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if fkm.logger != nil && len(violations) > 0 {
		fkm.logger.Warn("Dangling references found", "count", len(violations))
	}

	return violations, nil
}

// ListDeclaredForeignKeys introspects the foreign keys the live table
// actually declares, including its cascade policy.
func (fkm *ForeignKeyManager) ListDeclaredForeignKeys(ctx context.Context, db bun.IDB, tableName string) ([]ForeignKeyConstraint, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list('%s')", tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys for %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var constraints []ForeignKeyConstraint
	for rows.Next() {
		var (
			id, seq                           int
			refTable, from, to                string
			onUpdate, onDelete, matchBehavior string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matchBehavior); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key row: %w", err)
		}
		constraints = append(constraints, ForeignKeyConstraint{
			Table:           tableName,
			Column:          from,
			ReferenceTable:  refTable,
			ReferenceColumn: to,
			OnDelete:        onDelete,
			OnUpdate:        onUpdate,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return constraints, nil
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error

	for _, constraint := range fkm.constraints {
		if constraint.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if constraint.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", constraint.Table))
		}
		if constraint.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", constraint.Table, constraint.Column))
		}
		if constraint.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", constraint.Table, constraint.Column, constraint.ReferenceTable))
		}

		for _, action := range []struct {
			name  string
			value string
		}{
			{"delete", constraint.OnDelete},
			{"update", constraint.OnUpdate},
		} {
			if action.value == "" {
				continue
			}
			validActions := []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}
			valid := false
			for _, candidate := range validActions {
				if strings.EqualFold(action.value, candidate) {
					valid = true
					break
				}
			}
			if !valid {
				errs = append(errs, fmt.Errorf("invalid %s policy: %s, constraint: %s", action.name, action.value, constraint.GenerateConstraintName()))
			}
		}
	}

	return errs
}
