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
	"os"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
)

// SchemaManager owns the store's reset cycle: drop both tables if they
// exist, then recreate them with their declared foreign key cascade policy.
// A reset against an already-empty store is a no-op beyond the creates.
type SchemaManager struct {
	db          *bun.DB
	logger      Logger
	models      []SQLModel
	fkOverrides []ForeignKeyConstraint
}

// NewSchemaManager constructs a SchemaManager over the registered models.
func NewSchemaManager(db *bun.DB, logger Logger) *SchemaManager {
	return &SchemaManager{
		db:     db,
		logger: logger,
		models: RegisteredModels(),
	}
}

// NewSchemaManagerWithModels constructs a SchemaManager over an explicit
// model set, bypassing the default registry.
func NewSchemaManagerWithModels(db *bun.DB, logger Logger, models ...SQLModel) *SchemaManager {
	return &SchemaManager{
		db:     db,
		logger: logger,
		models: models,
	}
}

// SetConstraintOverrides replaces model-declared foreign keys with the given
// constraints, matched by table name. Used when constraints come from a
// YAML configuration file instead of code.
func (sm *SchemaManager) SetConstraintOverrides(constraints []ForeignKeyConstraint) {
	sm.fkOverrides = constraints
}

// Reset drops and recreates every managed table inside one transaction.
// Any statement failure aborts and rolls back the whole reset.
func (sm *SchemaManager) Reset(ctx context.Context) error {
	if _, ok := os.LookupEnv("LINEAGEDEBUG_SCHEMA"); !ok {
		EnableQuerySilent(true)
		defer EnableQuerySilent(false)
	}

	if sm.db == nil {
		return fmt.Errorf("store not initialized: %w", ErrConnection)
	}

	err := sm.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := sm.dropTables(ctx, tx); err != nil {
			return err
		}
		return sm.createTables(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("schema reset failed: %w", WrapError(err))
	}

	if sm.logger != nil {
		sm.logger.Info("Schema reset completed", "tables", len(sm.models))
	}
	return nil
}

// Create creates the managed tables without dropping first.
func (sm *SchemaManager) Create(ctx context.Context) error {
	err := sm.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return sm.createTables(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("schema create failed: %w", WrapError(err))
	}
	return nil
}

// Drop drops the managed tables, referencing tables first.
func (sm *SchemaManager) Drop(ctx context.Context) error {
	err := sm.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return sm.dropTables(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("schema drop failed: %w", WrapError(err))
	}
	return nil
}

func (sm *SchemaManager) dropTables(ctx context.Context, db bun.IDB) error {
	// Reverse priority order: children before the tables they reference.
	for i := len(sm.models) - 1; i >= 0; i-- {
		model := sm.models[i].Instance()
		_, err := db.NewDropTable().
			Model(model).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop table for %s: %w", getModelName(model), err)
		}
	}
	return nil
}

func (sm *SchemaManager) createTables(ctx context.Context, db bun.IDB) error {
	for _, m := range sm.models {
		model := m.Instance()
		query := db.NewCreateTable().
			Model(model).
			IfNotExists()

		for _, constraint := range sm.constraintsFor(model) {
			query = query.ForeignKey(constraint.TableClause())
		}

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %s: %w", getModelName(model), err)
		}
	}
	return nil
}

// constraintsFor resolves the foreign keys to declare for a model's table,
// preferring configured overrides over the model's own declaration.
func (sm *SchemaManager) constraintsFor(model interface{}) []ForeignKeyConstraint {
	declarer, ok := model.(ForeignKeyDeclarer)
	if !ok && len(sm.fkOverrides) == 0 {
		return nil
	}

	var declared []ForeignKeyConstraint
	if ok {
		declared = declarer.ForeignKeys()
	}
	if len(sm.fkOverrides) == 0 {
		return declared
	}

	tables := make(map[string]struct{})
	for _, c := range declared {
		tables[strings.ToLower(c.Table)] = struct{}{}
	}

	var result []ForeignKeyConstraint
	for _, c := range sm.fkOverrides {
		if _, owns := tables[strings.ToLower(c.Table)]; owns {
			result = append(result, c)
		}
	}
	if len(result) == 0 {
		return declared
	}
	return result
}

// TableExists reports whether a table of the given name exists in the store.
func (sm *SchemaManager) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := sm.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).
		Scan(&count)
	if err != nil {
		return false, WrapError(err)
	}
	return count > 0, nil
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
