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

package repository

import (
	"context"

	"github.com/lineage-db/lineage/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Repository is the generic data access contract over one table model.
//
// Writes report their effect: Create returns the number of rows inserted
// and Delete/DeleteWhere return the number of rows directly removed (rows
// removed by a cascade are a side effect of the engine and not counted).
// Failed writes leave the store unchanged.
type Repository[T any] interface {
	// GetOne returns a single entity by its key column value.
	GetOne(ctx context.Context, id any) (*T, error)

	// GetAll returns all entities ordered by the key column.
	GetAll(ctx context.Context) ([]*T, error)

	// List returns entities matching the filter, in the given order.
	List(ctx context.Context, filter *types.QueryFilter, orders ...string) ([]*T, error)

	// Query executes a raw predicate and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Count returns the number of entities matching the filter; a nil
	// filter counts the whole table.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error)

	// Create inserts entities and returns the number of rows inserted.
	Create(ctx context.Context, entity ...*T) (int64, error)

	// CreateWithTx inserts entities within an existing transaction.
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) (int64, error)

	// Update modifies an existing entity by primary key.
	Update(ctx context.Context, entity *T) error

	// Delete removes the entity with the given key column value and
	// returns the number of rows removed.
	Delete(ctx context.Context, id any) (int64, error)

	// DeleteWhere removes entities matching the filter and returns the
	// number of rows removed.
	DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error)

	// DeleteWhereWithTx removes entities matching the filter within an
	// existing transaction.
	DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, filter *types.QueryFilter) (int64, error)

	// Query builders for callers that need the full Bun surface.
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery

	Dialect() schema.Dialect
}
