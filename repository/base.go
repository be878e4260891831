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

	"github.com/lineage-db/lineage/database"
	"github.com/lineage-db/lineage/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db        *bun.DB
	keyColumn string
}

// NewRepository returns a generic repository backed by the provided Bun DB,
// keyed on an "id" column.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db, keyColumn: "id"}
}

// NewRepositoryWithKey returns a generic repository keyed on the given
// column, for tables whose identifier is not named "id".
func NewRepositoryWithKey[T any](db *bun.DB, keyColumn string) Repository[T] {
	return &baseRepositoryImpl[T]{db: db, keyColumn: keyColumn}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) valsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("? = ?", bun.Ident(r.keyColumn), id).Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).OrderExpr("? ASC", bun.Ident(r.keyColumn)).Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter, orders ...string) ([]*T, error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if len(orders) > 0 {
		query = query.Order(orders...)
	}
	err := query.Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	var entity T
	query := r.db.NewSelect().Model(&entity)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	count, err := query.Count(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	return count, nil
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, database.WrapError(err)
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) (int64, error) {
	entities := r.valsToSlice(entity...)
	res, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	inserted, _ := res.RowsAffected()
	return inserted, nil
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) (int64, error) {
	entities := r.valsToSlice(entity...)
	res, err := tx.NewInsert().Model(&entities).Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	inserted, _ := res.RowsAffected()
	return inserted, nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return database.WrapError(err)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	var entity T
	res, err := r.db.NewDelete().Model(&entity).Where("? = ?", bun.Ident(r.keyColumn), id).Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (r *baseRepositoryImpl[T]) DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error) {
	var entity T
	res, err := r.db.NewDelete().Model(&entity).Where(filter.Schema, filter.Args...).Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (r *baseRepositoryImpl[T]) DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, filter *types.QueryFilter) (int64, error) {
	var entity T
	res, err := tx.NewDelete().Model(&entity).Where(filter.Schema, filter.Args...).Exec(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
