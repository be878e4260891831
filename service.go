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

// Package lineage exposes the parent/child referential integrity store:
// a single-session SQLite database whose foreign key enforcement is decided
// at connection time, a schema manager that declares the cascade constraint,
// and generic services over the parents and children tables.
package lineage

import (
	"context"

	"github.com/lineage-db/lineage/database"
	"github.com/lineage-db/lineage/repository"
	"github.com/lineage-db/lineage/types"

	"github.com/uptrace/bun"
)

// Service is a thin facade over the generic repository, bound to the
// global store session established by database.InitStore.
type Service[T any] struct {
	repo repository.Repository[T]
}

// NewService creates a service for the model type keyed on "id".
func NewService[T any]() *Service[T] {
	return &Service[T]{repo: repository.NewRepository[T](database.GetDB())}
}

// NewServiceWithKey creates a service keyed on the given column, for
// tables whose identifier is not named "id".
func NewServiceWithKey[T any](keyColumn string) *Service[T] {
	return &Service[T]{repo: repository.NewRepositoryWithKey[T](database.GetDB(), keyColumn)}
}

// NewServiceWithDB creates a service over an explicit Bun session instead
// of the global one.
func NewServiceWithDB[T any](db *bun.DB, keyColumn string) *Service[T] {
	return &Service[T]{repo: repository.NewRepositoryWithKey[T](db, keyColumn)}
}

// Repository exposes the underlying repository for callers that need the
// full query surface.
func (s *Service[T]) Repository() repository.Repository[T] {
	return s.repo
}

func (s *Service[T]) GetOne(ctx context.Context, id any) (*T, error) {
	return s.repo.GetOne(ctx, id)
}

func (s *Service[T]) GetAll(ctx context.Context) ([]*T, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service[T]) List(ctx context.Context, filter *types.QueryFilter, orders ...string) ([]*T, error) {
	return s.repo.List(ctx, filter, orders...)
}

func (s *Service[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

func (s *Service[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo.Page(ctx, pageRequest)
}

// Create inserts entities and returns the number of rows inserted.
func (s *Service[T]) Create(ctx context.Context, entity ...*T) (int64, error) {
	return s.repo.Create(ctx, entity...)
}

func (s *Service[T]) Update(ctx context.Context, entity *T) error {
	return s.repo.Update(ctx, entity)
}

// Delete removes the entity with the given key and returns the number of
// rows directly removed. Rows removed by a cascade are not counted.
func (s *Service[T]) Delete(ctx context.Context, id any) (int64, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service[T]) DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error) {
	return s.repo.DeleteWhere(ctx, filter)
}

// Parents returns a service over the parents table keyed on uid.
func Parents() *Service[Parent] {
	return NewServiceWithKey[Parent]("uid")
}

// Children returns a service over the children table keyed on parent_uid.
func Children() *Service[Child] {
	return NewServiceWithKey[Child]("parent_uid")
}

// ParentsWithDB and ChildrenWithDB bind the table services to an explicit
// session, for callers managing their own store manager.
func ParentsWithDB(db *bun.DB) *Service[Parent] {
	return NewServiceWithDB[Parent](db, "uid")
}

func ChildrenWithDB(db *bun.DB) *Service[Child] {
	return NewServiceWithDB[Child](db, "parent_uid")
}
