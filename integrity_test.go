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

package lineage_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lineage-db/lineage"
	"github.com/lineage-db/lineage/database"
	"github.com/lineage-db/lineage/types"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// openStore connects to the store file with the given enforcement setting
// and returns the session. The caller owns the file path, so two calls can
// reopen the same store with different settings.
func openStore(t *testing.T, path string, enforce bool) (database.StoreManager, *bun.DB) {
	t.Helper()

	cfg := database.DefaultConnectionConfig()
	cfg.Path = path
	cfg.EnforceForeignKeys = enforce

	manager := database.NewStoreManager(cfg)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })

	return manager, manager.GetDB()
}

func resetStore(t *testing.T, db *bun.DB) {
	t.Helper()
	require.NoError(t, database.NewSchemaManager(db, nil).Reset(context.Background()))
}

// TestDanglingInsertAcceptedWithoutEnforcement walks the first half of the
// story: with enforcement off, a child of a nonexistent parent is accepted
// even though the constraint is declared in the schema.
func TestDanglingInsertAcceptedWithoutEnforcement(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, false)
	resetStore(t, db)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	inserted, err := parents.Create(ctx,
		&lineage.Parent{UID: 1, ParentName: "Adam"},
		&lineage.Parent{UID: 2, ParentName: "Jacob"},
	)
	require.NoError(t, err)
	require.EqualValues(t, 2, inserted)

	inserted, err = children.Create(ctx, &lineage.Child{ParentUID: 1, ChildName: "Abel"})
	require.NoError(t, err)
	require.EqualValues(t, 1, inserted)

	// parent_uid 5 matches no parent; the session never opted in, so the
	// engine takes the row anyway.
	inserted, err = children.Create(ctx, &lineage.Child{ParentUID: 5, ChildName: "Solomon"})
	require.NoError(t, err)
	require.EqualValues(t, 1, inserted)

	violations, err := database.NewForeignKeyManager(nil).CheckIntegrity(ctx, db)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	require.Equal(t, "children", violations[0].Table)
}

// TestDanglingInsertRejectedWithEnforcement reopens a store that already
// holds a dangling row with enforcement on: new dangling inserts fail, and
// the failed insert changes nothing.
func TestDanglingInsertRejectedWithEnforcement(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	first, db := openStore(t, path, false)
	resetStore(t, db)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)
	_, err := parents.Create(ctx,
		&lineage.Parent{UID: 1, ParentName: "Adam"},
		&lineage.Parent{UID: 2, ParentName: "Jacob"},
	)
	require.NoError(t, err)
	_, err = children.Create(ctx, &lineage.Child{ParentUID: 5, ChildName: "Solomon"})
	require.NoError(t, err)
	require.NoError(t, first.Disconnect())

	// Second session, enforcement on. The Solomon row from the first
	// session stays; enforcement only guards new writes.
	manager, db := openStore(t, path, true)
	on, err := manager.VerifyEnforcement(ctx)
	require.NoError(t, err)
	require.True(t, on)

	children = lineage.ChildrenWithDB(db)
	before, err := children.Count(ctx, nil)
	require.NoError(t, err)

	_, err = children.Create(ctx, &lineage.Child{ParentUID: 6, ChildName: "Samuel"})
	require.Error(t, err)
	require.True(t, errors.Is(err, database.ErrConstraintViolation))
	require.True(t, database.IsForeignKeyViolation(err))

	after, err := children.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, before, after, "rejected insert must leave the store unchanged")

	violations, err := database.NewForeignKeyManager(nil).CheckIntegrity(ctx, db)
	require.NoError(t, err)
	require.Len(t, violations, 1, "the pre-enforcement dangling row survives")
}

// TestCascadeDeleteRemovesChildren builds two families and deletes the
// larger one: the delete reports one parent row, and the engine takes the
// fifteen children with it.
func TestCascadeDeleteRemovesChildren(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, true)
	resetStore(t, db)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	_, err := parents.Create(ctx,
		&lineage.Parent{UID: 1, ParentName: "Adam"},
		&lineage.Parent{UID: 2, ParentName: "Jacob"},
	)
	require.NoError(t, err)

	_, err = children.Create(ctx,
		&lineage.Child{ParentUID: 1, ChildName: "Abel"},
		&lineage.Child{ParentUID: 1, ChildName: "Seth"},
	)
	require.NoError(t, err)

	sons := make([]*lineage.Child, 0, 15)
	for i := 1; i <= 15; i++ {
		sons = append(sons, &lineage.Child{ParentUID: 2, ChildName: fmt.Sprintf("Son%02d", i)})
	}
	inserted, err := children.Create(ctx, sons...)
	require.NoError(t, err)
	require.EqualValues(t, 15, inserted)

	affected, err := parents.Delete(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected, "cascaded child rows are not counted")

	parentCount, err := parents.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, parentCount)

	childCount, err := children.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, childCount)

	remaining, err := children.List(ctx, nil, "child_name ASC")
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	require.Equal(t, "Abel", remaining[0].ChildName)
	require.Equal(t, "Seth", remaining[1].ChildName)
}

// TestDeleteWithoutEnforcementStrandsChildren deletes the same family with
// enforcement off: the children stay behind as dangling rows.
func TestDeleteWithoutEnforcementStrandsChildren(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, false)
	resetStore(t, db)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	_, err := parents.Create(ctx, &lineage.Parent{UID: 2, ParentName: "Jacob"})
	require.NoError(t, err)
	sons := make([]*lineage.Child, 0, 15)
	for i := 1; i <= 15; i++ {
		sons = append(sons, &lineage.Child{ParentUID: 2, ChildName: fmt.Sprintf("Son%02d", i)})
	}
	_, err = children.Create(ctx, sons...)
	require.NoError(t, err)

	affected, err := parents.Delete(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	childCount, err := children.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 15, childCount, "no cascade without enforcement")

	violations, err := database.NewForeignKeyManager(nil).CheckIntegrity(ctx, db)
	require.NoError(t, err)
	require.Len(t, violations, 15)
}

// TestCascadeUpdateRenumbersChildren changes a parent's uid and verifies
// the children follow it.
func TestCascadeUpdateRenumbersChildren(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, true)
	resetStore(t, db)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	_, err := parents.Create(ctx, &lineage.Parent{UID: 1, ParentName: "Adam"})
	require.NoError(t, err)
	_, err = children.Create(ctx,
		&lineage.Child{ParentUID: 1, ChildName: "Abel"},
		&lineage.Child{ParentUID: 1, ChildName: "Seth"},
	)
	require.NoError(t, err)

	_, err = db.NewUpdate().Model((*lineage.Parent)(nil)).
		Set("uid = ?", 10).
		Where("uid = ?", 1).
		Exec(ctx)
	require.NoError(t, err)

	moved, err := children.List(ctx, types.NewQueryFilter("parent_uid = ?", 10))
	require.NoError(t, err)
	require.Len(t, moved, 2, "children renumber with their parent")

	stale, err := children.Count(ctx, types.NewQueryFilter("parent_uid = ?", 1))
	require.NoError(t, err)
	require.Zero(t, stale)
}

// TestDeleteWhereReportsAffectedRows removes children by name predicate.
func TestDeleteWhereReportsAffectedRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, false)
	resetStore(t, db)

	children := lineage.ChildrenWithDB(db)
	_, err := children.Create(ctx,
		&lineage.Child{ParentUID: 5, ChildName: "Solomon"},
		&lineage.Child{ParentUID: 5, ChildName: "Solomon"},
		&lineage.Child{ParentUID: 1, ChildName: "Abel"},
	)
	require.NoError(t, err)

	removed, err := children.DeleteWhere(ctx, types.NewQueryFilter("child_name = ?", "Solomon"))
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)
}

// TestNotNullRejected exercises the NOT NULL half of the schema contract.
func TestNotNullRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.db")

	_, db := openStore(t, path, false)
	resetStore(t, db)

	_, err := db.ExecContext(ctx, "INSERT INTO children (parent_uid, child_name) VALUES (1, NULL)")
	require.Error(t, err)
	require.True(t, database.IsConstraintViolation(database.WrapError(err)))
}
