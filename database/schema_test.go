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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaResetCreatesTables(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, false)
	sm := NewSchemaManagerWithModels(db, nil,
		NewModelAdapter((*guardian)(nil), 1),
		NewModelAdapter((*ward)(nil), 2),
	)

	for _, table := range []string{"guardians", "wards"} {
		exists, err := sm.TableExists(ctx, table)
		require.NoError(t, err)
		require.True(t, exists, table)
	}
}

func TestSchemaResetIsIdempotent(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, false)
	sm := NewSchemaManagerWithModels(db, nil,
		NewModelAdapter((*guardian)(nil), 1),
		NewModelAdapter((*ward)(nil), 2),
	)

	// openTestStore already reset once; a second and third reset against the
	// now-populated then emptied store must succeed the same way.
	_, err := db.NewInsert().Model(&guardian{UID: 1, Name: "Adam"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, sm.Reset(ctx))
	require.NoError(t, sm.Reset(ctx))

	count, err := db.NewSelect().Model((*guardian)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSchemaResetDeclaresCascade(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, false)
	declared, err := (&ForeignKeyManager{}).ListDeclaredForeignKeys(ctx, db, "wards")
	require.NoError(t, err)
	require.Len(t, declared, 1)
	require.Equal(t, "CASCADE", declared[0].OnUpdate)
	require.Equal(t, "CASCADE", declared[0].OnDelete)
}

func TestSchemaConstraintOverrides(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, false)
	sm := NewSchemaManagerWithModels(db, nil,
		NewModelAdapter((*guardian)(nil), 1),
		NewModelAdapter((*ward)(nil), 2),
	)
	sm.SetConstraintOverrides([]ForeignKeyConstraint{
		{
			Table:           "wards",
			Column:          "guardian_uid",
			ReferenceTable:  "guardians",
			ReferenceColumn: "uid",
			OnUpdate:        "CASCADE",
			OnDelete:        "SET NULL",
		},
	})
	require.NoError(t, sm.Reset(ctx))

	declared, err := (&ForeignKeyManager{}).ListDeclaredForeignKeys(ctx, db, "wards")
	require.NoError(t, err)
	require.Len(t, declared, 1)
	require.Equal(t, "SET NULL", declared[0].OnDelete)
}

func TestTableExistsUnknownTable(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, false)
	sm := NewSchemaManagerWithModels(db, nil)

	exists, err := sm.TableExists(ctx, "ancestors")
	require.NoError(t, err)
	require.False(t, exists)
}
