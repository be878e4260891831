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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSeedFilesOrderedByPrefix(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "010_last.sql", "")
	writeSeedFile(t, dir, "002_second.sql", "")
	writeSeedFile(t, dir, "001_first.sql", "")
	writeSeedFile(t, dir, "unnumbered.sql", "")
	writeSeedFile(t, dir, "notes.txt", "ignored")

	sm := NewSeedManager(nil, dir)
	files, err := sm.GetSeedFiles()
	require.NoError(t, err)
	require.Len(t, files, 4)
	require.Equal(t, "001_first.sql", files[0].Name)
	require.Equal(t, "002_second.sql", files[1].Name)
	require.Equal(t, "010_last.sql", files[2].Name)
	// Files without a numeric prefix sort after all numbered ones.
	require.Equal(t, "unnumbered.sql", files[3].Name)
}

func TestSeedMissingDirIsNoop(t *testing.T) {
	sm := NewSeedManager(nil, filepath.Join(t.TempDir(), "nope"))
	files, err := sm.GetSeedFiles()
	require.NoError(t, err)
	require.Empty(t, files)
	require.NoError(t, sm.Run(context.Background()))
}

func TestSeedRunLoadsRows(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, true)
	dir := t.TempDir()
	writeSeedFile(t, dir, "001_guardians.sql", `
-- walkthrough guardians
INSERT INTO guardians (uid, name) VALUES (1, 'Adam');
INSERT INTO guardians (uid, name) VALUES (2, 'Jacob');
`)
	writeSeedFile(t, dir, "002_wards.sql", `
INSERT INTO wards (guardian_uid, name) VALUES (1, 'Abel');
INSERT INTO wards (guardian_uid, name) VALUES (2, 'Reuben');
`)

	sm := NewSeedManager(db, dir)
	require.NoError(t, sm.Run(ctx))

	guardians, err := db.NewSelect().Model((*guardian)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, guardians)

	wards, err := db.NewSelect().Model((*ward)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, wards)
}

func TestSeedRunRollsBackFailingFile(t *testing.T) {
	ctx := context.Background()

	_, db := openTestStore(t, true)
	dir := t.TempDir()
	writeSeedFile(t, dir, "001_bad.sql", `
INSERT INTO guardians (uid, name) VALUES (1, 'Adam');
INSERT INTO wards (guardian_uid, name) VALUES (7, 'Orphan');
`)

	sm := NewSeedManager(db, dir)
	err := sm.Run(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConstraintViolation))

	// The failing statement rolls back the whole file, Adam included.
	count, cErr := db.NewSelect().Model((*guardian)(nil)).Count(ctx)
	require.NoError(t, cErr)
	require.Zero(t, count)
}

func TestSplitSQLStatements(t *testing.T) {
	sm := NewSeedManager(nil, "")
	statements := sm.splitSQLStatements(`
-- leading comment
INSERT INTO parents (uid, parent_name)
VALUES (1, 'Adam');

-- another comment
INSERT INTO parents (uid, parent_name) VALUES (2, 'Jacob');
UPDATE parents SET parent_name = 'Israel' WHERE uid = 2
`)
	require.Len(t, statements, 3)
	require.Equal(t, "INSERT INTO parents (uid, parent_name) VALUES (1, 'Adam');", statements[0])
	require.Equal(t, "UPDATE parents SET parent_name = 'Israel' WHERE uid = 2", statements[2])
}
