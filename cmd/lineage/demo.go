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

package main

import (
	"context"
	"fmt"

	"github.com/lineage-db/lineage"
	"github.com/lineage-db/lineage/database"
	"github.com/lineage-db/lineage/types"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through foreign key enforcement across two sessions",
	Long: `Walk through foreign key enforcement on the same store file across
two sessions. The first session leaves enforcement off and shows a
dangling child slipping in; the second opens with enforcement on, shows
the same kind of insert rejected, and finishes with a cascade delete.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.Context(), storeConfig)
	},
}

func runDemo(ctx context.Context, cfg *database.Config) error {
	if err := demoWithoutEnforcement(ctx, cfg.ConnectionConfig); err != nil {
		return err
	}
	return demoWithEnforcement(ctx, cfg.ConnectionConfig)
}

// demoWithoutEnforcement opens the store with enforcement off, builds the
// two families, and shows a child of a nonexistent parent being accepted.
func demoWithoutEnforcement(ctx context.Context, conn database.ConnectionConfig) error {
	conn.EnforceForeignKeys = false
	manager := database.NewStoreManager(&conn)
	if err := manager.Connect(ctx); err != nil {
		return err
	}
	defer manager.Disconnect()
	db := manager.GetDB()

	fmt.Println("== session 1: enforcement off ==")
	if err := database.NewSchemaManager(db, database.GetLogger()).Reset(ctx); err != nil {
		return err
	}

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	inserted, err := parents.Create(ctx,
		&lineage.Parent{UID: 1, ParentName: "Adam"},
		&lineage.Parent{UID: 2, ParentName: "Jacob"},
	)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d parents\n", inserted)

	inserted, err = children.Create(ctx,
		&lineage.Child{ParentUID: 1, ChildName: "Abel"},
		&lineage.Child{ParentUID: 1, ChildName: "Seth"},
	)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d children of Adam\n", inserted)

	// parent_uid 5 matches nothing. The engine accepts it anyway: the
	// constraint is declared in the schema but this session never turned
	// enforcement on.
	if _, err := children.Create(ctx, &lineage.Child{ParentUID: 5, ChildName: "Solomon"}); err != nil {
		return err
	}
	fmt.Println("inserted Solomon under nonexistent parent 5: accepted, enforcement is off")

	violations, err := database.NewForeignKeyManager(database.GetLogger()).CheckIntegrity(ctx, db)
	if err != nil {
		return err
	}
	fmt.Printf("integrity scan: %d dangling reference(s)\n", len(violations))
	return nil
}

// demoWithEnforcement reopens the same store file with enforcement on,
// shows the dangling insert rejected, and runs the cascade delete.
func demoWithEnforcement(ctx context.Context, conn database.ConnectionConfig) error {
	conn.EnforceForeignKeys = true
	manager := database.NewStoreManager(&conn)
	if err := manager.Connect(ctx); err != nil {
		return err
	}
	defer manager.Disconnect()
	db := manager.GetDB()

	fmt.Println("== session 2: enforcement on ==")
	enforced, err := manager.VerifyEnforcement(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("enforcement verified: %v\n", enforced)

	parents := lineage.ParentsWithDB(db)
	children := lineage.ChildrenWithDB(db)

	_, err = children.Create(ctx, &lineage.Child{ParentUID: 6, ChildName: "Samuel"})
	if err == nil {
		return fmt.Errorf("insert of Samuel under nonexistent parent 6 unexpectedly succeeded")
	}
	if !database.IsForeignKeyViolation(err) {
		return err
	}
	fmt.Println("inserted Samuel under nonexistent parent 6: rejected, enforcement is on")

	// The Solomon row from session 1 predates enforcement; remove it so the
	// final counts reflect the cascade alone.
	removed, err := children.DeleteWhere(ctx, types.NewQueryFilter("child_name = ?", "Solomon"))
	if err != nil {
		return err
	}
	fmt.Printf("removed %d dangling row(s) left over from session 1\n", removed)

	sons := make([]*lineage.Child, 0, 15)
	for i := 1; i <= 15; i++ {
		sons = append(sons, &lineage.Child{ParentUID: 2, ChildName: fmt.Sprintf("Son%02d", i)})
	}
	inserted, err := children.Create(ctx, sons...)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d children of Jacob\n", inserted)

	affected, err := parents.Delete(ctx, 2)
	if err != nil {
		return err
	}
	fmt.Printf("deleted Jacob: %d parent row removed, children cascade away with him\n", affected)

	parentCount, err := parents.Count(ctx, nil)
	if err != nil {
		return err
	}
	childCount, err := children.Count(ctx, nil)
	if err != nil {
		return err
	}
	fmt.Printf("final counts: %d parent(s), %d child(ren)\n", parentCount, childCount)
	return nil
}
