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
	"fmt"

	"github.com/lineage-db/lineage/database"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report enforcement state, declared foreign keys, and dangling references",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db := database.GetDB()
		manager := database.GetStoreManager()
		fkManager := database.NewForeignKeyManager(database.GetLogger())

		enforced, err := manager.VerifyEnforcement(ctx)
		if err != nil {
			return fmt.Errorf("verify enforcement: %w", err)
		}
		fmt.Printf("foreign key enforcement: %v\n", enforced)

		declared, err := fkManager.ListDeclaredForeignKeys(ctx, db, "children")
		if err != nil {
			return fmt.Errorf("list declared foreign keys: %w", err)
		}
		for _, fk := range declared {
			fmt.Printf("declared: %s.%s -> %s.%s (on update %s, on delete %s)\n",
				fk.Table, fk.Column, fk.ReferenceTable, fk.ReferenceColumn, fk.OnUpdate, fk.OnDelete)
		}

		violations, err := fkManager.CheckIntegrity(ctx, db)
		if err != nil {
			return fmt.Errorf("integrity scan: %w", err)
		}
		if len(violations) == 0 {
			fmt.Println("no dangling references")
			return nil
		}
		for _, v := range violations {
			fmt.Println("dangling:", v.String())
		}
		return fmt.Errorf("%d dangling reference(s) found", len(violations))
	},
}
