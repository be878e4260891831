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

var flagResetSeed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the parents and children tables",
	Long: `Drop and recreate the parents and children tables, reapplying the
foreign key declaration on children. With --seed, load the walkthrough
dataset afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagResetSeed {
			storeConfig.SeedConfig.SeedOnReset = true
		}
		if err := database.ResetSchema(); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		fmt.Println("schema reset")
		if flagResetSeed {
			fmt.Println("walkthrough dataset loaded")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetSeed, "seed", false, "load the walkthrough dataset after the reset")
}
