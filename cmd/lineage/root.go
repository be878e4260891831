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
	"github.com/lineage-db/lineage"
	"github.com/lineage-db/lineage/database"

	"github.com/spf13/cobra"
)

// Global flag values.
var (
	flagConfigFile  string
	flagStorePath   string
	flagEnforce     bool
	flagJournalMode string
	flagQueryLog    bool
)

// storeConfig holds the resolved store configuration. Set by
// PersistentPreRunE so all subcommands can use it.
var storeConfig *database.Config

var rootCmd = &cobra.Command{
	Use:     "lineage",
	Short:   "Lineage manages a parent/child store with opt-in foreign key enforcement",
	Version: lineage.Version,
}

func init() {
	// Assigned here rather than in the composite literal above to avoid an
	// initialization cycle: resolveConfig reads rootCmd's flags.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		storeConfig = cfg

		// The demo manages its own sessions because it needs to open the
		// same store twice with different enforcement settings.
		if cmd.Name() == "demo" {
			return nil
		}

		if _, err := database.InitStore(cfg); err != nil {
			return err
		}
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return database.CloseStore()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: lineage.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store", "", "path to the store file (default: lineage.db)")
	rootCmd.PersistentFlags().BoolVar(&flagEnforce, "enforce", false, "enforce foreign keys on the session")
	rootCmd.PersistentFlags().StringVar(&flagJournalMode, "journal-mode", "", "journal mode: WAL, DELETE, TRUNCATE, MEMORY")
	rootCmd.PersistentFlags().BoolVar(&flagQueryLog, "query-log", false, "log every statement to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(demoCmd)
}
