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
	"strings"
	"time"

	"github.com/lineage-db/lineage/database"

	"github.com/spf13/viper"
)

const (
	configFileName = "lineage"
	configFileType = "yaml"

	cfgKeyStorePath      = "store.path"
	cfgKeyStoreEnforce   = "store.enforce_foreign_keys"
	cfgKeyStoreJournal   = "store.journal_mode"
	cfgKeyStoreBusyMS    = "store.busy_timeout_ms"
	cfgKeyStoreConnectS  = "store.connect_timeout_s"
	cfgKeyStoreQueryLog  = "store.query_log"
	cfgKeySchemaFKFile   = "schema.foreign_key_file"
	cfgKeySeedPath       = "seed.path"
	cfgKeySeedOnReset    = "seed.on_reset"
	cfgEnvPrefix         = "LINEAGE"
	defaultStorePath     = "lineage.db"
	defaultSeedPath      = "configs/sql"
	defaultBusyTimeoutMS = 5000
	defaultConnectSecs   = 10
)

// loadConfig reads the YAML config using Viper. A missing config file is
// not an error; defaults and flags cover every key.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyStorePath, defaultStorePath)
	v.SetDefault(cfgKeyStoreEnforce, false)
	v.SetDefault(cfgKeyStoreJournal, "WAL")
	v.SetDefault(cfgKeyStoreBusyMS, defaultBusyTimeoutMS)
	v.SetDefault(cfgKeyStoreConnectS, defaultConnectSecs)
	v.SetDefault(cfgKeyStoreQueryLog, false)
	v.SetDefault(cfgKeySeedPath, defaultSeedPath)
	v.SetDefault(cfgKeySeedOnReset, false)
	v.SetEnvPrefix(cfgEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagConfigFile != "" {
		v.SetConfigFile(flagConfigFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file in the working directory; defaults and flags
			// cover everything.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// resolveConfig builds the store configuration with precedence:
// flag > config file > default. Enforcement is part of connection
// construction, so it is fixed here before any session opens.
func resolveConfig() (*database.Config, error) {
	v, err := loadConfig()
	if err != nil {
		return nil, err
	}

	conn := database.DefaultConnectionConfig()
	conn.Path = v.GetString(cfgKeyStorePath)
	conn.EnforceForeignKeys = v.GetBool(cfgKeyStoreEnforce)
	conn.JournalMode = v.GetString(cfgKeyStoreJournal)
	conn.BusyTimeout = time.Duration(v.GetInt(cfgKeyStoreBusyMS)) * time.Millisecond
	conn.ConnectTimeout = time.Duration(v.GetInt(cfgKeyStoreConnectS)) * time.Second
	conn.EnableQueryLog = v.GetBool(cfgKeyStoreQueryLog)

	if flagStorePath != "" {
		conn.Path = flagStorePath
	}
	if rootCmd.PersistentFlags().Changed("enforce") {
		conn.EnforceForeignKeys = flagEnforce
	}
	if flagJournalMode != "" {
		conn.JournalMode = flagJournalMode
	}
	if rootCmd.PersistentFlags().Changed("query-log") {
		conn.EnableQueryLog = flagQueryLog
	}

	return &database.Config{
		ConnectionConfig: *conn,
		SchemaConfig: database.SchemaConfig{
			ForeignKeyFile: v.GetString(cfgKeySchemaFKFile),
		},
		SeedConfig: database.SeedConfig{
			SeedOnReset: v.GetBool(cfgKeySeedOnReset),
			Filepath:    v.GetString(cfgKeySeedPath),
		},
	}, nil
}
