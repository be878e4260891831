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
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// StoreManager defines the operations for managing a connection to an
// embedded store, resetting its schema, and reporting health.
type StoreManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	ResetSchema(ctx context.Context) error
	VerifyEnforcement(ctx context.Context) (bool, error)
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// StoreConfigProvider exposes configuration loading.
type StoreConfigProvider interface {
	ConfigLoader() *Config
}

// HealthStatus holds the result of a health check against the store.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ForeignKeysOn bool          `json:"foreign_keys_on"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to open the store file.
//
// EnforceForeignKeys is session state in SQLite: it defaults to off and must
// be reissued on every new connection. It is therefore a required field of
// connection construction rather than an optional post-connect call, and
// Reconnect re-applies it.
type ConnectionConfig struct {
	Path               string        `json:"path"`
	EnforceForeignKeys bool          `json:"enforce_foreign_keys"`
	ConnectTimeout     time.Duration `json:"connect_timeout"`
	BusyTimeout        time.Duration `json:"busy_timeout"`
	JournalMode        string        `json:"journal_mode"` // WAL, DELETE, TRUNCATE, MEMORY
	EnableQueryLog     bool          `json:"enable_query_log"`
	SlowQueryTime      time.Duration `json:"slow_query_time"`
}

// SchemaConfig controls schema reset behavior on startup.
type SchemaConfig struct {
	ResetOnStartup bool   `json:"reset_on_startup"`
	ForeignKeyFile string `json:"foreign_key_file"`
}

// SeedConfig controls data seeding behavior.
type SeedConfig struct {
	SeedOnReset bool   `json:"seed_on_reset"`
	Filepath    string `json:"filepath"`
}

// Config aggregates connection, schema, and data seeding settings.
type Config struct {
	ConnectionConfig ConnectionConfig `json:"connection_config"`
	SchemaConfig     SchemaConfig     `json:"schema_config"`
	SeedConfig       SeedConfig       `json:"seed_config"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
// Foreign key enforcement stays off by default, matching the engine itself;
// callers that want the referential invariant must set EnforceForeignKeys.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		ConnectTimeout: time.Second * 10,
		BusyTimeout:    time.Second * 5,
		JournalMode:    "WAL",
		EnableQueryLog: false,
		SlowQueryTime:  time.Second * 2,
	}
}

// ForeignKeyConfig is the YAML structure that lists foreign key constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraintConfig `yaml:"foreign_keys"`
}

// ForeignKeyConstraintConfig describes a single foreign key in configuration.
type ForeignKeyConstraintConfig struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"`
	OnUpdate        string `yaml:"on_update"`
	ConstraintName  string `yaml:"constraint_name"`
	Description     string `yaml:"description"`
}

// ToForeignKeyConstraint converts the config entry into a runtime constraint.
func (fkc *ForeignKeyConstraintConfig) ToForeignKeyConstraint() ForeignKeyConstraint {
	return ForeignKeyConstraint{
		Table:           fkc.Table,
		Column:          fkc.Column,
		ReferenceTable:  fkc.ReferenceTable,
		ReferenceColumn: fkc.ReferenceColumn,
		OnDelete:        fkc.OnDelete,
		OnUpdate:        fkc.OnUpdate,
		ConstraintName:  fkc.ConstraintName,
	}
}

// ConfigurableForeignKeyManager loads foreign key constraints from a YAML
// configuration file and falls back to the model-declared constraints.
type ConfigurableForeignKeyManager struct {
	*ForeignKeyManager
	configPath string
}

// NewConfigurableForeignKeyManager creates a foreign key manager using the
// provided YAML configuration file path.
func NewConfigurableForeignKeyManager(logger Logger, configPath string) (*ConfigurableForeignKeyManager, error) {
	manager := &ConfigurableForeignKeyManager{
		configPath: configPath,
	}
	constraints, err := manager.loadFromConfig()
	if err != nil {
		if logger != nil {
			logger.Debug("Failed to load foreign key constraints from config, using model-declared constraints", "error", err.Error(), "config_path", configPath)
		}
		constraints = RegisteredForeignKeys()
	}

	manager.ForeignKeyManager = &ForeignKeyManager{
		constraints: constraints,
		logger:      logger,
	}

	return manager, nil
}

func (cfm *ConfigurableForeignKeyManager) loadFromConfig() ([]ForeignKeyConstraint, error) {
	if _, err := os.Stat(cfm.configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", cfm.configPath)
	}

	data, err := os.ReadFile(cfm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ForeignKeyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var constraints []ForeignKeyConstraint
	for _, fkConfig := range config.ForeignKeys {
		constraints = append(constraints, fkConfig.ToForeignKeyConstraint())
	}

	return constraints, nil
}

func (cfm *ConfigurableForeignKeyManager) ReloadConfig() error {
	// ReloadConfig refreshes constraints from the YAML configuration file.
	constraints, err := cfm.loadFromConfig()
	if err != nil {
		return err
	}

	cfm.constraints = constraints
	return nil
}

func (cfm *ConfigurableForeignKeyManager) ExportToConfig(outputPath string) error {
	// ExportToConfig writes the current constraints into a YAML configuration
	// file at the given output path, creating directories as needed.
	var configConstraints []ForeignKeyConstraintConfig
	for _, constraint := range cfm.constraints {
		configConstraints = append(configConstraints, ForeignKeyConstraintConfig{
			Table:           constraint.Table,
			Column:          constraint.Column,
			ReferenceTable:  constraint.ReferenceTable,
			ReferenceColumn: constraint.ReferenceColumn,
			OnDelete:        constraint.OnDelete,
			OnUpdate:        constraint.OnUpdate,
			ConstraintName:  constraint.ConstraintName,
			Description:     fmt.Sprintf("%s.%s -> %s.%s", constraint.Table, constraint.Column, constraint.ReferenceTable, constraint.ReferenceColumn),
		})
	}

	config := ForeignKeyConfig{
		ForeignKeys: configConstraints,
	}

	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (cfm *ConfigurableForeignKeyManager) GetConfigPath() string {
	// GetConfigPath returns the path to the YAML configuration file.
	return cfm.configPath
}
