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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// BaseStoreFactory creates and manages a configured store manager and
// provides helpers for initialization, health checks, and statistics.
type BaseStoreFactory struct {
	manager StoreManager
	logger  Logger
}

// NewStoreFactory returns a new store factory using the global logger.
func NewStoreFactory() *BaseStoreFactory {
	return &BaseStoreFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig constructs a store manager from the given connection
// configuration, applying environment overrides and setting the factory logger.
func (f *BaseStoreFactory) CreateFromConfig(cfg *ConnectionConfig) (StoreManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store configuration cannot be empty")
	}

	// Override config from environment variables
	f.overrideFromEnv(cfg)

	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	// Create manager
	manager := NewStoreManager(cfg)
	manager.SetLogger(f.logger)

	f.manager = manager
	return manager, nil
}

// overrideFromEnv overrides configuration values from environment variables.
func (f *BaseStoreFactory) overrideFromEnv(cfg *ConnectionConfig) {
	if path := os.Getenv("LINEAGE_DB_PATH"); path != "" {
		cfg.Path = path
	}
	if enforce := os.Getenv("LINEAGE_DB_ENFORCE_FK"); enforce != "" {
		cfg.EnforceForeignKeys = enforce == "true" || enforce == "1"
	}
	if journalMode := os.Getenv("LINEAGE_DB_JOURNAL_MODE"); journalMode != "" {
		cfg.JournalMode = journalMode
	}
	if busyTimeout := os.Getenv("LINEAGE_DB_BUSY_TIMEOUT"); busyTimeout != "" {
		if val, err := strconv.Atoi(busyTimeout); err == nil {
			cfg.BusyTimeout = time.Duration(val) * time.Millisecond
		}
	}
	if connectTimeout := os.Getenv("LINEAGE_DB_CONNECT_TIMEOUT"); connectTimeout != "" {
		if val, err := strconv.Atoi(connectTimeout); err == nil {
			cfg.ConnectTimeout = time.Duration(val) * time.Second
		}
	}
	if enableQueryLog := os.Getenv("LINEAGE_DB_QUERY_LOG"); enableQueryLog != "" {
		cfg.EnableQueryLog = enableQueryLog == "true"
	}
}

// InitializeStore connects to the store and optionally resets its schema.
func (f *BaseStoreFactory) InitializeStore(ctx context.Context, resetSchema bool) error {
	if f.manager == nil {
		return fmt.Errorf("store manager not created")
	}

	// Connect to store
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	// Reset schema
	if resetSchema {
		if err := f.manager.ResetSchema(ctx); err != nil {
			return fmt.Errorf("failed to reset store schema: %w", err)
		}
	}
	f.logger.Info("Store initialization completed!")
	return nil
}

// GetManager returns the underlying store manager.
func (f *BaseStoreFactory) GetManager() StoreManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil if not initialized.
func (f *BaseStoreFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseStoreFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the store connection managed by the factory.
func (f *BaseStoreFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current store health status from the manager.
func (f *BaseStoreFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Store manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns store connection statistics from the manager.
func (f *BaseStoreFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
