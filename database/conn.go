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

	"github.com/uptrace/bun"
)

var (
	globalFactory *BaseStoreFactory
	globalConfig  *Config
	DB            *bun.DB
)

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return DB
}

// GetStoreManager returns the global store manager.
func GetStoreManager() StoreManager {
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// GetStoreFactory returns the global store factory.
func GetStoreFactory() *BaseStoreFactory {
	return globalFactory
}

// InitStore initializes the global store using the provided configuration.
// When SchemaConfig.ResetOnStartup is set, the two tables are dropped and
// recreated before the store is handed out.
func InitStore(cfg *Config) (*bun.DB, error) {
	globalConfig = cfg
	return InitStoreWithOptions(cfg, cfg.SchemaConfig.ResetOnStartup)
}

// InitStoreWithOptions initializes the store and optionally resets its schema.
func InitStoreWithOptions(cfg *Config, resetSchema bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store configuration cannot be empty")
	}
	globalFactory = NewStoreFactory()
	manager, err := globalFactory.CreateFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create store manager: %w", err)
	}

	ctx := context.Background()
	if err := globalFactory.InitializeStore(ctx, resetSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	DB = manager.GetDB()
	DB.RegisterModel(RegisteredModelInstances()...)
	return DB, nil
}

// CloseStore closes the global store connection.
func CloseStore() error {
	if globalFactory != nil {
		return globalFactory.Close()
	}
	return nil
}

// GetHealthStatus returns the current store health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory != nil {
		return globalFactory.GetHealthStatus(ctx)
	}
	return &HealthStatus{
		Healthy:   false,
		Connected: false,
		LastError: "Store not initialized",
	}
}

// GetStoreStats returns global store statistics.
func GetStoreStats() *DBStats {
	if globalFactory != nil {
		return globalFactory.GetStats()
	}
	return &DBStats{}
}

// ResetSchema drops and recreates the two tables on the global store.
func ResetSchema() error {
	if globalFactory == nil {
		return fmt.Errorf("store not initialized: %w", ErrConnection)
	}
	manager := globalFactory.GetManager()
	if manager == nil {
		return fmt.Errorf("store manager not initialized: %w", ErrConnection)
	}

	db := manager.GetDB()
	if db == nil {
		return fmt.Errorf("store instance not initialized: %w", ErrConnection)
	}

	schemaManager := NewSchemaManager(db, GetLogger())
	if globalConfig != nil && globalConfig.SchemaConfig.ForeignKeyFile != "" {
		fkManager, err := NewConfigurableForeignKeyManager(GetLogger(), globalConfig.SchemaConfig.ForeignKeyFile)
		if err != nil {
			return err
		}
		if errs := fkManager.ValidateConstraints(); len(errs) > 0 {
			return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
		}
		schemaManager.SetConstraintOverrides(fkManager.ListAllConstraints())
	}
	if err := schemaManager.Reset(context.Background()); err != nil {
		return err
	}

	if globalConfig != nil && globalConfig.SeedConfig.SeedOnReset {
		return SeedData()
	}
	return nil
}

// SeedData loads the configured walkthrough SQL files into the global store.
func SeedData() error {
	if globalFactory == nil {
		return fmt.Errorf("store not initialized: %w", ErrConnection)
	}
	manager := globalFactory.GetManager()
	if manager == nil {
		return fmt.Errorf("store manager not initialized: %w", ErrConnection)
	}

	db := manager.GetDB()
	if db == nil {
		return fmt.Errorf("store instance not initialized: %w", ErrConnection)
	}

	filepath := ""
	if globalConfig != nil {
		filepath = globalConfig.SeedConfig.Filepath
	}

	seedManager := NewSeedManager(db, filepath)
	return seedManager.Run(context.Background())
}
