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
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type defaultStoreManager struct {
	config    *ConnectionConfig
	db        *bun.DB
	sqlDB     *sql.DB
	logger    Logger
	mu        sync.RWMutex
	connected bool
	lastError error
}

// NewStoreManager returns a StoreManager backed by Bun over the embedded
// SQLite engine. If config is nil, a default configuration is used; note
// that the default leaves foreign key enforcement off.
func NewStoreManager(config *ConnectionConfig) StoreManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultStoreManager{
		config: config,
	}
}

func (sm *defaultStoreManager) Connect(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.connected && sm.db != nil {
		return nil
	}

	var err error
	sm.sqlDB, sm.db, err = sm.createConnection()
	if err != nil {
		sm.lastError = err
		return fmt.Errorf("failed to open store: %w: %v", ErrConnection, err)
	}

	sm.configureConnectionPool()

	if sm.config.ConnectTimeout.Seconds() <= 0 {
		sm.config.ConnectTimeout = 10 * time.Second
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, sm.config.ConnectTimeout)
	defer cancel()

	if err := sm.db.PingContext(ctxTimeout); err != nil {
		sm.lastError = err
		_ = sm.db.Close()
		sm.db = nil
		sm.sqlDB = nil
		return fmt.Errorf("store connection test failed: %w: %v", ErrConnection, err)
	}

	if err := sm.applySessionPragmas(ctxTimeout); err != nil {
		sm.lastError = err
		_ = sm.db.Close()
		sm.db = nil
		sm.sqlDB = nil
		return err
	}

	sm.connected = true
	sm.lastError = nil

	if sm.logger != nil {
		sm.logger.Info("Store connected successfully:", "path", sm.config.Path, "foreign_keys", sm.config.EnforceForeignKeys)
	}
	return nil
}

func (sm *defaultStoreManager) createConnection() (*sql.DB, *bun.DB, error) {
	if strings.TrimSpace(sm.config.Path) == "" {
		return nil, nil, fmt.Errorf("store path cannot be empty")
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, sm.config.Path)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())

	if sm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("LINEAGEDEBUG"),
		))
	} else {
		// Failed statements still get echoed; LINEAGE_QUERY_LOG=2 upgrades
		// this to logging every statement.
		db.AddQueryHook(NewQueryHook("LINEAGE_QUERY_LOG", false, os.Stdout))
	}

	if sm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(sm.config.SlowQueryTime, os.Stdout))
	}

	return sqlDB, db, nil
}

// configureConnectionPool pins the pool to a single connection. Session
// pragmas, foreign_keys among them, do not survive a new pool connection,
// and the engine supports one writer at a time anyway.
func (sm *defaultStoreManager) configureConnectionPool() {
	if sm.sqlDB == nil {
		return
	}

	sm.sqlDB.SetMaxOpenConns(1)
	sm.sqlDB.SetMaxIdleConns(1)
	sm.sqlDB.SetConnMaxLifetime(0)
	sm.sqlDB.SetConnMaxIdleTime(0)
}

func (sm *defaultStoreManager) applySessionPragmas(ctx context.Context) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", sm.config.BusyTimeout.Milliseconds()),
	}
	if sm.config.JournalMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA journal_mode = %s", sm.config.JournalMode))
	}
	if sm.config.EnforceForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	} else {
		pragmas = append(pragmas, "PRAGMA foreign_keys = OFF")
	}

	for _, pragma := range pragmas {
		if _, err := sm.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w: %v", pragma, ErrConnection, err)
		}
	}
	return nil
}

func (sm *defaultStoreManager) Disconnect() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.db != nil {
		err := sm.db.Close()
		sm.db = nil
		sm.sqlDB = nil
		sm.connected = false

		if sm.logger != nil {
			if err != nil {
				sm.logger.Error("Failed to close store connection", "error", err)
			} else {
				sm.logger.Info("Store connection closed")
			}
		}

		return err
	}

	return nil
}

// Reconnect closes and reopens the connection. The enforcement pragma is
// re-applied by Connect; it never survives a disconnect.
func (sm *defaultStoreManager) Reconnect(ctx context.Context) error {
	if sm.logger != nil {
		sm.logger.Info("Reconnecting to the store")
	}

	if err := sm.Disconnect(); err != nil {
		if sm.logger != nil {
			sm.logger.Warn("Error disconnecting existing connection", "error", err)
		}
	}

	return sm.Connect(ctx)
}

func (sm *defaultStoreManager) Ping(ctx context.Context) error {
	sm.mu.RLock()
	db := sm.db
	sm.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("store not connected: %w", ErrConnection)
	}

	return db.PingContext(ctx)
}

func (sm *defaultStoreManager) GetDB() *bun.DB {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.db
}

func (sm *defaultStoreManager) GetSQLDB() *sql.DB {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sqlDB
}

// VerifyEnforcement reads the foreign_keys pragma back from the current
// session and reports whether the engine is checking the constraint.
func (sm *defaultStoreManager) VerifyEnforcement(ctx context.Context) (bool, error) {
	sm.mu.RLock()
	db := sm.db
	sm.mu.RUnlock()

	if db == nil {
		return false, fmt.Errorf("store not connected: %w", ErrConnection)
	}

	var value int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&value); err != nil {
		return false, fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	return value == 1, nil
}

func (sm *defaultStoreManager) HealthCheck(ctx context.Context) *HealthStatus {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     sm.connected,
	}

	if sm.db == nil {
		status.Healthy = false
		status.LastError = "Store not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := sm.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Healthy = false
		status.Connected = false
		status.LastError = err.Error()
		sm.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		sm.lastError = nil

		var fk int
		if scanErr := sm.db.QueryRowContext(ctxTimeout, "PRAGMA foreign_keys").Scan(&fk); scanErr == nil {
			status.ForeignKeysOn = fk == 1
		}
	}

	if sm.sqlDB != nil {
		stats := sm.sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}

	return status
}

func (sm *defaultStoreManager) GetStats() *DBStats {
	sm.mu.RLock()
	sqlDB := sm.sqlDB
	sm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (sm *defaultStoreManager) ResetSchema(ctx context.Context) error {
	db := sm.GetDB()
	if db == nil {
		return fmt.Errorf("store not initialized: %w", ErrConnection)
	}

	schemaManager := NewSchemaManager(db, sm.logger)

	return schemaManager.Reset(ctx)
}

func (sm *defaultStoreManager) SetLogger(logger Logger) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.logger = logger
}
