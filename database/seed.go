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
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// SeedManager discovers and executes SQL files to load walkthrough data.
type SeedManager struct {
	db          *bun.DB
	sqlRootPath string
	logger      Logger
}

// SeedFileInfo describes a SQL file to be executed during seeding.
type SeedFileInfo struct {
	Path    string
	Name    string
	Order   int
	ModTime time.Time
}

// SeedResult contains the outcome of executing a single SQL file.
type SeedResult struct {
	File         string
	Success      bool
	Error        error
	Duration     time.Duration
	RowsAffected int64
}

// NewSeedManager creates a seed runner rooted at the given directory.
func NewSeedManager(db *bun.DB, sqlRootPath string) *SeedManager {
	if sqlRootPath == "" {
		sqlRootPath = "configs/sql"
	}
	return &SeedManager{
		db:          db,
		sqlRootPath: sqlRootPath,
		logger:      GetLogger(),
	}
}

// SetLogger replaces the seed runner's logger.
func (s *SeedManager) SetLogger(logger Logger) {
	s.logger = logger
}

// Run executes all discovered SQL files in ascending order. Each file runs
// inside its own transaction; the first failure aborts the whole run.
func (s *SeedManager) Run(ctx context.Context) error {
	s.logger.Info("Starting SQL seeding", "sql_path", s.sqlRootPath)

	files, err := s.GetSeedFiles()
	if err != nil {
		return fmt.Errorf("failed to get SQL files: %w", err)
	}

	if len(files) == 0 {
		s.logger.Info("No SQL files found to execute")
		return nil
	}

	for _, file := range files {
		result := s.executeFile(ctx, file)

		if !result.Success {
			s.logger.Error("SQL file execution failed", "file", result.File, "error", result.Error.Error())
			return fmt.Errorf("SQL file execution failed %s: %w", result.File, result.Error)
		}

		s.logger.Info("SQL file executed successfully",
			"file", result.File,
			"duration", result.Duration.String(),
			"rows_affected", result.RowsAffected)
	}

	s.logger.Info("SQL seeding completed", "total_files", len(files))
	return nil
}

// GetSeedFiles returns the SQL files under the root directory, ordered by
// their numeric filename prefix.
func (s *SeedManager) GetSeedFiles() ([]SeedFileInfo, error) {
	var files []SeedFileInfo

	if _, err := os.Stat(s.sqlRootPath); os.IsNotExist(err) {
		return nil, nil
	}

	err := filepath.WalkDir(s.sqlRootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, SeedFileInfo{
			Path:    path,
			Name:    d.Name(),
			Order:   s.parseFileOrder(d.Name()),
			ModTime: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (s *SeedManager) parseFileOrder(filename string) int {
	re := regexp.MustCompile(`^(\d+)_`)
	matches := re.FindStringSubmatch(filename)
	if len(matches) > 1 {
		var order int
		_, _ = fmt.Sscanf(matches[1], "%d", &order)
		return order
	}
	return 999
}

func (s *SeedManager) executeFile(ctx context.Context, file SeedFileInfo) SeedResult {
	start := time.Now()
	result := SeedResult{
		File:    file.Path,
		Success: false,
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read file: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	statements := s.splitSQLStatements(string(content))
	if len(statements) == 0 {
		result.Success = true
		result.Duration = time.Since(start)
		return result
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var totalRowsAffected int64

		for _, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || strings.HasPrefix(stmt, "--") {
				continue
			}

			res, execErr := tx.ExecContext(ctx, stmt)
			if execErr != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, WrapError(execErr))
			}

			rowsAffected, _ := res.RowsAffected()
			totalRowsAffected += rowsAffected
		}

		result.RowsAffected = totalRowsAffected
		return nil
	})

	if err != nil {
		result.Error = err
	} else {
		result.Success = true
	}

	result.Duration = time.Since(start)
	return result
}

func (s *SeedManager) splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		current.WriteString(line)
		current.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if current.Len() > 0 {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	return statements
}
