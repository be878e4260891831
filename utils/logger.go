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

package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the concrete logger type handed out by NewLogger.
type Logger = logrus.Logger

var (
	defaultConsoleLevel = logrus.InfoLevel
	loggerRegistryMu    sync.RWMutex
	loggerRegistry      = map[string]*logrus.Logger{}
	consoleLogFormat    = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

// prefixedFormatter renders "2006-01-02 15:04:05 [LEVEL] [NAME] message".
type prefixedFormatter struct {
	name string
}

func (f *prefixedFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(e.Level.String())
	line := fmt.Sprintf("%s [%5s] [%s] %s\n",
		e.Time.Format("2006-01-02 15:04:05.000"), level, f.name, e.Message)
	return []byte(line), nil
}

// NewLogger returns the named logger, creating and registering it on first
// use. The level defaults to info and can be overridden per name with the
// LOG_LEVEL_<NAME> environment variable, or globally with LOG_LEVEL.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	if l, ok := loggerRegistry[name]; ok {
		loggerRegistryMu.RUnlock()
		return l
	}
	loggerRegistryMu.RUnlock()

	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(resolveLevel(name))
	if consoleLogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		l.SetFormatter(&prefixedFormatter{name: name})
	}

	loggerRegistry[name] = l
	return l
}

// SetLoggerLevel adjusts the level of a named logger at runtime.
func SetLoggerLevel(name, level string) {
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		l = NewLogger(name)
	}
	if parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		l.SetLevel(parsed)
	}
}

func resolveLevel(name string) logrus.Level {
	candidates := []string{
		os.Getenv("LOG_LEVEL_" + strings.ToUpper(name)),
		os.Getenv("LOG_LEVEL"),
	}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if parsed, err := logrus.ParseLevel(strings.ToLower(candidate)); err == nil {
			return parsed
		}
	}
	return defaultConsoleLevel
}
