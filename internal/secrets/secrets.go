// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed
// file contents are the value. Environment variables fill in keys the
// directory does not hold.
//
// Supported key files: openai-api-key, tavily-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Key files and their environment fallbacks.
const (
	OpenAIKey = "openai-api-key"
	TavilyKey = "tavily-api-key"

	OpenAIEnv = "OPENAI_API_KEY"
	TavilyEnv = "TAVILY_API_KEY"
)

// Store maps key names to secret values.
type Store map[string]string

// lookupEnv is os.LookupEnv. Package-level var for test substitution.
var lookupEnv = os.LookupEnv

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Store. Unreadable files are logged and
// skipped.
func Load(dir string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the secret for key, falling back to the env variable.
func (s Store) Get(key, env string) string {
	if v := s[key]; v != "" {
		return v
	}
	if env == "" {
		return ""
	}
	if v, ok := lookupEnv(env); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
