// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/almanac/ai"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDatabase       = "ALMANAC_DB"
	EnvEmbeddingHost  = "ALMANAC_EMBEDDING_HOST"
	EnvEmbeddingModel = "ALMANAC_EMBEDDING_MODEL"
	EnvEmbeddingDims  = "ALMANAC_EMBEDDING_DIMENSIONS"
)

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	Host       string `yaml:"host"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// File is the root of the YAML configuration file.
type File struct {
	Database  string          `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Tuning    Tuning          `yaml:"tuning"`
}

// Default returns the configuration used when no file is present.
func Default() *File {
	aiCfg := ai.DefaultConfig()
	return &File{
		Database: "./almanac_db",
		Embedding: EmbeddingConfig{
			Host:       aiCfg.EmbeddingHost,
			Model:      aiCfg.EmbeddingModel,
			Dimensions: aiCfg.Dimensions,
		},
		Tuning: DefaultTuning(),
	}
}

// Load reads a config from path. If path is empty or the file does not exist,
// returns defaults. Fields missing from the file keep their default values.
func Load(path string) (*File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", expanded, err)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnvFiles loads .env style files into the process environment.
// Variables already set are not overridden and missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays ALMANAC_* environment variables onto the config.
func (f *File) ApplyEnv() error {
	if v := os.Getenv(EnvDatabase); v != "" {
		f.Database = v
	}
	if v := os.Getenv(EnvEmbeddingHost); v != "" {
		f.Embedding.Host = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		f.Embedding.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEmbeddingDims)); v != "" {
		dims, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEmbeddingDims, err)
		}
		f.Embedding.Dimensions = dims
	}
	return nil
}

// AIConfig converts the embedding section into an ai.Config.
func (f *File) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(f.Embedding.Host),
		ai.WithEmbeddingModel(f.Embedding.Model),
		ai.WithDimensions(f.Embedding.Dimensions),
	)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}
