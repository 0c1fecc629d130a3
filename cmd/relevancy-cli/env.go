package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relevancy/internal/config"
	domrs "github.com/kailas-cloud/relevancy/internal/domain/resultset"
	logpkg "github.com/kailas-cloud/relevancy/internal/logger"
)

// loadConfig reads --config if set, otherwise config/<env>.yaml.
func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger writes console logs to stderr so stdout stays machine-readable.
func newLogger(c *cli.Context) (*zap.Logger, error) {
	env := c.String("env")
	if env == "prod" {
		env = "local"
	}
	logger, err := logpkg.NewLogger(env, c.String("log-level"), "console")
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func readJSON(path string, dst any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(c *cli.Context, path string, v any) error {
	w := c.App.Writer
	if path != "" {
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func stripExplain(sets []domrs.Set) {
	for i := range sets {
		for j := range sets[i].Results {
			sets[i].Results[j].Explain = nil
		}
	}
}
