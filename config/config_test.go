// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\nqueueSize: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 8, cfg.QueueSize)
	// untouched fields keep their defaults
	assert.Equal(t, Default().DataDir, cfg.DataDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ROLLUP_LISTEN", ":7000")
	t.Setenv("ROLLUP_QUEUE_SIZE", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, 4, cfg.QueueSize)
}

func TestLoadEnvInvalidQueueSize(t *testing.T) {
	t.Setenv("ROLLUP_QUEUE_SIZE", "lots")

	_, err := Load("")
	assert.ErrorContains(t, err, "ROLLUP_QUEUE_SIZE")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.QueueSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Listen = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
