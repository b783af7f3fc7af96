package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/pyworks/internal/app"
	"github.com/jeryldev/pyworks/internal/config"
	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/pypi"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Home:  t.TempDir(),
		Index: config.IndexConfig{URL: "https://pypi.org", Enabled: true},
	}
}

func TestNewWireBuildsAllServices(t *testing.T) {
	w, err := app.NewWire(testConfig(t))
	require.NoError(t, err)

	require.NotNil(t, w.Runner)
	require.NotNil(t, w.Cache)
	require.NotNil(t, w.Index)
	require.NotNil(t, w.Envs)
	require.NotNil(t, w.Kernels)
	require.NotNil(t, w.Packages)
	require.NotNil(t, w.Installer)
	require.NotNil(t, w.Detect)
	require.NotNil(t, w.Selftest)
}

func TestNewWireIndexEnabled(t *testing.T) {
	w, err := app.NewWire(testConfig(t))
	require.NoError(t, err)
	assert.IsType(t, &pypi.HTTP{}, w.Index)
}

func TestNewWireIndexDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Enabled = false

	w, err := app.NewWire(cfg)
	require.NoError(t, err)
	assert.IsType(t, pypi.Disabled{}, w.Index)
}

func TestNewWireEmptyIndexURLDisablesLookups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.URL = ""

	w, err := app.NewWire(cfg)
	require.NoError(t, err)

	// Clearing the URL must not fall back to the public index.
	assert.IsType(t, pypi.Disabled{}, w.Index)
	_, lookupErr := w.Index.LatestVersion(context.Background(), "numpy")
	assert.ErrorIs(t, lookupErr, domain.ErrIndexDisabled)
}
