package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "ASSET_BACKEND", "ASSET_ROOT", "HOMEPAGE_SLOTS", "VARIANT_WIDTHS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.AssetBackend)
	assert.Equal(t, 7, cfg.HomepageSlots)
	assert.Equal(t, []int{400, 800, 1600}, cfg.VariantWidths)
	assert.Equal(t, "/images/portfolio", cfg.AssetRoot)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ASSET_BACKEND", "r2")
	t.Setenv("HOMEPAGE_SLOTS", "5")
	t.Setenv("VARIANT_WIDTHS", "320,640")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendR2, cfg.AssetBackend)
	assert.Equal(t, 5, cfg.HomepageSlots)
	assert.Equal(t, []int{320, 640}, cfg.VariantWidths)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.AssetBackend = "ftp" }, wantErr: true},
		{name: "zero slots", mutate: func(c *Config) { c.HomepageSlots = 0 }, wantErr: true},
		{name: "too many slots", mutate: func(c *Config) { c.HomepageSlots = 8 }, wantErr: true},
		{name: "negative width", mutate: func(c *Config) { c.VariantWidths = []int{400, -1} }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{AssetBackend: BackendLocal, HomepageSlots: 7, VariantWidths: []int{400}}
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
