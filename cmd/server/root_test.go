package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
)

func setConfig(t *testing.T, values map[string]any) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, viper.BindPFlags(rootCmd.Flags()))
	for k, v := range values {
		viper.Set(k, v)
	}
}

func TestLoadConfig(t *testing.T) {
	setConfig(t, map[string]any{
		"jwt-secret": "s3cret",
		"repository": "team",
		"rule":       []string{"alice=rw:/team", "bob=r:/team/notes"},
	})

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, models.ID("team"), cfg.Repository)
	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Len(t, cfg.Rules, 2)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{name: "no secret", values: map[string]any{}},
		{name: "bad repository", values: map[string]any{"jwt-secret": "x", "repository": "a/b"}},
		{name: "bad rule", values: map[string]any{"jwt-secret": "x", "rule": []string{"alice"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setConfig(t, tt.values)
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	require.NoError(t, err)

	_, err = newLogger("loud")
	assert.Error(t, err)
}
