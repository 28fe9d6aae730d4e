package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/picstore/clientcli"
)

func TestConfigFile_ProfileOperations(t *testing.T) {
	cfg := &clientcli.ConfigFile{}

	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "dev", Endpoint: "http://localhost:8080"}))
	require.NoError(t, cfg.AddProfile(clientcli.Profile{Name: "prod", Endpoint: "https://pics.example.com", Default: true}))

	// Duplicate names are rejected
	err := cfg.AddProfile(clientcli.Profile{Name: "dev"})
	assert.ErrorIs(t, err, clientcli.ErrProfileExists)

	// Named lookup
	p, err := cfg.GetProfile("dev")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", p.Endpoint)

	// Empty name resolves the default
	p, err = cfg.GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)

	// Unknown name
	_, err = cfg.GetProfile("staging")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)

	assert.Equal(t, []string{"dev", "prod"}, cfg.ProfileNames())
}

func TestConfigFile_DefaultFallsBackToFirst(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "a", Endpoint: "http://a"},
			{Name: "b", Endpoint: "http://b"},
		},
	}

	p, err := cfg.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)
}

func TestConfigFile_SetDefault(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "a", Default: true},
			{Name: "b"},
		},
	}

	require.NoError(t, cfg.SetDefault("b"))
	assert.False(t, cfg.Profiles[0].Default)
	assert.True(t, cfg.Profiles[1].Default)

	assert.ErrorIs(t, cfg.SetDefault("missing"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_UpdateAndRemove(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{{Name: "a", Endpoint: "http://old"}},
	}

	require.NoError(t, cfg.UpdateProfile(clientcli.Profile{Name: "a", Endpoint: "http://new"}))
	assert.Equal(t, "http://new", cfg.Profiles[0].Endpoint)

	assert.ErrorIs(t, cfg.UpdateProfile(clientcli.Profile{Name: "b"}), clientcli.ErrProfileNotFound)

	require.NoError(t, cfg.RemoveProfile("a"))
	assert.Empty(t, cfg.Profiles)
	assert.ErrorIs(t, cfg.RemoveProfile("a"), clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "prod", Endpoint: "https://pics.example.com", UserID: "alice", Default: true},
		},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Profiles, 1)
	assert.Equal(t, cfg.Profiles[0], loaded.Profiles[0])

	// Config files hold no secrets but stay private anyway
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&clientcli.Config{}).WithDefaults()
	assert.Equal(t, clientcli.DefaultEndpoint, cfg.Endpoint)

	cfg = (&clientcli.Config{Endpoint: "http://other"}).WithDefaults()
	assert.Equal(t, "http://other", cfg.Endpoint)
}

func TestMergeConfig(t *testing.T) {
	merged := clientcli.MergeConfig(
		&clientcli.Config{Endpoint: "http://file", UserID: "file-user"},
		nil,
		&clientcli.Config{UserID: "env-user"},
		&clientcli.Config{Endpoint: "http://flag"},
	)

	assert.Equal(t, "http://flag", merged.Endpoint)
	assert.Equal(t, "env-user", merged.UserID)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PICSTORE_ENDPOINT", "http://env:8080")
	t.Setenv("PICSTORE_USER_ID", "bob")
	t.Setenv("PICSTORE_PROFILE", "staging")

	cfg := clientcli.ConfigFromEnv()
	assert.Equal(t, "http://env:8080", cfg.Endpoint)
	assert.Equal(t, "bob", cfg.UserID)
	assert.Equal(t, "staging", clientcli.ProfileFromEnv())
}
