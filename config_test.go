package satchel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SATCHEL_HOST", "mongodb://db.example.com:27017/app")
	t.Setenv("SATCHEL_USER", "app")
	t.Setenv("SATCHEL_PASSWORD", "secret")

	cfg := ConfigFromEnv()
	require.Equal(t, "mongodb://db.example.com:27017/app", cfg.Host)
	require.Equal(t, "app", cfg.User)
	require.Equal(t, "secret", cfg.Password)
}

func TestConfigScheme(t *testing.T) {
	require.Equal(t, "mongodb", Config{Host: "mongodb://localhost"}.scheme())
	require.Equal(t, "mongodb+srv", Config{Host: "mongodb+srv://cluster0"}.scheme())
	require.Equal(t, "mem", Config{Host: "mem://"}.scheme())
	require.Equal(t, "", Config{Host: "localhost:27017"}.scheme())
	require.Equal(t, "", Config{Host: "://x"}.scheme())
}

func TestConfigValidate(t *testing.T) {
	require.Error(t, Config{}.validate())
	require.Error(t, Config{Host: "localhost"}.validate())
	require.NoError(t, Config{Host: "bbolt:///var/lib/satchel"}.validate())
}
