package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTokens_YAML(t *testing.T) {
	path := writeFile(t, "tokens.yaml", `
tokens:
  - token: abc
    user_id: "7"
    user_name: alice
    role: Admin
  - token: old
    user_id: "8"
    user_name: bob
    expires_at: "2020-05-01T10:00:00Z"
`)

	tokens, err := LoadTokens(path)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, "abc", tokens[0].Token)
	assert.Equal(t, "7", tokens[0].UserID)
	assert.Equal(t, "alice", tokens[0].UserName)
	assert.Equal(t, "Admin", tokens[0].Role)
	assert.Nil(t, tokens[0].ExpiresAt)

	assert.Equal(t, "User", tokens[1].Role)
	require.NotNil(t, tokens[1].ExpiresAt)
	assert.True(t, tokens[1].ExpiresAt.Equal(time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestLoadTokens_JSON(t *testing.T) {
	path := writeFile(t, "tokens.json", `{"tokens":[{"token":"t1","user_id":"1","user_name":"u","role":"User"}]}`)

	tokens, err := LoadTokens(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "t1", tokens[0].Token)
}

func TestLoadTokens_BadExpiry(t *testing.T) {
	path := writeFile(t, "tokens.yaml", `
tokens:
  - token: abc
    user_id: "1"
    user_name: a
    expires_at: tomorrow
`)

	_, err := LoadTokens(path)
	assert.Error(t, err)
}

func TestLoadTokens_MissingFile(t *testing.T) {
	_, err := LoadTokens(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCacheConfig_Defaults(t *testing.T) {
	var c CacheConfig
	assert.Equal(t, 5*time.Minute, c.AbsoluteTTL())
	assert.Equal(t, 2*time.Minute, c.SlidingTTL())
	assert.Zero(t, c.PruneInterval())
}

func TestAppConfig_IsProduction(t *testing.T) {
	assert.True(t, AppConfig{Env: "Production"}.IsProduction())
	assert.False(t, AppConfig{Env: "development"}.IsProduction())
}
