package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atinyakov/codemonkey/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG", "SERVER_ADDRESS", "DATABASE_DSN", "PERSISTENCE", "STORE_BACKEND", "REDIS_ADDR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	clearEnv(t)

	o, err := ParseArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", o.Port)
	assert.Equal(t, PersistenceLocal, o.Persistence)
	assert.Equal(t, BackendFile, o.StoreBackend)
	assert.Equal(t, "storage.json", o.StoreFile)
	assert.Equal(t, "/signin", o.SignInPath)
	assert.Equal(t, Duration(session.DefaultLoginDelay), o.LoginDelay)
	assert.Equal(t, Duration(800*time.Millisecond), o.LoginDelay)
	assert.Zero(t, o.KVRetention)
	assert.False(t, o.TLSEnabled())
}

func TestParseArgs_Precedence(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"address": "file:9000",
		"persistence": "cookie",
		"login_delay": "250ms",
		"kv_retention": "24h",
		"tls_cert": "server.crt",
		"tls_key": "server.key"
	}`), 0o600))
	t.Setenv("SERVER_ADDRESS", "env:7000")

	o, err := ParseArgs([]string{"-c", cfgPath, "-a", "flag:8000"})
	require.NoError(t, err)

	assert.Equal(t, "env:7000", o.Port, "environment wins over file and flags")
	assert.Equal(t, PersistenceCookie, o.Persistence, "file wins over flag defaults")
	assert.Equal(t, Duration(250*time.Millisecond), o.LoginDelay)
	assert.Equal(t, Duration(24*time.Hour), o.KVRetention)
	assert.True(t, o.TLSEnabled())
}

func TestParseArgs_Flags(t *testing.T) {
	clearEnv(t)

	o, err := ParseArgs([]string{
		"-c", "",
		"-p", "cookie",
		"-s", "redis",
		"-r", "cache:6380",
		"-delay", "1s",
		"-retention", "2h",
		"-l", "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, PersistenceCookie, o.Persistence)
	assert.Equal(t, BackendRedis, o.StoreBackend)
	assert.Equal(t, "cache:6380", o.RedisAddr)
	assert.Equal(t, Duration(time.Second), o.LoginDelay)
	assert.Equal(t, Duration(2*time.Hour), o.KVRetention)
	assert.Equal(t, "debug", o.LogLevel)
}

func TestParseArgs_Invalid(t *testing.T) {
	clearEnv(t)
	badJSON := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"login_delay": "soon"}`), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown persistence", args: []string{"-c", "", "-p", "session"}},
		{name: "unknown backend", args: []string{"-c", "", "-s", "sqlite"}},
		{name: "postgres without dsn", args: []string{"-c", "", "-s", "postgres"}},
		{name: "negative delay", args: []string{"-c", "", "-delay", "-1s"}},
		{name: "bad delay", args: []string{"-c", "", "-delay", "soon"}},
		{name: "negative retention", args: []string{"-c", "", "-retention", "-1h"}},
		{name: "bad config file", args: []string{"-c", badJSON}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, Duration(90*time.Second), d)

	require.NoError(t, d.UnmarshalJSON([]byte(`1000`)))
	assert.Equal(t, Duration(1000), d)

	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
}
