package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("FRONTEND_URL", "https://shop.example/")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")

	cfg := Load()

	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "https://shop.example", cfg.FrontendURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("REFRESH_TOKEN_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, []byte("s3cret"), cfg.JWTSecret)
	assert.Equal(t, 9001, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
}

func TestRequire(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reqs    []Requirement
		wantErr string
	}{
		{name: "all present", reqs: []Requirement{Need("A", "x"), NeedBytes("JWT_SECRET", []byte("k"))}},
		{name: "missing secret", reqs: []Requirement{Need("A", "x"), NeedBytes("JWT_SECRET", nil)}, wantErr: "JWT_SECRET"},
		{name: "blank values", reqs: []Requirement{Need("A", " "), Need("B", "")}, wantErr: "A, B"},
		{name: "no user resolution", reqs: NeedUserResolution(Config{}), wantErr: "AUTH_URL, INTERNAL_TOKEN"},
		{name: "user resolution", reqs: NeedUserResolution(Config{AuthHTTPURL: "http://auth", InternalToken: "t"})},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Require(tt.reqs...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("FLAG_ON", "true")
	t.Setenv("FLAG_BAD", "sometimes")
	t.Setenv("FLAG_EMPTY", "")

	assert.True(t, EnvBoolDefault("FLAG_ON", false))
	assert.True(t, EnvBoolDefault("FLAG_BAD", true))
	assert.False(t, EnvBoolDefault("FLAG_EMPTY", false))
}
