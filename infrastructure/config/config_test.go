package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memorylane", cfg.DynamoDBTable)
	assert.Equal(t, "GSI1", cfg.IndexName)
	assert.Equal(t, "GSI2", cfg.GSI2IndexName)
	assert.Equal(t, "memorylane-events", cfg.EventBusName)
	assert.Equal(t, "memorylane-connections", cfg.ConnectionsTable)
	assert.Equal(t, "memorylane-backend", cfg.JWTIssuer)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("TABLE_NAME", "custom-table")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENABLE_METRICS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, "custom-table", cfg.DynamoDBTable)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_TableNameFallback(t *testing.T) {
	// DYNAMODB_TABLE is honored when the newer TABLE_NAME is absent
	t.Setenv("DYNAMODB_TABLE", "legacy-table")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-table", cfg.DynamoDBTable)

	t.Setenv("TABLE_NAME", "new-table")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "new-table", cfg.DynamoDBTable)
}

func TestLoadConfig_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "1", want: true},
		{value: "yes", want: true},
		{value: "false", want: false},
		{value: "0", want: false},
		{value: "anything-else", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_FLAG", tt.value)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL_FLAG", !tt.want))
		})
	}

	assert.True(t, getEnvBool("TEST_BOOL_FLAG_UNSET", true))
	assert.False(t, getEnvBool("TEST_BOOL_FLAG_UNSET", false))
}
