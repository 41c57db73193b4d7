package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Edelbertschen/taskfuchs-sub005/server/auth"
)

func setProfileFlags(t *testing.T, values map[string]any) {
	t.Helper()
	for key, value := range values {
		previous := viper.Get(key)
		viper.Set(key, value)
		t.Cleanup(func() { viper.Set(key, previous) })
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	setProfileFlags(t, map[string]any{
		"mode":   "dev",
		"driver": "sqlite",
		"data":   dir,
		"port":   9090,
	})

	instanceProfile, err := loadProfile()
	require.NoError(t, err)
	assert.Equal(t, "dev", instanceProfile.Mode)
	assert.Equal(t, 9090, instanceProfile.Port)
	assert.Contains(t, instanceProfile.DSN, "taskfuchs_dev.db")
	assert.NotEmpty(t, instanceProfile.Version)
}

func TestLoadProfileRejectsUnknownDriver(t *testing.T) {
	setProfileFlags(t, map[string]any{
		"mode":   "dev",
		"driver": "mysql",
		"data":   t.TempDir(),
	})

	_, err := loadProfile()
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	setProfileFlags(t, map[string]any{
		"mode":   "dev",
		"driver": "sqlite",
		"data":   t.TempDir(),
		"secret": "cli-secret",
	})

	var out bytes.Buffer
	tokenCmd.SetOut(&out)
	t.Cleanup(func() { tokenCmd.SetOut(nil) })
	require.NoError(t, tokenCmd.RunE(tokenCmd, []string{"user-7"}))

	claims, err := auth.ParseAccessToken(strings.TrimSpace(out.String()), []byte("cli-secret"))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID)
	assert.NotNil(t, claims.ExpiresAt)
}
