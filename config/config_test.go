package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		JWTSecret:          "secret",
		EncryptionKey:      "0123456789abcdef0123456789abcdef",
		StorageDriver:      "memory",
		EmailHashSalt:      "salt",
		BackendTimeoutSecs: 10,
		WizardLockSeconds:  30,
	}
}

func withConfig(t *testing.T, c Config) {
	t.Helper()
	saved := Cfg
	Cfg = c
	t.Cleanup(func() { Cfg = saved })
}

func TestValidateAcceptsDefaults(t *testing.T) {
	withConfig(t, validConfig())
	require.NoError(t, Validate())
}

func TestValidateWizardLockMustCoverBackendTimeout(t *testing.T) {
	c := validConfig()
	c.BackendTimeoutSecs = 60
	c.WizardLockSeconds = 30
	withConfig(t, c)
	assert.ErrorContains(t, Validate(), "WIZARD_LOCK_SECONDS")

	c.WizardLockSeconds = 60 + WizardLockMarginSecs - 1
	withConfig(t, c)
	assert.Error(t, Validate())

	c.WizardLockSeconds = 60 + WizardLockMarginSecs
	withConfig(t, c)
	assert.NoError(t, Validate())
}

func TestValidateRequiredSecrets(t *testing.T) {
	c := validConfig()
	c.JWTSecret = ""
	withConfig(t, c)
	assert.ErrorContains(t, Validate(), "JWT_SECRET")

	c = validConfig()
	c.EncryptionKey = "short"
	withConfig(t, c)
	assert.ErrorContains(t, Validate(), "ENCRYPTION_KEY")

	c = validConfig()
	c.StorageDriver = "sqlite"
	withConfig(t, c)
	assert.ErrorContains(t, Validate(), "STORAGE_DRIVER")
}
