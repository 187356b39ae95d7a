package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_USER_ID", "u1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "u1", cfg.Auth.UserID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FirestoreDriverRequiresProjectAndBucket(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "firestore")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("GCS_BUCKET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "project_id")

	t.Setenv("GCP_PROJECT_ID", "medicare-dev")
	_, err = Load()
	assert.ErrorContains(t, err, "bucket")

	t.Setenv("GCS_BUCKET", "medicare-dev-documents")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "medicare-dev", cfg.Store.ProjectID)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "dynamo"}}
	assert.ErrorContains(t, cfg.Validate(), "unknown driver")
}
