package config

import "fmt"

// Config is the root application configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Auth  AuthConfig  `yaml:"auth"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects and parameterizes the record/blob store driver.
type StoreConfig struct {
	// Driver is "firestore" (production) or "memory" (local development).
	Driver    string `yaml:"driver"     env:"STORE_DRIVER"   env-default:"firestore"`
	ProjectID string `yaml:"project_id" env:"GCP_PROJECT_ID"`
	Bucket    string `yaml:"bucket"     env:"GCS_BUCKET"`
}

// AuthConfig identifies the signed-in user. Exactly one of UserID or IDToken
// is normally set; with neither, the agent starts but syncs nothing.
type AuthConfig struct {
	UserID  string `yaml:"user_id"  env:"AUTH_USER_ID"`
	IDToken string `yaml:"id_token" env:"AUTH_ID_TOKEN"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Validate rejects configurations the wiring cannot act on.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "firestore":
		if c.Store.ProjectID == "" {
			return fmt.Errorf("store: project_id is required for the firestore driver")
		}
		if c.Store.Bucket == "" {
			return fmt.Errorf("store: bucket is required for the firestore driver")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	return nil
}
