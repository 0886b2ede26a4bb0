package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// SettingsFile persists the developer-editable part of the configuration
// (display fields and the store block) to the YAML file Load reads.
// Keys already present in the file that it does not manage are kept.
type SettingsFile struct {
	path string
}

// NewSettingsFile returns a SettingsFile writing to path. The extension
// selects the encoding, so path should end in .yaml or .yml.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// Save writes display and store to the settings file.
func (f *SettingsFile) Save(display DisplayConfig, store StoreConfig) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if _, err := os.Stat(f.path); err == nil {
		v.SetConfigFile(f.path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config.SettingsFile.Save: read %s: %w", f.path, err)
		}
	}

	v.Set("display.name", display.Name)
	v.Set("display.branch", display.Branch)
	v.Set("store.driver", store.Driver)
	v.Set("store.collection", store.Collection)
	v.Set("store.postgres.url", store.Postgres.URL)
	v.Set("store.mongo.uri", store.Mongo.URI)
	v.Set("store.mongo.database", store.Mongo.Database)
	v.Set("store.firestore.project_id", store.Firestore.ProjectID)
	v.Set("store.firestore.credentials_file", store.Firestore.CredentialsFile)
	v.Set("store.redis.addr", store.Redis.Addr)
	v.Set("store.redis.password", store.Redis.Password)
	v.Set("store.redis.db", store.Redis.DB)

	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("config.SettingsFile.Save: write %s: %w", f.path, err)
	}
	return nil
}
