package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// StorageConfig selects and configures a storage backend.
type StorageConfig struct {
	Type string `json:"type" mapstructure:"type"` // "gorm" or "memory"
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.jwtSecret", "")
	viper.SetDefault("server.tokenTTLMinutes", 720)

	viper.SetDefault("map.extentMeters", 13000)
	viper.SetDefault("map.imageWidth", 4096)
	viper.SetDefault("map.imageHeight", 4096)
	viper.SetDefault("map.anchorLongitude", 0.0)
	viper.SetDefault("map.anchorLatitude", 0.0)

	viper.SetDefault("storage.type", "gorm")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tacmap")
	viper.SetDefault("db.sqlitePath", "./tacmap.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tacmap-metrics")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.intervalSeconds", 30)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("tacmap.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// Storage builds the storage selection from the loaded config.
func Storage() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
	}
}
