// Package config resolves runtime settings from defaults, an optional YAML
// file, HABITI_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/scoring"
	"github.com/dukerupert/habiti/internal/tracker"
)

const envPrefix = "HABITI"

// Keys. Environment variables are the upper-cased key with the prefix, e.g.
// HABITI_S3_BUCKET.
const (
	KeyPort             = "port"
	KeyDBPath           = "db_path"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyScoring          = "scoring"
	KeyLevelDivisor     = "level_divisor"
	KeyMaxLookback      = "max_lookback"
	KeyAllowedOrigins   = "allowed_origins"
	KeyS3Endpoint       = "s3_endpoint"
	KeyS3Bucket         = "s3_bucket"
	KeyS3Region         = "s3_region"
	KeyS3AccessKey      = "s3_access_key"
	KeyS3SecretKey      = "s3_secret_key"
	KeyS3Prefix         = "s3_prefix"
	KeyBackupInterval   = "backup_interval"
	KeyBackupRetention  = "backup_retention_days"
	KeyBackupPassphrase = "backup_passphrase"
)

type Config struct {
	Port           string
	DBPath         string
	LogLevel       string
	LogFormat      string
	Tracker        tracker.Config
	AllowedOrigins []string
	Backup         backup.Config
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// New returns a viper instance with defaults and environment binding in
// place. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDBPath, "habiti.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyScoring, string(scoring.StrategyRecompute))
	v.SetDefault(KeyLevelDivisor, scoring.LevelDivisorTracker)
	v.SetDefault(KeyMaxLookback, scoring.DefaultMaxLookback)
	v.SetDefault(KeyAllowedOrigins, []string{})
	v.SetDefault(KeyS3Region, "us-east-1")
	v.SetDefault(KeyS3Prefix, "habiti")
	v.SetDefault(KeyBackupInterval, "24h")
	v.SetDefault(KeyBackupRetention, 30)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, if any, and decodes v into a Config.
// An empty path looks for habiti.yaml in the working directory; a missing
// default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("habiti")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	strategy, err := scoring.ParseStrategy(v.GetString(KeyScoring))
	if err != nil {
		return Config{}, err
	}

	interval, err := parseInterval(v.GetString(KeyBackupInterval))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:      strings.TrimPrefix(v.GetString(KeyPort), ":"),
		DBPath:    v.GetString(KeyDBPath),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
		Tracker: tracker.Config{
			Strategy:     strategy,
			LevelDivisor: v.GetInt(KeyLevelDivisor),
			MaxLookback:  v.GetInt(KeyMaxLookback),
		},
		AllowedOrigins: splitList(v.GetStringSlice(KeyAllowedOrigins)),
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  v.GetString(KeyS3Endpoint),
				Bucket:    v.GetString(KeyS3Bucket),
				Region:    v.GetString(KeyS3Region),
				AccessKey: v.GetString(KeyS3AccessKey),
				SecretKey: v.GetString(KeyS3SecretKey),
				Prefix:    v.GetString(KeyS3Prefix),
			},
			Passphrase:    v.GetString(KeyBackupPassphrase),
			Interval:      interval,
			RetentionDays: v.GetInt(KeyBackupRetention),
		},
	}

	if cfg.Port == "" {
		return Config{}, errors.New("port must not be empty")
	}
	if cfg.DBPath == "" {
		return Config{}, errors.New("db_path must not be empty")
	}
	if cfg.Tracker.LevelDivisor <= 0 {
		return Config{}, fmt.Errorf("level_divisor must be positive, got %d", cfg.Tracker.LevelDivisor)
	}
	if cfg.Tracker.MaxLookback <= 0 {
		return Config{}, fmt.Errorf("max_lookback must be positive, got %d", cfg.Tracker.MaxLookback)
	}
	if cfg.Backup.RetentionDays < 0 {
		return Config{}, fmt.Errorf("backup_retention_days must not be negative, got %d", cfg.Backup.RetentionDays)
	}
	return cfg, nil
}

// parseInterval accepts a Go duration; "0", "off" and "" disable the
// schedule.
func parseInterval(s string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "off":
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("backup_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("backup_interval must not be negative, got %s", d)
	}
	return d, nil
}

// splitList flattens comma-separated items. Environment values arrive as a
// single string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
