package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rpattn/standards/internal/db"
)

// Config is the full service configuration.
type Config struct {
	Database   db.Config
	HTTP       HTTPConfig
	NATS       NATSConfig
	Detection  DetectionConfig
	Enrichment EnrichmentConfig
	OpenAI     OpenAIConfig
	LogMode    string
	// ValidateAssessments turns on assessment refreshes after each edit.
	ValidateAssessments bool
	PublishDir          string
	// FromFile is false when no config.yaml was found.
	FromFile bool
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
}

// NATSConfig is optional. An empty URL disables the event stream and the
// detection client.
type NATSConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
}

type DetectionConfig struct {
	SubjectPrefix string
	Timeout       time.Duration
}

type EnrichmentConfig struct {
	Workers    int
	Buffer     int
	JobTimeout time.Duration
}

// OpenAIConfig is optional. Without an API key versions are not summarized.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func defaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.stream", "STANDARDS")
	v.SetDefault("nats.subject_prefix", "standards.events")

	v.SetDefault("detection.subject_prefix", "detection")
	v.SetDefault("detection.timeout", 5*time.Second)

	v.SetDefault("enrichment.workers", 2)
	v.SetDefault("enrichment.buffer", 64)
	v.SetDefault("enrichment.job_timeout", 2*time.Minute)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("log.mode", "development")
	v.SetDefault("assessments.validate", false)
	v.SetDefault("publish.dir", ".")
}

// Load reads config.yaml from configPath when present and applies
// STANDARDS_ environment overrides, e.g. STANDARDS_DATABASE_HOST.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix("STANDARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	cfg := Config{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		cfg.FromFile = true
	}

	cfg.Database = db.Config{
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
		MaxConns: v.GetInt32("database.max_conns"),
	}
	cfg.HTTP = HTTPConfig{
		Addr:        v.GetString("http.addr"),
		CORSOrigins: splitList(v.GetStringSlice("http.cors_origins")),
	}
	cfg.NATS = NATSConfig{
		URL:           v.GetString("nats.url"),
		Stream:        v.GetString("nats.stream"),
		SubjectPrefix: v.GetString("nats.subject_prefix"),
	}
	cfg.Detection = DetectionConfig{
		SubjectPrefix: v.GetString("detection.subject_prefix"),
		Timeout:       v.GetDuration("detection.timeout"),
	}
	cfg.Enrichment = EnrichmentConfig{
		Workers:    v.GetInt("enrichment.workers"),
		Buffer:     v.GetInt("enrichment.buffer"),
		JobTimeout: v.GetDuration("enrichment.job_timeout"),
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:  v.GetString("openai.api_key"),
		Model:   v.GetString("openai.model"),
		BaseURL: v.GetString("openai.base_url"),
	}
	cfg.LogMode = v.GetString("log.mode")
	cfg.ValidateAssessments = v.GetBool("assessments.validate")
	cfg.PublishDir = v.GetString("publish.dir")

	if cfg.Enrichment.Workers < 1 {
		return Config{}, fmt.Errorf("enrichment.workers must be at least 1, got %d", cfg.Enrichment.Workers)
	}
	return cfg, nil
}

// env values arrive as one comma separated string
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
