package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverYAML   = "yaml"
	StoreDriverMySQL  = "mysql"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type StoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"oneof=memory yaml mysql sqlite"`
	YAMLDirectory string `mapstructure:"yaml_directory" validate:"required_if=Driver yaml"`
}

// IsSQL reports whether the store is backed by a database connection.
func (c StoreConfig) IsSQL() bool {
	return c.Driver == StoreDriverMySQL || c.Driver == StoreDriverSQLite
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port" validate:"min=0,max=65535"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	SQLitePath      string            `mapstructure:"sqlite_path" validate:"omitempty,creatable"`
}

// WorkflowConfig controls how a grading event is persisted.
type WorkflowConfig struct {
	UpsertAttempts  uint `mapstructure:"upsert_attempts" validate:"min=1,max=10"`
	UpsertBackoffMs int  `mapstructure:"upsert_backoff_ms" validate:"min=0"`
}

// UpsertBackoff is the wait before the first retry of a failed write.
func (c WorkflowConfig) UpsertBackoff() time.Duration {
	return time.Duration(c.UpsertBackoffMs) * time.Millisecond
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/recall")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.driver", StoreDriverYAML)
	v.SetDefault("store.yaml_directory", filepath.Join("data", "reviews"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "recall")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.sqlite_path", "recall.db")
	v.SetDefault("workflow.upsert_attempts", 3)
	v.SetDefault("workflow.upsert_backoff_ms", 100)

	envs := map[string]string{
		"database.password": "RECALL_DB_PASSWORD",
		"store.driver":      "RECALL_STORE_DRIVER",
		"server.port":       "RECALL_SERVER_PORT",
	}
	for key, env := range envs {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
