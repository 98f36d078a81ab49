package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	Database  DatabaseConfig   `json:"database"`
	LogConfig logger.LogConfig `json:"log_config"`
	CORS      []string         `json:"cors"`
	AI        AIConfig         `json:"ai"`
	Retrieval RetrievalConfig  `json:"retrieval"`
	FileStore FileStoreConfig  `json:"file_store"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider      string                 `json:"provider"`
	Model         string                 `json:"model"`
	Data          map[string]interface{} `json:"data"`
	EmbedProvider string                 `json:"embed_provider"`
	EmbedModel    string                 `json:"embed_model"`
	EmbedData     map[string]interface{} `json:"embed_data"`
	Dimension     int                    `json:"dimension"`
	MaxInputChars int                    `json:"max_input_chars"`
	Timeout       int                    `json:"timeout"`
	CacheSize     int                    `json:"cache_size"`
	CacheTTLHours int                    `json:"cache_ttl_hours"`
}

type RetrievalConfig struct {
	TopK          int `json:"top_k"`
	MaxSources    int `json:"max_sources"`
	MaxHighlights int `json:"max_highlights"`
}

type FileStoreConfig struct {
	Type      string   `json:"type"`
	Dir       string   `json:"dir"`
	PublicURL string   `json:"public_url"`
	S3        S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	PublicURL string `json:"public_url"`
	UseSSL    bool   `json:"use_ssl"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.DBName == "" {
		return nil, fmt.Errorf("database.dsn or database.db_name is required")
	}
	if cfg.AI.Provider == "" || cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.provider and ai.model are required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedData == nil {
		cfg.AI.EmbedData = cfg.AI.Data
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.Dimension <= 0 {
		return nil, fmt.Errorf("ai.dimension is required")
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.AI.CacheSize <= 0 {
		cfg.AI.CacheSize = 10000
	}
	if cfg.AI.CacheTTLHours <= 0 {
		cfg.AI.CacheTTLHours = 2
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MaxSources <= 0 {
		cfg.Retrieval.MaxSources = 5
	}
	if cfg.Retrieval.MaxHighlights <= 0 {
		cfg.Retrieval.MaxHighlights = 3
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.FileStore.Type {
	case "local":
		if cfg.FileStore.Dir == "" {
			return nil, fmt.Errorf("file_store.dir is required for local store")
		}
	case "s3":
		if cfg.FileStore.S3.Endpoint == "" || cfg.FileStore.S3.Bucket == "" || cfg.FileStore.S3.SecretID == "" || cfg.FileStore.S3.SecretKey == "" {
			return nil, fmt.Errorf("file_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.FileStore.S3.Region == "" {
			cfg.FileStore.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("file_store.type must be local or s3")
	}
	return &cfg, nil
}
