package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/viper"
)

// WorkerConfig is the process-level configuration for the pipeline worker.
type WorkerConfig struct {
	DB           DBConfig
	PollInterval time.Duration
	StuckTimeout time.Duration
	TempPath     string
	OutputPath   string
	ContentPath  string
	Bind         string
	Debug        bool
	Upload       S3Config
}

type DBConfig struct {
	// Path is the sqlite database file. DSN switches to postgres when set.
	Path string
	DSN  string
}

type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	Key          string
	Secret       string
	MaxSize      string
	CreateBucket bool
}

// MaxSizeBytes parses the configured upload size cap, 0 meaning no cap.
func (c S3Config) MaxSizeBytes() (uint64, error) {
	if c.MaxSize == "" {
		return 0, nil
	}
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(c.MaxSize)); err != nil {
		return 0, fmt.Errorf("invalid upload max_size: %w", err)
	}
	return v.Bytes(), nil
}

func ProjectRoot() (string, error) {
	ex, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(ex), nil
}

// Read loads and decodes the named config file from the binary's directory
// or the current directory.
func Read(name string, cfg any) error {
	v := viper.New()
	v.SetConfigName(name)

	pp, err := ProjectRoot()
	if err != nil {
		return err
	}
	v.AddConfigPath(pp)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode into struct: %w", err)
	}

	return nil
}

// ReadWorkerConfig loads worker.yaml and fills in defaults.
func ReadWorkerConfig() (*WorkerConfig, error) {
	cfg := &WorkerConfig{}
	if err := Read("worker", cfg); err != nil {
		return nil, err
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.StuckTimeout == 0 {
		cfg.StuckTimeout = time.Hour
	}
	if cfg.TempPath == "" {
		cfg.TempPath = "temp"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "output"
	}
	if cfg.ContentPath == "" {
		cfg.ContentPath = "content"
	}
	if cfg.Bind == "" {
		cfg.Bind = ":8080"
	}
	return cfg, nil
}
