package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort     int
	ProxyURL    string
	QiitaToken  string
	SourcesPath string
}

func Load() (*Config, error) {
	port := getEnv("APP_PORT", "8080")
	appPort, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT %q: %w", port, err)
	}

	return &Config{
		AppPort:     appPort,
		ProxyURL:    getEnv("PROXY_URL", ""),
		QiitaToken:  getEnv("QIITA_TOKEN", ""),
		SourcesPath: getEnv("SOURCES_PATH", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Sources is the optional YAML file listing configurable sources and the
// politeness delay bounds shared by the scraping providers.
type Sources struct {
	Feeds    []string `yaml:"feeds"`
	MinDelay string   `yaml:"min_delay"`
	MaxDelay string   `yaml:"max_delay"`
}

func LoadSources(path string) (*Sources, error) {
	s := &Sources{MinDelay: "500ms", MaxDelay: "2s"}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	return s, nil
}

// DelayBounds parses the configured politeness interval.
func (s *Sources) DelayBounds() (time.Duration, time.Duration, error) {
	min, err := time.ParseDuration(s.MinDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid min_delay %q: %w", s.MinDelay, err)
	}
	max, err := time.ParseDuration(s.MaxDelay)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid max_delay %q: %w", s.MaxDelay, err)
	}
	if max < min {
		max = min
	}
	return min, max, nil
}
