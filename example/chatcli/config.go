package main

import (
	"encoding/json"
	"os"
)

type Config struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`

	// APIBaseURL is the marketplace backend serving inventory, account, and
	// order endpoints.
	APIBaseURL string `json:"api_base_url"`
	UserAuth   string `json:"user_auth"`

	// Cache selects the session backend: "memory", "sqlite", or "redis".
	Cache      string `json:"cache"`
	SQLitePath string `json:"sqlite_path"`
	RedisAddr  string `json:"redis_addr"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	err = json.Unmarshal(file, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, nil
}
