package main

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	Host   string `json:"host"`
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

const configPath = "chatterbox.json"

func readConfig() (*Config, error) {
	fp, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer closeConfig(fp)

	config := &Config{}
	if err := json.NewDecoder(fp).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

func createConfig() (*Config, error) {
	fp, err := os.Create(configPath)
	if err != nil {
		return nil, err
	}
	defer closeConfig(fp)

	config := &Config{Host: "http://localhost:8080"}
	if err := json.NewEncoder(fp).Encode(config); err != nil {
		return nil, err
	}
	return config, nil
}

func saveConfig(config *Config) error {
	fp, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer closeConfig(fp)

	return json.NewEncoder(fp).Encode(config)
}

func closeConfig(fp *os.File) {
	if err := fp.Close(); err != nil {
		log.Println("unable to close config file")
	}
}
