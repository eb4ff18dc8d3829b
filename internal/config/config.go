// Package config contains the configuration handling of the storefront.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the storefront runtime parameters.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	StorePath   string `env:"STORE_PATH"`
	DeliveryFee string `env:"DELIVERY_FEE"`
}

// Parse reads the configuration from command-line flags and environment
// variables; the environment wins when both are set.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envStorePath := cfg.StorePath
	envDeliveryFee := cfg.DeliveryFee

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.StorePath, "s", "sweetcupcakes.db", "path of the durable store file")
	flag.StringVar(&cfg.DeliveryFee, "f", "8.00", "flat delivery fee")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envStorePath != "" {
		cfg.StorePath = envStorePath
	}
	if envDeliveryFee != "" {
		cfg.DeliveryFee = envDeliveryFee
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
