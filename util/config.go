package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	AuthorityClient = "client"
	AuthorityServer = "server"
)

type Config struct {
	Port           string   `mapstructure:"PORT" validate:"required,number"`
	Host           string   `mapstructure:"HOST" validate:"required,ip"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS" validate:"required,dive,required"`
	Authority      string   `mapstructure:"AUTHORITY" validate:"required,oneof=client server"`
	TickRate       int      `mapstructure:"TICK_RATE" validate:"min=1,max=240"`
	EgressBuffer   int      `mapstructure:"EGRESS_BUFFER" validate:"min=1,max=4096"`
}

func (c *Config) Address() string {
	return fmt.Sprintf("%v:%v", c.Host, c.Port)
}

// ServerAuthoritative reports whether the server runs the simulation for
// every room instead of only relaying.
func (c *Config) ServerAuthoritative() bool {
	return c.Authority == AuthorityServer
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	tickRate, err := intFromEnv("TICK_RATE", 60)
	if err != nil {
		return nil, err
	}

	egressBuffer, err := intFromEnv("EGRESS_BUFFER", 64)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Port:           stringFromEnv("PORT", "5000"),
		Host:           stringFromEnv("HOST", "0.0.0.0"),
		AllowedOrigins: splitList(stringFromEnv("ALLOWED_ORIGINS", "*")),
		Authority:      strings.ToLower(stringFromEnv("AUTHORITY", AuthorityClient)),
		TickRate:       tickRate,
		EgressBuffer:   egressBuffer,
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}

func stringFromEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%v must be an integer: %w", key, err)
	}

	return n, nil
}

func splitList(s string) []string {
	return lo.FilterMap(strings.Split(s, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
