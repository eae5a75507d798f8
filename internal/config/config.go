package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tombowditch/geojsonio/geojsonio"
)

const (
	// Server addresses
	TCPAddr  = "0.0.0.0:9999"
	HTTPAddr = "0.0.0.0:3334"

	// Redis defaults
	RedisURI      = "localhost:6379"
	RedisPassword = ""
	RedisDB       = 0

	// Payload limits
	MaxPayloadSize = geojsonio.RemoteLimit

	// Rate limits per client IP
	GistCreateInterval = 5 * time.Second
	TCPInterval        = 5 * time.Second
	TCPBurst           = 5

	// TCP read deadlines
	TCPFirstReadTimeout = 5 * time.Second
	TCPReadTimeout      = 2 * time.Second

	// GitHub API request timeout
	GistTimeout = 30 * time.Second
)

// Config holds settings read from the environment.
// A .env file is auto-loaded by cmd/geojsonio via github.com/joho/godotenv/autoload.
type Config struct {
	BaseDomain    string
	GitHubToken   string
	GitHubAPIURL  string
	HTTPAddr      string
	TCPAddr       string
	RedisURI      string
	RedisPassword string
	TrustProxy    bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		BaseDomain:    getEnv("GEOJSONIO_DOMAIN", geojsonio.DefaultBaseDomain),
		GitHubToken:   getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:  getEnv("GITHUB_API_URL", ""),
		HTTPAddr:      getEnv("HTTP_ADDR", HTTPAddr),
		TCPAddr:       getEnv("TCP_ADDR", TCPAddr),
		RedisURI:      getEnv("REDIS_URI", RedisURI),
		RedisPassword: getEnv("REDIS_PASSWORD", RedisPassword),
		TrustProxy:    getEnvBool("TRUST_PROXY", false),
	}
}

// GistEnabled reports whether a gist store can be configured. GitHub no longer
// accepts anonymous gists, so a token is required.
func (c *Config) GistEnabled() bool {
	return c.GitHubToken != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
