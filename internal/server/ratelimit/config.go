package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultLimit is the per-minute allowance for endpoints without their own tier.
const DefaultLimit = 600

// Tier names
const (
	TierDefault   = "default"
	TierUnlimited = "unlimited"
	TierAI        = "ai"
	TierPayment   = "payment"
	TierEdit      = "edit"
)

// EndpointConfig is the limit for a group of endpoints. Requests matching
// configs with the same Tier share one bucket per client.
type EndpointConfig struct {
	Tier   string
	Path   string // exact path, or a prefix when it ends in "/"
	Method string // empty matches any method
	Limit  int    // requests per Window; 0 is unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	aiLimit := getEnvInt("RATE_LIMIT_AI_LIMIT", 30)
	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", DefaultLimit),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: EndpointConfigs(aiLimit),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers with the default AI allowance.
func DefaultEndpointConfigs() []EndpointConfig {
	return EndpointConfigs(30)
}

// EndpointConfigs returns the endpoint tiers. AI calls and payment submissions
// reach paid or external services and get the strictest limits.
func EndpointConfigs(aiPerHour int) []EndpointConfig {
	return []EndpointConfig{
		{Tier: TierUnlimited, Path: "/health", Method: "GET"},
		// SSE clients hold one connection; reconnects are cheap
		{Tier: TierUnlimited, Path: "/payment/events", Method: "GET"},

		{Tier: TierAI, Path: "/ai/", Method: "POST", Limit: aiPerHour, Window: time.Hour, Burst: 5},
		{Tier: TierAI, Path: "/job-description/fetch", Method: "POST", Limit: aiPerHour, Window: time.Hour, Burst: 5},
		{Tier: TierPayment, Path: "/payment/submit", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},

		{Tier: TierEdit, Path: "/document", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Tier: TierEdit, Path: "/document/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Tier: TierEdit, Path: "/document/", Method: "DELETE", Limit: 300, Window: time.Minute, Burst: 30},
		{Tier: TierEdit, Path: "/drag/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
