package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/job-portal/internal/config"
)

// EndpointConfig limits one endpoint. Paths ending in "/" match by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	// Burst defaults to Limit.
	Burst int
}

// Config holds rate limiting settings.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig is used when no configuration is supplied.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// FromConfig builds limiter settings from the loaded runtime configuration.
func FromConfig(c config.RateLimitConfig) *Config {
	return &Config{
		Enabled:         c.Enabled,
		DefaultLimit:    c.DefaultLimit,
		DefaultWindow:   c.DefaultWindow,
		CleanupInterval: c.CleanupInterval,
		Whitelist:       parseIPList(c.Whitelist),
		Blacklist:       parseIPList(c.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint overrides.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// credential endpoints
		{Path: "/auth/login", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/auth/register/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},

		// writes
		{Path: "/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/applications/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/applications/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/preferences", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// resolve returns the endpoint limit for a request, or a final verdict when
// the request bypasses counting.
func (c *Config) resolve(clientID, path, method string) (ep EndpointConfig, verdict, decided bool) {
	switch {
	case !c.Enabled, c.Whitelist[clientID]:
		return EndpointConfig{}, true, true
	case c.Blacklist[clientID]:
		return EndpointConfig{}, false, true
	}
	match := MatchEndpoint(path, method, c.EndpointConfigs)
	if match == nil {
		match = &EndpointConfig{Limit: c.DefaultLimit, Window: c.DefaultWindow, Burst: c.DefaultLimit}
	}
	if match.Limit <= 0 || match.Window <= 0 {
		return EndpointConfig{}, true, true
	}
	return *match, false, false
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
