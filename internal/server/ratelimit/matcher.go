package ratelimit

import (
	"strings"
)

// MatchEndpoint resolves the rate limit tier for a request path and method.
// An exact path match always wins; a config path ending in "/" acts as a
// prefix, so "/api/download/" covers "/api/download/{id}". The health
// endpoint is never limited. Returns nil when no tier applies.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{} // zero limit means unlimited
	}

	var prefixMatch *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if prefixMatch == nil && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			prefixMatch = config
		}
	}

	return prefixMatch
}
