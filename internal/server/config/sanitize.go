package config

import "strings"

// Sanitize returns a copy of the config with secrets masked for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Receiver.AllowedHosts = append([]string(nil), cfg.Receiver.AllowedHosts...)
	sanitized.Server.CORS.AllowedOrigins = append([]string(nil), cfg.Server.CORS.AllowedOrigins...)

	if sanitized.Journal.Redis.Password != "" {
		sanitized.Journal.Redis.Password = maskSecret(sanitized.Journal.Redis.Password)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
