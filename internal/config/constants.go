package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 90 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 1 * time.Hour

// Perspective content bounds
const (
	PerspectiveMinLength = 10
	PerspectiveMaxLength = 5000
)

// Couple invitation codes
const (
	InvitationExpiry = 7 * 24 * time.Hour
)

// Rate limits. Login and registration are per-IP, analysis is per-user
// because it spends real provider money.
const (
	LoginRateLimit     = 5
	LoginRateWindow    = time.Minute
	RegisterRateLimit  = 3
	RegisterRateWindow = time.Hour
	AnalyzeRateLimit   = 10
	AnalyzeRateWindow  = time.Hour
)
