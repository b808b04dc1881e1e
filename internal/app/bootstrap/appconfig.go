// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging level, environment). AppConfig is everything specific to
// StudyHub: the MongoDB connection, session cookies, and the Google
// OAuth client used for sign-in.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: studyhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Google OAuth configuration. Google is the only identity provider.
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for the OAuth callback (e.g., "https://studyhub.example.edu")
	BaseURL string
}
