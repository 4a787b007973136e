package config

import (
	"os"
	"strconv"
	"strings"

	"bidpilot/internal/searchad"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database (optional; visit tracking and bid history are skipped when empty)
	DatabaseURL string

	// Upstream ad platform credentials for server-owned background jobs.
	// API requests carry their own credentials in headers instead.
	APIKey     string
	SecretKey  string
	CustomerID string

	// Audit
	AuditDir string // Directory for daily bid-change CSV logs

	// Background bidding
	AutoBidEnabled  bool   // Run the periodic bid adjuster
	AutoBidTargets  string // Comma-separated campaign or ad group ids
	AutoBidInterval string // Go duration, e.g. "30m"

	// Email (optional; bid pass reports are mailed when configured)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "tls" (465) or "starttls" (587)
	ReportEmails string // Comma-separated recipients for bid pass reports

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Site Branding
	SiteTitle  string // env: SITE_TITLE, default: "BidPilot"
	SiteFooter string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		APIKey:     getEnv("NAVER_API_KEY", ""),
		SecretKey:  getEnv("NAVER_SECRET_KEY", ""),
		CustomerID: getEnv("NAVER_CUSTOMER_ID", ""),

		AuditDir: getEnv("AUDIT_DIR", "logs"),

		AutoBidEnabled:  getEnv("AUTOBID_ENABLED", "") != "",
		AutoBidTargets:  getEnv("AUTOBID_TARGETS", ""),
		AutoBidInterval: getEnv("AUTOBID_INTERVAL", "30m"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
		ReportEmails: getEnv("REPORT_EMAILS", ""),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		SiteTitle:  getEnv("SITE_TITLE", "BidPilot"),
		SiteFooter: getEnv("SITE_FOOTER", "BidPilot - keyword bid automation"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsEmailEnabled reports whether SMTP is configured well enough to send.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// ReportRecipients returns the parsed bid report recipient list.
func (c *Config) ReportRecipients() []string {
	if c.ReportEmails == "" {
		return nil
	}
	var out []string
	for _, addr := range strings.Split(c.ReportEmails, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Credentials returns the server-owned upstream credentials.
func (c *Config) Credentials() searchad.Credentials {
	return searchad.Credentials{
		APIKey:     c.APIKey,
		SecretKey:  c.SecretKey,
		CustomerID: c.CustomerID,
	}
}

// HasCredentials reports whether background jobs can call the upstream.
func (c *Config) HasCredentials() bool {
	return c.Credentials().Valid()
}
