package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Reconciliation
	SchedulerEnabled bool          // false => no run ever executes
	ScheduleCron     string        // 5-field cron expression (default: daily 09:00)
	ScheduleTZ       string        // IANA timezone for the cron schedule
	LookaheadDays    int           // expiry window queried per run (default: 30)
	SeedFile         string        // optional secrets.yaml to import (empty = disabled)
	SeedInterval     time.Duration // interval to re-import the seed file

	// Notification channels
	NotifyTimeout     time.Duration // bound for every outbound send
	WebhookEnabled    bool          // master switch for all webhook channels
	SlackWebhookURL   string        // empty = channel inactive
	DiscordWebhookURL string        // empty = channel inactive
	GenericWebhookURL string        // empty = channel inactive

	// Email (SMTP)
	EmailEnabled bool
	SMTPHost     string // empty = channel inactive
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("EXPIRYGUARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("EXPIRYGUARD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("EXPIRYGUARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("EXPIRYGUARD_PRETTY_LOG", false),

		// Reconciliation
		SchedulerEnabled: mustBool("EXPIRYGUARD_SCHEDULER_ENABLED", true),
		ScheduleCron:     getenv("EXPIRYGUARD_SCHEDULE_CRON", "0 9 * * *"),
		ScheduleTZ:       getenv("EXPIRYGUARD_SCHEDULE_TZ", "UTC"),
		LookaheadDays:    getenvInt("EXPIRYGUARD_LOOKAHEAD_DAYS", 30),
		SeedFile:         getenv("EXPIRYGUARD_SEED_FILE", ""),
		SeedInterval:     mustDuration("EXPIRYGUARD_SEED_INTERVAL", 24*time.Hour),

		// Notification channels
		NotifyTimeout:     mustDuration("EXPIRYGUARD_NOTIFY_TIMEOUT", 10*time.Second),
		WebhookEnabled:    mustBool("EXPIRYGUARD_WEBHOOK_ENABLED", true),
		SlackWebhookURL:   getenv("EXPIRYGUARD_SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: getenv("EXPIRYGUARD_DISCORD_WEBHOOK_URL", ""),
		GenericWebhookURL: getenv("EXPIRYGUARD_GENERIC_WEBHOOK_URL", ""),

		// Email
		EmailEnabled: mustBool("EXPIRYGUARD_EMAIL_ENABLED", true),
		SMTPHost:     getenv("EXPIRYGUARD_SMTP_HOST", ""),
		SMTPPort:     getenvInt("EXPIRYGUARD_SMTP_PORT", 587),
		SMTPUser:     getenv("EXPIRYGUARD_SMTP_USER", ""),
		SMTPPassword: getenv("EXPIRYGUARD_SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("EXPIRYGUARD_SMTP_FROM", "expiryguard@localhost"),

		// Redis settings
		RedisAddr:           requireEnv("EXPIRYGUARD_REDIS_ADDR"),
		RedisUser:           getenv("EXPIRYGUARD_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("EXPIRYGUARD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("EXPIRYGUARD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("EXPIRYGUARD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("EXPIRYGUARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("EXPIRYGUARD_TRUST_PROXY", false),
	}

	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 30
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.SMTPPassword = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
