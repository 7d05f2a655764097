package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultClientOrigin = "http://localhost:5173"

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		SecretKey    string   `yaml:"secret_key"`
		BcryptCost   int      `yaml:"bcrypt_cost"`
		AdminEmails  []string `yaml:"admin_emails"`
		CookieSecure bool     `yaml:"cookie_secure"`
	} `yaml:"auth"`

	ClientOrigins []string `yaml:"client_origins"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty trusts none, so the client IP is the peer address.
	TrustedProxies []string `yaml:"trusted_proxies"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`

	RateLimit struct {
		Max    int           `yaml:"max"`
		Window time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`

	Quiz struct {
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		SingleAttempt    bool          `yaml:"single_attempt"`
		StrictReferences bool          `yaml:"strict_references"`
	} `yaml:"quiz"`

	DebugErrors bool `yaml:"debug_errors"`
}

// Default returns the configuration used when neither a file nor the
// environment sets a value.
func Default() *Config {
	cfg := &Config{Port: "8080"}
	cfg.Auth.BcryptCost = bcrypt.DefaultCost
	cfg.Auth.CookieSecure = true
	cfg.ClientOrigins = []string{defaultClientOrigin}
	cfg.MaxBodyBytes = 1 << 20
	cfg.RateLimit.Max = 100
	cfg.RateLimit.Window = 15 * time.Minute
	cfg.Quiz.CacheTTL = 10 * time.Minute
	return cfg
}

// Load builds the configuration from the optional YAML file at path, then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config file %s not found, using environment only", path)
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Auth.SecretKey = getEnv("SECRET_KEY", c.Auth.SecretKey)

	if origins := splitList(os.Getenv("CLIENT_URL")); len(origins) > 0 {
		c.ClientOrigins = appendUnique(c.ClientOrigins, origins...)
	}
	if admins := splitList(os.Getenv("ADMIN_EMAILS")); len(admins) > 0 {
		c.Auth.AdminEmails = admins
	}
	if proxies := splitList(os.Getenv("TRUSTED_PROXIES")); len(proxies) > 0 {
		c.TrustedProxies = proxies
	}

	var err error
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Auth.BcryptCost, err = getEnvInt("BCRYPT_COST", c.Auth.BcryptCost); err != nil {
		return err
	}
	if c.RateLimit.Max, err = getEnvInt("RATE_LIMIT_MAX", c.RateLimit.Max); err != nil {
		return err
	}
	if c.RateLimit.Window, err = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window); err != nil {
		return err
	}
	if c.Quiz.CacheTTL, err = getEnvDuration("QUIZ_CACHE_TTL", c.Quiz.CacheTTL); err != nil {
		return err
	}
	if c.Quiz.SingleAttempt, err = getEnvBool("SINGLE_ATTEMPT", c.Quiz.SingleAttempt); err != nil {
		return err
	}
	if c.Quiz.StrictReferences, err = getEnvBool("STRICT_REFERENCES", c.Quiz.StrictReferences); err != nil {
		return err
	}
	if c.Auth.CookieSecure, err = getEnvBool("COOKIE_SECURE", c.Auth.CookieSecure); err != nil {
		return err
	}
	if c.DebugErrors, err = getEnvBool("DEBUG_ERRORS", c.DebugErrors); err != nil {
		return err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes))
	if err != nil {
		return err
	}
	c.MaxBodyBytes = int64(maxBody)
	return nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid rate limit %d per %s", c.RateLimit.Max, c.RateLimit.Window)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid MAX_BODY_BYTES %d", c.MaxBodyBytes)
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("TRUSTED_PROXIES: invalid address %q", proxy)
		}
	}
	return nil
}

func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}
	return net.ParseIP(proxy) != nil
}

// IsAdminEmail reports whether email is listed as an administrator.
func (c *Config) IsAdminEmail(email string) bool {
	for _, admin := range c.Auth.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// HashCost clamps the configured bcrypt cost to a usable range.
func (c *Config) HashCost() int {
	switch {
	case c.Auth.BcryptCost < bcrypt.MinCost:
		return bcrypt.MinCost
	case c.Auth.BcryptCost > 14:
		return 14
	}
	return c.Auth.BcryptCost
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
