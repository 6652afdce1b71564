package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress   string
	DatabaseURI  string
	DatabaseName string

	JWTSecret     string
	AuthStrategy  string
	BcryptCost    int
	TokenTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	AdminEmails   []string

	PaymentGatewayURL string
	PaymentAPIKey     string
	PaymentTimeout    time.Duration
	Currency          string

	KafkaBrokers    []string
	NotifyTopic     string
	NotifyWorkers   int
	NotifyQueueSize int

	PricingTrustClient   bool
	ServiceChargeBase    decimal.Decimal
	DeliveryCharge       decimal.Decimal
	AssemblyCharge       decimal.Decimal
	QualityTestingCharge decimal.Decimal

	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	AppEnv          string
	LogLevel        string
}

const (
	defaultRunAddress      = ":8080"
	defaultDatabaseName    = "rigshop"
	defaultJWTSecret       = "change-me-in-production"
	defaultAuthStrategy    = "jwt"
	defaultTokenTTL        = 24 * time.Hour
	defaultRedisAddr       = "localhost:6379"
	defaultPaymentTimeout  = 10 * time.Second
	defaultCurrency        = "usd"
	defaultNotifyTopic     = "rigshop.emails"
	defaultNotifyWorkers   = 2
	defaultNotifyQueueSize = 64
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxBodyBytes    = 1 << 20
	defaultAppEnv          = "production"
	defaultLogLevel        = "info"

	// EnvDevelopment enables verbose error bodies and text logs.
	EnvDevelopment = "development"
)

var (
	defaultServiceChargeBase    = decimal.NewFromInt(1000)
	defaultDeliveryCharge       = decimal.NewFromInt(300)
	defaultAssemblyCharge       = decimal.NewFromInt(150)
	defaultQualityTestingCharge = decimal.NewFromInt(50)
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		DatabaseName:         getString(lookup, "DATABASE_NAME", defaultDatabaseName),
		JWTSecret:            getString(lookup, "JWT_SECRET", defaultJWTSecret),
		AuthStrategy:         getString(lookup, "AUTH_STRATEGY", defaultAuthStrategy),
		BcryptCost:           getInt(lookup, "BCRYPT_COST", 0),
		TokenTTL:             getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		RedisAddr:            getString(lookup, "REDIS_ADDR", defaultRedisAddr),
		RedisPassword:        getString(lookup, "REDIS_PASSWORD", ""),
		PaymentGatewayURL:    getString(lookup, "PAYMENT_GATEWAY_URL", ""),
		PaymentAPIKey:        getString(lookup, "PAYMENT_API_KEY", ""),
		PaymentTimeout:       getDuration(lookup, "PAYMENT_TIMEOUT", defaultPaymentTimeout),
		Currency:             getString(lookup, "CURRENCY", defaultCurrency),
		KafkaBrokers:         getList(lookup, "KAFKA_BROKERS"),
		AdminEmails:          getList(lookup, "ADMIN_EMAILS"),
		NotifyTopic:          getString(lookup, "NOTIFY_TOPIC", defaultNotifyTopic),
		NotifyWorkers:        getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:      getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		PricingTrustClient:   getBool(lookup, "PRICING_TRUST_CLIENT", false),
		ServiceChargeBase:    getDecimal(lookup, "SERVICE_CHARGE_BASE", defaultServiceChargeBase),
		DeliveryCharge:       getDecimal(lookup, "DELIVERY_CHARGE", defaultDeliveryCharge),
		AssemblyCharge:       getDecimal(lookup, "ASSEMBLY_CHARGE", defaultAssemblyCharge),
		QualityTestingCharge: getDecimal(lookup, "QUALITY_TESTING_CHARGE", defaultQualityTestingCharge),
		MaxBodyBytes:         int64(getInt(lookup, "MAX_BODY_BYTES", defaultMaxBodyBytes)),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		AppEnv:               getString(lookup, "APP_ENV", defaultAppEnv),
		LogLevel:             getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("rigshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		paymentTimeoutStr  = cfg.PaymentTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		brokersStr         = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL or MongoDB connection URI")
	fs.StringVar(&cfg.DatabaseName, "db-name", cfg.DatabaseName, "MongoDB database name")
	fs.StringVar(&cfg.PaymentGatewayURL, "p", cfg.PaymentGatewayURL, "Payment gateway base URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.AuthStrategy, "auth-strategy", cfg.AuthStrategy, "Token strategy: jwt or hmac")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Auth token lifetime")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for session revocation")
	fs.StringVar(&paymentTimeoutStr, "payment-timeout", paymentTimeoutStr, "Payment gateway request timeout")
	fs.StringVar(&brokersStr, "kafka-brokers", brokersStr, "Comma separated Kafka brokers for e-mail delivery")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of e-mail dispatch workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.BoolVar(&cfg.PricingTrustClient, "trust-client-pricing", cfg.PricingTrustClient, "Apply client supplied charges")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.PaymentTimeout, err = time.ParseDuration(paymentTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid payment timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(brokersStr)

	if cfg.JWTSecret, err = readSecretFile(lookup, "JWT_SECRET_FILE", cfg.JWTSecret); err != nil {
		return nil, fmt.Errorf("read jwt secret file: %w", err)
	}

	if cfg.PaymentAPIKey, err = readSecretFile(lookup, "PAYMENT_API_KEY_FILE", cfg.PaymentAPIKey); err != nil {
		return nil, fmt.Errorf("read payment api key file: %w", err)
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = defaultPaymentTimeout
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	cfg.AuthStrategy = strings.ToLower(cfg.AuthStrategy)
	if cfg.AuthStrategy != "jwt" && cfg.AuthStrategy != "hmac" {
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.AuthStrategy)
	}

	cfg.Currency = strings.ToLower(cfg.Currency)
	for i, email := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(email)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.PaymentGatewayURL == "" {
		return nil, fmt.Errorf("payment gateway URL must be provided")
	}

	return cfg, nil
}

func readSecretFile(lookup envLookup, key, current string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return current, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getDecimal(lookup envLookup, key string, def decimal.Decimal) decimal.Decimal {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, _ := lookup(key)
	return splitList(v)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
