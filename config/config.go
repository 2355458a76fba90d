package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Anabol1ks/orderhub-pkg-proto/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port     string
	AuthAddr string
	Location *time.Location

	DB        DB
	Redis     Redis
	Kafka     Kafka
	RateLimit RateLimit
	Expiry    Expiry
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// AvailabilityTTL bounds how stale a cached available-tables list may get.
	AvailabilityTTL time.Duration
}

// Kafka with no brokers means lifecycle events are only logged.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type RateLimit struct {
	Window time.Duration
	Max    int
}

type Expiry struct {
	Interval time.Duration
	Grace    time.Duration
	Batch    int
}

type Notifier struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPSSL      bool

	TMPLDir string

	Kafka Kafka
}

// Load reads everything the HTTP service needs.
func Load(log *zap.Logger) *Config {
	c := LoadWorker(log)
	c.Port = getEnvDefault("HTTP_PORT", "8080")
	c.AuthAddr = getEnv("AUTH_SERVICE_ADDR", log)
	return c
}

// LoadWorker is Load without the HTTP and auth settings; the one-shot sweep uses it.
func LoadWorker(log *zap.Logger) *Config {
	return &Config{
		Location: loadLocation(getEnvDefault("TIMEZONE", "UTC"), log),
		DB:       LoadDB(log),
		Redis: Redis{
			Enabled:         getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:            getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              atoiDefault(os.Getenv("REDIS_DB"), 0),
			AvailabilityTTL: durationDefault(os.Getenv("AVAILABILITY_CACHE_TTL"), 30*time.Second),
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnvDefault("KAFKA_TOPIC_EMAIL", "booking.emails"),
		},
		RateLimit: RateLimit{
			Window: durationDefault(os.Getenv("RATE_LIMIT_WINDOW"), time.Minute),
			Max:    atoiDefault(os.Getenv("RATE_LIMIT_MAX"), 10),
		},
		Expiry: Expiry{
			Interval: durationDefault(os.Getenv("EXPIRY_INTERVAL"), 5*time.Minute),
			Grace:    durationDefault(os.Getenv("EXPIRY_GRACE"), 30*time.Minute),
			Batch:    atoiDefault(os.Getenv("EXPIRY_BATCH"), 200),
		},
	}
}

func LoadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
		},
	}
}

func LoadNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		SMTPHost:     getEnv("SMTP_HOST", log),
		SMTPPort:     getEnvInt("SMTP_PORT", log),
		SMTPUser:     getEnv("SMTP_USER", log),
		SMTPPassword: getEnv("SMTP_PASSWORD", log),
		SMTPFrom:     getEnv("SMTP_FROM", log),
		SMTPSSL:      getEnvDefault("SMTP_SSL", "false") == "true",
		TMPLDir:      os.Getenv("TMPL_DIR"),
		Kafka: Kafka{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", log)),
			Topic:   getEnv("KAFKA_TOPIC_EMAIL", log),
			GroupID: getEnv("KAFKA_GROUP_ID", log),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, log *zap.Logger) int {
	val, err := strconv.Atoi(getEnv(key, log))
	if err != nil {
		log.Error("environment variable is not an int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func loadLocation(name string, log *zap.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error("unknown TIMEZONE", zap.String("timezone", name), zap.Error(err))
		panic("invalid TIMEZONE: " + name)
	}
	return loc
}

// parseDurationWithDays extends time.ParseDuration with a "d" suffix ("2d").
// It returns 0 on malformed input.
func parseDurationWithDays(s string) time.Duration {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		h, err := time.ParseDuration(days + "h")
		if err != nil {
			return 0
		}
		return 24 * h
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func durationDefault(s string, def time.Duration) time.Duration {
	if d := parseDurationWithDays(s); d > 0 {
		return d
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		if pt := strings.TrimSpace(p); pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
