package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Storage: "mongo" or "memory".
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration. An empty address disables the distributed booking
	// lock and the prune worker.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling.
	BookingLockTTL             time.Duration `mapstructure:"BOOKING_LOCK_TTL"`
	BookingMaxRetries          int           `mapstructure:"BOOKING_MAX_RETRIES"`
	DefaultBookingMinutes      int           `mapstructure:"DEFAULT_BOOKING_MINUTES"`
	RejectOverlappingSlots     bool          `mapstructure:"SCHEDULE_REJECT_OVERLAPS"`
	AcceptedSlotRetentionHours int           `mapstructure:"ACCEPTED_SLOT_RETENTION_HOURS"`
	PruneCron                  string        `mapstructure:"PRUNE_CRON"`

	// Kafka domain events. No brokers means events are dropped.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("STORE_BACKEND", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "solvit")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 3)
	v.SetDefault("REDIS_QUEUE_DB", 4)
	v.SetDefault("BOOKING_LOCK_TTL", "10s")
	v.SetDefault("BOOKING_MAX_RETRIES", 3)
	v.SetDefault("DEFAULT_BOOKING_MINUTES", 60)
	v.SetDefault("SCHEDULE_REJECT_OVERLAPS", false)
	v.SetDefault("ACCEPTED_SLOT_RETENTION_HOURS", 24*30)
	v.SetDefault("PRUNE_CRON", "@every 1h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "schedule.events")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location is the single local-time frame every schedule is expressed in.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil || AppConfig.Timezone == "" {
		return time.UTC
	}
	return loc
}
