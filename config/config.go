package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is loaded once at startup and treated as immutable afterwards.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Services ServicesConfig
	Topics   TopicsConfig
	Outbox   OutboxConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Exchange string
}

// ServicesConfig holds base URLs of the doctor-service and patient-service
// the appointment core calls over HTTP.
type ServicesConfig struct {
	DoctorBaseURL  string
	PatientBaseURL string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBackoff   time.Duration
}

// TopicsConfig names the event bus topics. Inbound book requests are produced
// by the patient-side booking intake; the outbound topics are consumed by the
// notification dispatcher.
type TopicsConfig struct {
	BookRequest string
	Confirmed   string
	Rejected    string
	Cancelled   string
	Notify      string
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     viper.GetString("RABBITMQ_HOST"),
			Port:     viper.GetString("RABBITMQ_PORT"),
			Username: viper.GetString("RABBITMQ_USERNAME"),
			Password: viper.GetString("RABBITMQ_PASSWORD"),
			Exchange: getStringOrDefault("RABBITMQ_EXCHANGE", "healthcare.events"),
		},
		Services: ServicesConfig{
			DoctorBaseURL:  viper.GetString("DOCTOR_SERVICE_URL"),
			PatientBaseURL: viper.GetString("PATIENT_SERVICE_URL"),
			RequestTimeout: getDurationOrDefault("SERVICE_REQUEST_TIMEOUT", 5*time.Second),
			RetryAttempts:  getIntOrDefault("SERVICE_RETRY_ATTEMPTS", 2),
			RetryBackoff:   getDurationOrDefault("SERVICE_RETRY_BACKOFF", 200*time.Millisecond),
		},
		Topics: TopicsConfig{
			BookRequest: getStringOrDefault("TOPIC_BOOK_REQUEST", "appointment-book-request"),
			Confirmed:   getStringOrDefault("TOPIC_CONFIRMED", "appointment-confirmed"),
			Rejected:    getStringOrDefault("TOPIC_REJECTED", "appointment-rejected"),
			Cancelled:   getStringOrDefault("TOPIC_CANCELLED", "appointment-cancelled"),
			Notify:      getStringOrDefault("TOPIC_NOTIFY", "appointment-notify"),
		},
		Outbox: OutboxConfig{
			PollInterval: getDurationOrDefault("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    getIntOrDefault("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  getIntOrDefault("OUTBOX_MAX_ATTEMPTS", 10),
		},
	}

	return config, nil
}

func getStringOrDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func getIntOrDefault(key string, fallback int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(viper.GetString(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
