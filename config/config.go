package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationsTopic  string   `yaml:"reservations_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Configured reports whether an outbound mail identity is present.
// Ticket emails are skipped entirely when it is not.
func (s SMTPConfig) Configured() bool {
	return s.Username != "" && s.Host != ""
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
}

type BookingConfig struct {
	// Per-class capacity used when a flight date has no instance yet.
	DefaultEconomySeats  int `yaml:"default_economy_seats"`
	DefaultBusinessSeats int `yaml:"default_business_seats"`
	DefaultFirstSeats    int `yaml:"default_first_seats"`

	// Minimum minutes before departure a same-day flight is still bookable.
	BookingLeadMinutes int `yaml:"booking_lead_minutes"`

	// Check-in opens/closes this many hours before departure.
	CheckinOpensHours  int `yaml:"checkin_opens_hours"`
	CheckinClosesHours int `yaml:"checkin_closes_hours"`

	// IANA location used for all schedule math (same-day cutoff, check-in window).
	Timezone string `yaml:"timezone"`

	SeatHoldTTLSeconds  int `yaml:"seat_hold_ttl_seconds"`
	CatalogCacheSeconds int `yaml:"catalog_cache_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Booking.applyDefaults()

	return &cfg, nil
}

func (b *BookingConfig) applyDefaults() {
	if b.DefaultEconomySeats == 0 {
		b.DefaultEconomySeats = 150
	}
	if b.DefaultBusinessSeats == 0 {
		b.DefaultBusinessSeats = 30
	}
	if b.DefaultFirstSeats == 0 {
		b.DefaultFirstSeats = 10
	}
	if b.BookingLeadMinutes == 0 {
		b.BookingLeadMinutes = 30
	}
	if b.CheckinOpensHours == 0 {
		b.CheckinOpensHours = 24
	}
	if b.CheckinClosesHours == 0 {
		b.CheckinClosesHours = 3
	}
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	if b.SeatHoldTTLSeconds == 0 {
		b.SeatHoldTTLSeconds = 300
	}
	if b.CatalogCacheSeconds == 0 {
		b.CatalogCacheSeconds = 600
	}
}
