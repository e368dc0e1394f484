package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	AppPort        string
	AllowedOrigins string
	LogLevel       string

	DBType         string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPath         string
	DBMaxIdleConns int
	DBMaxOpenConns int

	NatsURL           string
	NatsSubjectPrefix string

	// NotifyCollectionTopic also publishes print job updates and deletions
	// on the collection-wide topic, not only on the per-job topic.
	NotifyCollectionTopic bool

	WSPingInterval time.Duration
	WSPongWait     time.Duration
	WSWriteWait    time.Duration
	WSSendBuffer   int
}

var defaults = map[string]interface{}{
	"APP_ENV":                 "development",
	"APP_PORT":                "8000",
	"ALLOWED_ORIGINS":         "*",
	"LOG_LEVEL":               "info",
	"DB_TYPE":                 "sqlite",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "spoolman",
	"DB_PASSWORD":             "spoolman",
	"DB_NAME":                 "spoolman",
	"DB_PATH":                 "spoolman.db",
	"DB_MAX_IDLE_CONNS":       10,
	"DB_MAX_OPEN_CONNS":       100,
	"NATS_URL":                "",
	"NATS_SUBJECT_PREFIX":     "spoolman",
	"NOTIFY_COLLECTION_TOPIC": false,
	"WS_PING_INTERVAL":        500 * time.Millisecond,
	"WS_PONG_WAIT":            60 * time.Second,
	"WS_WRITE_WAIT":           10 * time.Second,
	"WS_SEND_BUFFER":          256,
}

// New builds a viper instance bound to the process environment with all
// defaults registered.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func Load() Config {
	return FromViper(New())
}

func FromViper(v *viper.Viper) Config {
	log.Debug().Msg("Loading configuration...")

	cfg := Config{
		AppEnv:                v.GetString("APP_ENV"),
		AppPort:               v.GetString("APP_PORT"),
		AllowedOrigins:        v.GetString("ALLOWED_ORIGINS"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBType:                v.GetString("DB_TYPE"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBPath:                v.GetString("DB_PATH"),
		DBMaxIdleConns:        v.GetInt("DB_MAX_IDLE_CONNS"),
		DBMaxOpenConns:        v.GetInt("DB_MAX_OPEN_CONNS"),
		NatsURL:               v.GetString("NATS_URL"),
		NatsSubjectPrefix:     v.GetString("NATS_SUBJECT_PREFIX"),
		NotifyCollectionTopic: v.GetBool("NOTIFY_COLLECTION_TOPIC"),
		WSPingInterval:        v.GetDuration("WS_PING_INTERVAL"),
		WSPongWait:            v.GetDuration("WS_PONG_WAIT"),
		WSWriteWait:           v.GetDuration("WS_WRITE_WAIT"),
		WSSendBuffer:          v.GetInt("WS_SEND_BUFFER"),
	}

	if cfg.WSPingInterval <= 0 {
		log.Warn().Dur("interval", cfg.WSPingInterval).Msg("Invalid WS_PING_INTERVAL, defaulting to 500ms")
		cfg.WSPingInterval = 500 * time.Millisecond
	}
	if cfg.WSSendBuffer <= 0 {
		log.Warn().Int("size", cfg.WSSendBuffer).Msg("Invalid WS_SEND_BUFFER, defaulting to 256")
		cfg.WSSendBuffer = 256
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
