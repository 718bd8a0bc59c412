package internal

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Host     string `envconfig:"HOST" default:"0.0.0.0"`
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`

	MaxContentLength int `envconfig:"MAX_CONTENT_LENGTH" default:"2000"`

	NotifierEndpoint   string        `envconfig:"NOTIFIER_ENDPOINT" required:"true"`
	NotifierTimeout    time.Duration `envconfig:"NOTIFIER_TIMEOUT" default:"5s"`
	NotifierBufferSize int           `envconfig:"NOTIFIER_BUFFER_SIZE" default:"256"`
	RestartInterval    time.Duration `envconfig:"RESTART_INTERVAL" default:"200ms"`

	WriteWait      time.Duration `envconfig:"WRITE_WAIT" default:"10s"`
	PongWait       time.Duration `envconfig:"PONG_WAIT" default:"60s"`
	PingPeriod     time.Duration `envconfig:"PING_PERIOD" default:"54s"`
	MaxMessageSize int64         `envconfig:"MAX_MESSAGE_SIZE" default:"8192"`
	SinkBufferSize int           `envconfig:"SINK_BUFFER_SIZE" default:"64"`
	SendBufferSize int           `envconfig:"SEND_BUFFER_SIZE" default:"16"`
}

// Load reads the environment, with an optional .env bootstrap for
// local runs. Missing required values fail startup; the relay never
// serves with a partial configuration.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}
