package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverHTTP   = "http"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	LogLevel          string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Registry          Registry    `yaml:"registry"`
	Matchmaking       Matchmaking `yaml:"matchmaking"`
	Game              Game        `yaml:"game"`
	Persistence       Persistence `yaml:"persistence"`
	Redis             Redis       `yaml:"redis"`
	SQLiteStoragePath string      `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"xong.db"`
}

type Registry struct {
	RemovalDelay time.Duration `yaml:"removal-delay" env-default:"5m"`
}

type Matchmaking struct {
	Interval      time.Duration `yaml:"interval" env-default:"3s"`
	CreatedDelay  time.Duration `yaml:"created-delay" env-default:"1s"`
	CreateTimeout time.Duration `yaml:"create-timeout" env-default:"10s"`
}

type Game struct {
	Tick           time.Duration `yaml:"tick" env-default:"16ms"`
	BroadcastEvery int           `yaml:"broadcast-every" env-default:"3"`
	Countdown      time.Duration `yaml:"countdown" env-default:"3s"`
	PickTimeout    time.Duration `yaml:"pick-timeout" env-default:"10s"`
	Field          Field         `yaml:"field"`
}

type Field struct {
	Width        float64 `yaml:"width" env-default:"800"`
	Height       float64 `yaml:"height" env-default:"600"`
	Margin       float64 `yaml:"margin" env-default:"20"`
	PaddleWidth  float64 `yaml:"paddle-width" env-default:"12"`
	PaddleHeight float64 `yaml:"paddle-height" env-default:"90"`
	PaddleSpeed  float64 `yaml:"paddle-speed" env-default:"6"`
	BallSize     float64 `yaml:"ball-size" env-default:"16"`
	BallSpeed    float64 `yaml:"ball-speed" env-default:"5"`
	BallSpeedMod float64 `yaml:"ball-speed-mod" env-default:"0.25"`
	CellSize     float64 `yaml:"cell-size" env-default:"100"`
	HitBand      float64 `yaml:"hit-band" env-default:"44"`
}

type Persistence struct {
	Driver      string        `yaml:"driver" env:"PERSISTENCE_DRIVER" env-default:"redis"`
	BaseURL     string        `yaml:"base-url" env:"PERSISTENCE_BASE_URL" env-default:"http://localhost:3000"`
	HTTPTimeout time.Duration `yaml:"http-timeout" env-default:"5s"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
