package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	NumCars          = 5
	MaxFloor         = 5
	TravelDuration   = 2 * time.Second
	SettleDuration   = 1 * time.Second
	DoorOpenDuration = 4 * time.Second
	IdlePollInterval = 100 * time.Millisecond
	TickInterval     = 500 * time.Millisecond
	DefaultPort      = 3000
)

// Timing holds the simulated durations of one car.
type Timing struct {
	Travel   time.Duration `yaml:"travel"`
	Settle   time.Duration `yaml:"settle"`
	DoorOpen time.Duration `yaml:"doorOpen"`
	IdlePoll time.Duration `yaml:"idlePoll"`
}

// Config is fixed when the dispatcher is constructed.
type Config struct {
	NumCars      int           `yaml:"numCars"`
	MaxFloor     int           `yaml:"maxFloor"`
	TickInterval time.Duration `yaml:"tickInterval"`
	Timing       Timing        `yaml:"timing"`
}

func Default() Config {
	return Config{
		NumCars:      NumCars,
		MaxFloor:     MaxFloor,
		TickInterval: TickInterval,
		Timing: Timing{
			Travel:   TravelDuration,
			Settle:   SettleDuration,
			DoorOpen: DoorOpenDuration,
			IdlePoll: IdlePollInterval,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case c.NumCars < 1:
		return fmt.Errorf("numCars must be at least 1, got %d", c.NumCars)
	case c.MaxFloor < 1:
		return fmt.Errorf("maxFloor must be at least 1, got %d", c.MaxFloor)
	case c.TickInterval <= 0:
		return fmt.Errorf("tickInterval must be positive, got %v", c.TickInterval)
	case c.Timing.IdlePoll <= 0:
		return fmt.Errorf("timing.idlePoll must be positive, got %v", c.Timing.IdlePoll)
	case c.Timing.Travel < 0 || c.Timing.Settle < 0 || c.Timing.DoorOpen < 0:
		return errors.New("timing durations must not be negative")
	}
	return nil
}

// Load decodes the YAML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil {
		return c, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Config loaded", "path", path, "cars", c.NumCars, "maxFloor", c.MaxFloor)
	return c, nil
}

// Env is the process environment relevant to the server.
type Env struct {
	Port     int
	LogLevel slog.Level
	Mode     string
}

// LoadEnv reads PORT, LOG_LEVEL and NODE_ENV from the .env file at path, if it exists,
// with the process environment taking precedence.
func LoadEnv(path string) (Env, error) {
	env := Env{Port: DefaultPort, LogLevel: slog.LevelInfo, Mode: "development"}

	vars := map[string]string{}
	if path != "" {
		fileVars, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return env, fmt.Errorf("reading %s: %w", path, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, key := range []string{"PORT", "LOG_LEVEL", "NODE_ENV"} {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}

	if v := vars["PORT"]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			return env, fmt.Errorf("invalid PORT %q", v)
		}
		env.Port = port
	}
	if v := vars["LOG_LEVEL"]; v != "" {
		if err := env.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return env, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
	}
	if v := vars["NODE_ENV"]; v != "" {
		env.Mode = v
	}
	return env, nil
}
