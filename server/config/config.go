package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Hands         int    `env:"HANDS" env-default:"1000" env-description:"hands to play"`
	Workers       int    `env:"WORKERS" env-default:"4" env-description:"hands played in parallel"`
	DeckSeed      string `env:"DECK_SEED" env-description:"base seed; empty draws one from crypto/rand"`
	PlayerA       string `env:"PLAYER_A" env-default:"heuristic" env-description:"heuristic | model | random | llm:<model>"`
	PlayerB       string `env:"PLAYER_B" env-default:"model"`
	OracleSamples int    `env:"ORACLE_SAMPLES" env-default:"48" env-description:"Monte Carlo samples per keep pattern"`
	TiePolicy     string `env:"TIE_POLICY" env-default:"split" env-description:"split | abort"`

	EloStart       float64 `env:"ELO_START" env-default:"1500"`
	EloK           float64 `env:"ELO_K" env-default:"24"`
	EloWeightByPot bool    `env:"ELO_WEIGHT_BY_POT" env-default:"true"`

	CSVPath           string  `env:"CSV_PATH"`
	CSVSampleRate     float64 `env:"CSV_SAMPLE_RATE" env-default:"1"`
	CSVDrawSampleRate float64 `env:"CSV_DRAW_SAMPLE_RATE" env-default:"1"`

	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"false"`

	AMQPURL        string `env:"AMQP_URL"`
	AMQPExchange   string `env:"AMQP_EXCHANGE" env-default:"drawbench.hands"`
	AMQPRoutingKey string `env:"AMQP_ROUTING_KEY" env-default:"hand.completed"`

	RedisURL    string `env:"REDIS_URL"`
	RedisStream string `env:"REDIS_STREAM" env-default:"drawbench:hands"`
	RedisMaxLen int64  `env:"REDIS_MAXLEN" env-default:"100000"`

	Port    string `env:"PORT" env-default:"8080"`
	Debug   bool   `env:"DEBUG" env-default:"false"`
	NoColor string `env:"NO_COLOR" env-description:"any value disables colour"`

	StopFile          string `env:"STOP_FILE"`
	MaxSeconds        int    `env:"MAX_SECONDS" env-default:"0"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" env-default:"40"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Hands < 0 {
		return fmt.Errorf("HANDS must be >= 0, got %d", c.Hands)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	switch strings.ToLower(c.TiePolicy) {
	case "split", "abort":
		c.TiePolicy = strings.ToLower(c.TiePolicy)
	default:
		return fmt.Errorf("TIE_POLICY must be split or abort, got %q", c.TiePolicy)
	}
	for name, r := range map[string]float64{"CSV_SAMPLE_RATE": c.CSVSampleRate, "CSV_DRAW_SAMPLE_RATE": c.CSVDrawSampleRate} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, r)
		}
	}
	if _, _, err := c.Seed(); err != nil {
		return err
	}
	return nil
}

// Seed returns the configured base seed; ok is false when none is set.
func (c *Config) Seed() (seed uint64, ok bool, err error) {
	s := strings.TrimSpace(c.DeckSeed)
	if s == "" {
		return 0, false, nil
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, true, nil
	}
	// negative seeds wrap, as they did when printed from a signed source
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("DECK_SEED: %w", err)
	}
	return uint64(v), true, nil
}

func (c *Config) Color() bool { return c.NoColor == "" }

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// Usage is the variable list for --help.
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}

// LoadAPIKeyFromSecret fills OPENAI_API_KEY from a mounted secret file when unset.
func LoadAPIKeyFromSecret() {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return
	}
	var candidates []string
	if p := os.Getenv("OPENAI_API_KEY_FILE"); strings.TrimSpace(p) != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates,
		"./secrets/openai_api_key.txt",
		"./openai_api_key.txt",
		"/run/secrets/openai_api_key",
	)
	for _, path := range candidates {
		if b, err := os.ReadFile(path); err == nil {
			if key := strings.TrimSpace(string(b)); key != "" {
				os.Setenv("OPENAI_API_KEY", key)
				return
			}
		}
	}
}
