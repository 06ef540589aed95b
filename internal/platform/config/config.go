package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	NATSURL      string   `yaml:"nats_url"`
	AutoMigrate  bool     `yaml:"auto_migrate"`

	DAO     DAOConfig     `yaml:"dao"`
	Token   TokenConfig   `yaml:"token"`
	Workers WorkersConfig `yaml:"workers"`
}

type DAOConfig struct {
	EngineID        string        `yaml:"engine_id"`
	Owner           string        `yaml:"owner"`
	CustodyAccount  string        `yaml:"custody_account"`
	TreasuryAccount string        `yaml:"treasury_account"`
	MinQuorum       uint64        `yaml:"min_quorum"`
	VotingPeriod    time.Duration `yaml:"voting_period"`
	IdempotencyTTL  time.Duration `yaml:"idempotency_ttl"`
}

// TokenConfig describes the development asset ledger. Genesis balances are
// minted at startup.
type TokenConfig struct {
	Address  string            `yaml:"address"`
	Name     string            `yaml:"name"`
	Symbol   string            `yaml:"symbol"`
	Decimals uint8             `yaml:"decimals"`
	Genesis  map[string]uint64 `yaml:"genesis"`
}

type WorkersConfig struct {
	EnableExpiryFinalizer bool          `yaml:"enable_expiry_finalizer"`
	EnableOutboxRelay     bool          `yaml:"enable_outbox_relay"`
	PollInterval          time.Duration `yaml:"poll_interval"`
	OutboxBatchSize       int           `yaml:"outbox_batch_size"`
}

func Default() Config {
	return Config{
		ServiceName:  "dao-engine",
		HTTPPort:     "8080",
		KafkaBrokers: []string{"localhost:9092"},
		DAO: DAOConfig{
			EngineID:        "default",
			Owner:           "owner",
			CustodyAccount:  "dao-custody",
			TreasuryAccount: "dao-treasury",
			MinQuorum:       32,
			VotingPeriod:    72 * time.Hour,
			IdempotencyTTL:  24 * time.Hour,
		},
		Token: TokenConfig{
			Address:  "token",
			Name:     "Corgy",
			Symbol:   "CRG",
			Decimals: 18,
		},
		Workers: WorkersConfig{
			EnableExpiryFinalizer: true,
			EnableOutboxRelay:     true,
			PollInterval:          5 * time.Second,
			OutboxBatchSize:       100,
		},
	}
}

// Load starts from defaults, overlays the YAML file named by DAO_CONFIG_FILE
// when set, then applies environment variables and validates the result.
func Load() (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("DAO_CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServiceName = envString("SERVICE_NAME", c.ServiceName)
	c.HTTPPort = envString("HTTP_PORT", c.HTTPPort)
	c.PostgresDSN = envString("POSTGRES_DSN", c.PostgresDSN)
	c.NATSURL = envString("NATS_URL", c.NATSURL)
	c.AutoMigrate = envBool("DAO_AUTO_MIGRATE", c.AutoMigrate)

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) > 0 {
		c.KafkaBrokers = brokers
	}

	c.DAO.EngineID = envString("DAO_ENGINE_ID", c.DAO.EngineID)
	c.DAO.Owner = envString("DAO_OWNER", c.DAO.Owner)
	c.DAO.CustodyAccount = envString("DAO_CUSTODY_ACCOUNT", c.DAO.CustodyAccount)
	c.DAO.TreasuryAccount = envString("DAO_TREASURY_ACCOUNT", c.DAO.TreasuryAccount)
	c.Token.Address = envString("DAO_TOKEN_ADDRESS", c.Token.Address)
	c.Token.Name = envString("DAO_TOKEN_NAME", c.Token.Name)
	c.Token.Symbol = envString("DAO_TOKEN_SYMBOL", c.Token.Symbol)
	c.Workers.EnableExpiryFinalizer = envBool("ENABLE_DAO_EXPIRY_FINALIZER", c.Workers.EnableExpiryFinalizer)
	c.Workers.EnableOutboxRelay = envBool("ENABLE_DAO_OUTBOX_RELAY", c.Workers.EnableOutboxRelay)

	var err error
	if c.DAO.MinQuorum, err = envUint("DAO_MIN_QUORUM", c.DAO.MinQuorum, 64); err != nil {
		return err
	}
	if c.DAO.VotingPeriod, err = envDuration("DAO_VOTING_PERIOD", c.DAO.VotingPeriod); err != nil {
		return err
	}
	if c.DAO.IdempotencyTTL, err = envDuration("DAO_IDEMPOTENCY_TTL", c.DAO.IdempotencyTTL); err != nil {
		return err
	}
	if c.Workers.PollInterval, err = envDuration("WORKER_POLL_INTERVAL", c.Workers.PollInterval); err != nil {
		return err
	}
	decimals, err := envUint("DAO_TOKEN_DECIMALS", uint64(c.Token.Decimals), 8)
	if err != nil {
		return err
	}
	c.Token.Decimals = uint8(decimals)
	if raw := strings.TrimSpace(os.Getenv("DAO_TOKEN_GENESIS")); raw != "" {
		genesis, err := ParseGenesis(raw)
		if err != nil {
			return err
		}
		c.Token.Genesis = genesis
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPPort) == "" {
		errs = append(errs, errors.New("http_port is required"))
	}
	if strings.TrimSpace(c.DAO.Owner) == "" {
		errs = append(errs, errors.New("dao.owner is required"))
	}
	if strings.TrimSpace(c.DAO.CustodyAccount) == "" {
		errs = append(errs, errors.New("dao.custody_account is required"))
	}
	if strings.TrimSpace(c.DAO.TreasuryAccount) == strings.TrimSpace(c.DAO.CustodyAccount) {
		errs = append(errs, errors.New("dao.treasury_account must differ from dao.custody_account"))
	}
	if c.DAO.VotingPeriod <= 0 {
		errs = append(errs, errors.New("dao.voting_period must be positive"))
	}
	if c.Workers.PollInterval <= 0 {
		errs = append(errs, errors.New("workers.poll_interval must be positive"))
	}
	if _, ok := c.Token.Genesis[strings.TrimSpace(c.DAO.CustodyAccount)]; ok {
		errs = append(errs, errors.New("token.genesis must not fund the custody account"))
	}
	return errors.Join(errs...)
}

// ParseGenesis reads "principal=amount" pairs separated by commas.
func ParseGenesis(raw string) (map[string]uint64, error) {
	genesis := make(map[string]uint64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		principal, amount, ok := strings.Cut(pair, "=")
		principal = strings.TrimSpace(principal)
		if !ok || principal == "" {
			return nil, fmt.Errorf("genesis entry %q must be principal=amount", pair)
		}
		value, err := strconv.ParseUint(strings.TrimSpace(amount), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("genesis amount for %s: %w", principal, err)
		}
		genesis[principal] += value
	}
	return genesis, nil
}

func envString(name string, fallback string) string {
	if raw := strings.TrimSpace(os.Getenv(name)); raw != "" {
		return raw
	}
	return fallback
}

func envUint(name string, fallback uint64, bits int) (uint64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
