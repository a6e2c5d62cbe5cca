package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BRIDGE_ETHEREUM_PRIVATE_KEY.
const EnvPrefix = "BRIDGE"

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// EthereumConfig contains Ethereum client settings
type EthereumConfig struct {
	RPCURL          string        `mapstructure:"rpc_url" validate:"required,url"`
	WSUrl           string        `mapstructure:"ws_url" validate:"omitempty,url"`
	ChainID         int64         `mapstructure:"chain_id" validate:"required,gt=0"`
	PrivateKey      string        `mapstructure:"private_key" validate:"required"`
	MaxGasPrice     string        `mapstructure:"max_gas_price" validate:"omitempty,numeric"`
	PollingInterval time.Duration `mapstructure:"polling_interval" validate:"gt=0"`
	ReceiptTimeout  time.Duration `mapstructure:"receipt_timeout" validate:"gte=0"`
}

// MaxGasPriceWei returns the configured gas price ceiling, or nil when unset.
func (c *EthereumConfig) MaxGasPriceWei() (*big.Int, error) {
	return parseWei(c.MaxGasPrice, "ethereum.max_gas_price")
}

// BridgeConfig contains the bridge deployment the submitter talks to
type BridgeConfig struct {
	// BridgeContract is the BridgingPayment contract receiving requestBridging.
	BridgeContract string `mapstructure:"bridge_contract" validate:"required,eth_addr"`
	// SpenderContract is the allowance target. Defaults to BridgeContract.
	SpenderContract string `mapstructure:"spender_contract" validate:"omitempty,eth_addr"`
	// CompletionContract emits the completion event. Defaults to BridgeContract.
	CompletionContract  string        `mapstructure:"completion_contract" validate:"omitempty,eth_addr"`
	CompletionEvent     string        `mapstructure:"completion_event" validate:"required"`
	FeeWei              string        `mapstructure:"fee_wei" validate:"omitempty,numeric"`
	MintableAssets      []string      `mapstructure:"mintable_assets" validate:"dive,eth_addr"`
	FallbackTransferGas uint64        `mapstructure:"fallback_transfer_gas" validate:"gt=0"`
	CompletionTimeout   time.Duration `mapstructure:"completion_timeout" validate:"gte=0"`
}

// Fee returns the configured bridge fee, or nil when it should be read on-chain.
func (c *BridgeConfig) Fee() (*big.Int, error) {
	return parseWei(c.FeeWei, "bridge.fee_wei")
}

// AuthConfig contains API authentication settings
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret" validate:"required_if=Enabled true"`
	JWTIssuer string `mapstructure:"jwt_issuer"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file, a .env file and environment variables.
// An empty configPath loads from environment only.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	// Ethereum defaults
	v.SetDefault("ethereum.rpc_url", "")
	v.SetDefault("ethereum.ws_url", "")
	v.SetDefault("ethereum.chain_id", 0)
	v.SetDefault("ethereum.max_gas_price", "")
	v.SetDefault("ethereum.polling_interval", "5s")
	v.SetDefault("ethereum.receipt_timeout", "5m")

	// Bridge defaults
	v.SetDefault("bridge.bridge_contract", "")
	v.SetDefault("bridge.spender_contract", "")
	v.SetDefault("bridge.completion_contract", "")
	v.SetDefault("bridge.completion_event", "FeePaid")
	v.SetDefault("bridge.fee_wei", "")
	v.SetDefault("bridge.mintable_assets", []string{})
	v.SetDefault("bridge.fallback_transfer_gas", 210000)
	v.SetDefault("bridge.completion_timeout", "10m")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_issuer", "")

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	v.SetDefault("shutdown.timeout", "30s")
}

// bindSecrets registers keys that have no default and are usually only
// provided through the environment.
func bindSecrets(v *viper.Viper) error {
	for _, key := range []string{"ethereum.private_key", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

func validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
		}
		return err
	}
	if _, err := config.Ethereum.MaxGasPriceWei(); err != nil {
		return err
	}
	if _, err := config.Bridge.Fee(); err != nil {
		return err
	}
	return nil
}

func parseWei(s, key string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer, got %q", key, s)
	}
	return v, nil
}
