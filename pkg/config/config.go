package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/openmf/bankimport/pkg/importer/mpesa"
)

// Config is the tool configuration, merged from config file, environment and
// flags.
type Config struct {
	// Importer forces a specific importer instead of filename detection.
	Importer string `mapstructure:"importer"`

	// Fixture is the YAML account fixture used for dry-run parsing.
	Fixture string `mapstructure:"fixture"`

	// OutputPath is where payment CSVs are written; empty means next to the
	// input file.
	OutputPath string `mapstructure:"output"`

	MPesa MPesaConfig `mapstructure:"mpesa"`
}

type MPesaConfig struct {
	TransactionOrder  []string `mapstructure:"transaction_order"`
	Product           string   `mapstructure:"product"`
	MaxDisbursalLimit string   `mapstructure:"max_disbursal_limit"`
}

// Build loads configuration from the given file (or ./bankimport.yaml when
// empty), environment variables prefixed BANKIMPORT_, and the given flags.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bankimport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BANKIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// MPesaOptions converts the raw config values into importer options.
func (c *Config) MPesaOptions() (mpesa.Options, error) {
	opts := mpesa.Options{
		TransactionOrder: c.MPesa.TransactionOrder,
		Product:          c.MPesa.Product,
	}
	if c.MPesa.MaxDisbursalLimit != "" {
		limit, err := decimal.NewFromString(c.MPesa.MaxDisbursalLimit)
		if err != nil {
			return opts, fmt.Errorf("error parsing mpesa.max_disbursal_limit: %w", err)
		}
		opts.MaxDisbursalLimit = limit
	}
	return opts, nil
}
