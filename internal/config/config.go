package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL             string
	PoolAddress        string
	StableAddress      string
	CounterAddress     string
	AccessAddress      string
	DistributorAddress string
	AdapterAddress     string
	PrivateKey         string
	StableIndex        int
	CounterDecimals    uint8
	PGDSN              string
	StoreName          string
	JournalPath        string
	LedgerStatePath    string
	Interval           time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	ListenAddr         string
	Execute            bool
	LogLevel           string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("USDU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("stable-index", 0)
	v.SetDefault("counter-decimals", 6)
	v.SetDefault("store-name", "usdu-adapter")
	v.SetDefault("journal", "./data/operations.jsonl")
	v.SetDefault("ledger-state", "./data/ledger.json")
	v.SetDefault("interval", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("listen", ":8087")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:             v.GetString("rpc"),
		PoolAddress:        v.GetString("pool"),
		StableAddress:      v.GetString("stable"),
		CounterAddress:     v.GetString("counter"),
		AccessAddress:      v.GetString("access"),
		DistributorAddress: v.GetString("distributor"),
		AdapterAddress:     v.GetString("adapter"),
		PrivateKey:         v.GetString("private-key"),
		StableIndex:        v.GetInt("stable-index"),
		CounterDecimals:    uint8(v.GetUint("counter-decimals")),
		PGDSN:              v.GetString("pg-dsn"),
		StoreName:          v.GetString("store-name"),
		JournalPath:        v.GetString("journal"),
		LedgerStatePath:    v.GetString("ledger-state"),
		Interval:           v.GetDuration("interval"),
		MaxRetries:         v.GetInt("max-retries"),
		RetryBackoff:       v.GetDuration("retry-backoff"),
		ListenAddr:         v.GetString("listen"),
		Execute:            v.GetBool("execute"),
		LogLevel:           v.GetString("log-level"),
	}

	return cfg, nil
}
