package config

import "os"

// #region settings

// Settings holds process configuration read from the environment.
type Settings struct {
	ConfigPath  string // experiments file (YAML or JSON)
	DBPath      string // ledger database, empty = ledger disabled
	HooksAddr   string // gRPC listen address for the hook service
	MetricsAddr string // HTTP listen address for /metrics, empty = disabled
	Enabled     bool   // kill switch: EXPERIMENTS_ENABLED=false forces idle
	Debug       bool   // log every new assignment
}

// FromEnv reads Settings, applying defaults for unset variables.
func FromEnv() Settings {
	return Settings{
		ConfigPath:  envOr("EXPERIMENTS_CONFIG", "experiments.yaml"),
		DBPath:      envOrEmpty("EXPERIMENTS_DB", "prompt_experiments.db"),
		HooksAddr:   envOr("HOOKS_ADDR", "localhost:50061"),
		MetricsAddr: envOrEmpty("METRICS_ADDR", "localhost:9464"),
		Enabled:     os.Getenv("EXPERIMENTS_ENABLED") != "false",
		Debug:       os.Getenv("EXPERIMENTS_DEBUG") == "true",
	}
}

// #endregion

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrEmpty is envOr, except a variable explicitly set to "" disables the feature.
func envOrEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// #endregion
