package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	BackendURL     string
	BackendTimeout time.Duration

	// StorePath is the till-local SQLite file.
	StorePath string

	// RabbitURL is the store-side journal broker. Empty disables journaling;
	// the till must keep selling when the broker is unreachable.
	RabbitURL string

	// SimulatedBarcodes feed the stub camera scanner in demo setups.
	SimulatedBarcodes []string
}

func Load() Config {
	return Config{
		Port:              getenv("PORT", "8090"),
		BackendURL:        getenv("BACKEND_URL", "http://localhost:8080"),
		BackendTimeout:    parseDuration(getenv("BACKEND_TIMEOUT", "10s"), 10*time.Second),
		StorePath:         getenv("STORE_PATH", "pos-terminal.db"),
		RabbitURL:         getenv("RABBITMQ_URL", ""),
		SimulatedBarcodes: splitCSV(getenv("SIMULATED_BARCODES", "")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
