package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names understood by ApplyEnv.
const (
	EnvListenAddress = "PHISHSCAN_ADDR"
	EnvPort          = "PORT"
	EnvDNSServer     = "PHISHSCAN_DNS_SERVER"
	EnvProxy         = "PHISHSCAN_PROXY"
	EnvFetchTimeout  = "PHISHSCAN_FETCH_TIMEOUT"
	EnvThreshold     = "PHISHSCAN_THRESHOLD"
)

// DefaultEnvFile is the dotenv file read by the serve command.
const DefaultEnvFile = ".env"

// ApplyEnv overrides cfg with values from the process environment and,
// for keys missing there, from envFile. A missing envFile is not an error.
// PHISHSCAN_ADDR wins over PORT; PORT alone binds every interface.
func (c *Config) ApplyEnv(envFile string) error {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", envFile, err)
		}
		if vals != nil {
			fileVals = vals
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fileVals[key]
	}

	if addr := lookup(EnvListenAddress); addr != "" {
		c.ListenAddress = addr
	} else if port := lookup(EnvPort); port != "" {
		c.ListenAddress = net.JoinHostPort("0.0.0.0", port)
	}

	if v := lookup(EnvDNSServer); v != "" {
		c.DNSServer = v
	}
	if v := lookup(EnvProxy); v != "" {
		c.ProxyAddress = v
	}
	if v := lookup(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		c.FetchTimeout = d
	}
	if v := lookup(EnvThreshold); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvThreshold, err)
		}
		c.Threshold = n
	}
	return nil
}
