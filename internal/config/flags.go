package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses server configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config JSON or YAML file path with configs
//	-trusted-keys PEM file with trusted client public keys
//	-cache-dir badger cache directory
//	-cache-ttl record projection TTL (e.g. "1h")
//	-request-timeout request timeout (e.g. "30s", "1m")
//	-rate-limit requests per second, 0 disables limiting
func ParseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress NetAddress
	var databaseDSN string
	var configPath string
	var trustedKeys string
	var cacheDir string
	var cacheTTL time.Duration
	var requestTimeout time.Duration
	var rateLimit float64

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&trustedKeys, "trusted-keys", "", "PEM file with trusted public keys")
	fs.StringVar(&cacheDir, "cache-dir", "", "Cache directory")
	fs.DurationVar(&cacheTTL, "cache-ttl", 0, "Cache TTL (e.g., 1h)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Requests per second, 0 disables limiting")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TrustedKeysPath: trustedKeys,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Cache: Cache{
			Dir: cacheDir,
			TTL: cacheTTL,
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
			RateLimit:      rateLimit,
		},
		FilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
