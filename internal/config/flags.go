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

// ParseFlags parses command-line flags. args must not include the program
// name.
//
// Flags:
//
//	-a                 HTTP server address host:port
//	-grpc-address      gRPC server address host:port
//	-d                 server database DSN
//	-l                 client local store DSN
//	-c / -config       config file path (.json, .toml, .yaml)
//	-token-sign-key    token signing key
//	-token-issuer      token issuer
//	-token-duration    issued token lifetime
//	-issue-token       print a token for this user ID and exit
//	-hash-key          request integrity hash key
//	-request-timeout   server request timeout
//	-rate-limit        server: requests per second per user
//	-rate-burst        server: request burst per user
//	-remote            client: sync API HTTP address
//	-remote-grpc       client: sync API gRPC address
//	-transport         client: http or grpc
//	-token             client: bearer token
//	-remote-timeout    client: outbound request timeout
//	-sync-interval     client: sync period
//	-strategy          client: merge strategy
//	-once              client: run one sync cycle and exit
//	-metrics-address   client: metrics endpoint host:port
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-kitchen-sync", flag.ContinueOnError)

	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN, localDSN, configPath string
	var tokenSignKey, tokenIssuer, hashKey string
	var tokenDuration, requestTimeout time.Duration
	var issueTokenFor int64
	var remote, remoteGRPC, transport, token, strategy string
	var remoteTimeout, syncInterval time.Duration
	var once bool
	var rateLimit float64
	var rateBurst int
	var metricsAddress NetAddress

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&localDSN, "l", "", "Local store DSN")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 720h)")
	fs.Int64Var(&issueTokenFor, "issue-token", 0, "Print a token for this user ID and exit")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&remote, "remote", "", "Sync API HTTP address")
	fs.StringVar(&remoteGRPC, "remote-grpc", "", "Sync API gRPC address")
	fs.StringVar(&transport, "transport", "", "Remote transport: http or grpc")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.DurationVar(&remoteTimeout, "remote-timeout", 0, "Outbound request timeout")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Sync interval")
	fs.StringVar(&strategy, "strategy", "", "Merge strategy")
	fs.BoolVar(&once, "once", false, "Run one sync cycle and exit")
	fs.Float64Var(&rateLimit, "rate-limit", 0, "Requests per second per user (0 disables)")
	fs.IntVar(&rateBurst, "rate-burst", 0, "Request burst per user")
	fs.Var(&metricsAddress, "metrics-address", "Metrics endpoint host:port")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			HashKey:       hashKey,
			IssueTokenFor: issueTokenFor,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Local: Local{DSN: localDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
			RateLimit:      rateLimit,
			RateBurst:      rateBurst,
		},
		Adapter: Adapter{
			Transport:      transport,
			HTTPAddress:    remote,
			GRPCAddress:    remoteGRPC,
			RequestTimeout: remoteTimeout,
			Token:          token,
		},
		Workers:  Workers{SyncInterval: syncInterval},
		Sync:     Sync{Strategy: strategy, Once: once},
		Metrics:  Metrics{Address: metricsAddress.String()},
		FilePath: configPath,
	}, nil
}

// String returns host:port, or "" if the address was never set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses host:port. The host must be "localhost" or an IP address.
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

	if port < 1 {
		return errors.New("port number is a positive integer")
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
