package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openalpha/poolparty/offchain/oracle"
)

// Config holds the application configuration
type Config struct {
	DNSServers      []string      `json:"dns_servers"`
	ResolveTimeout  time.Duration `json:"resolve_timeout"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	CachePath       string        `json:"cache_path"`
	CacheTTL        time.Duration `json:"cache_ttl"`
	ChainRPCURL     string        `json:"chain_rpc_url"`
	Operator        string        `json:"operator"`       // address paying the authorization fee
	SubmitterType   string        `json:"submitter_type"` // "mock" or "rpc"
	Demo            bool          `json:"demo"`           // run demo mode
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DNSServers:      []string{"8.8.8.8:53", "1.1.1.1:53"},
		ResolveTimeout:  5 * time.Second,
		RefreshInterval: 30 * time.Second,
		CachePath:       "oracle-cache.db",
		CacheTTL:        24 * time.Hour,
		ChainRPCURL:     "http://localhost:26657",
		SubmitterType:   "mock",
		Demo:            false,
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	dnsServers := flag.String("dns", "", "Comma-separated DNS servers (host:port)")
	refreshInterval := flag.Duration("refresh-interval", 0, "Retry interval for unresolved identities")
	cachePath := flag.String("cache", "", "Path to resolution cache database")
	rpcURL := flag.String("rpc", "", "Chain RPC URL")
	operator := flag.String("operator", "", "Operator address paying the authorization fee")
	submitterType := flag.String("submitter", "", "Submitter type (mock or rpc)")
	demo := flag.Bool("demo", false, "Run demo mode with sample identities")
	flag.Parse()

	// Load configuration
	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override with command line flags
	if *dnsServers != "" {
		config.DNSServers = strings.Split(*dnsServers, ",")
	}
	if *refreshInterval > 0 {
		config.RefreshInterval = *refreshInterval
	}
	if *cachePath != "" {
		config.CachePath = *cachePath
	}
	if *rpcURL != "" {
		config.ChainRPCURL = *rpcURL
	}
	if *operator != "" {
		config.Operator = *operator
	}
	if *submitterType != "" {
		config.SubmitterType = *submitterType
	}
	if *demo {
		config.Demo = true
	}

	// Print configuration
	log.Println("=== PoolParty Identity Oracle ===")
	log.Printf("DNS Servers: %s", strings.Join(config.DNSServers, ", "))
	log.Printf("Refresh Interval: %v", config.RefreshInterval)
	log.Printf("Cache: %s (TTL %v)", config.CachePath, config.CacheTTL)
	log.Printf("Chain RPC: %s", config.ChainRPCURL)
	log.Printf("Submitter: %s", config.SubmitterType)
	log.Println("=================================")

	// Create submitter
	factory := oracle.NewSubmitterFactory()
	submitter := factory.Create(config.SubmitterType, &oracle.RPCSubmitterConfig{
		RPCURL:        config.ChainRPCURL,
		Operator:      config.Operator,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	})

	// Create oracle
	oracleConfig := &oracle.Config{
		DNSServers:      config.DNSServers,
		ResolveTimeout:  config.ResolveTimeout,
		RefreshInterval: config.RefreshInterval,
		CachePath:       config.CachePath,
		CacheTTL:        config.CacheTTL,
		ChainRPCURL:     config.ChainRPCURL,
	}
	o, err := oracle.NewOracle(oracleConfig, submitter)
	if err != nil {
		log.Fatalf("Failed to create oracle: %v", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the oracle
	if err := o.Start(ctx); err != nil {
		log.Fatalf("Failed to start oracle: %v", err)
	}

	// Run demo if requested
	if config.Demo {
		go runDemo(o)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Periodic stats logging
	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()

	log.Println("Oracle is running. Press Ctrl+C to stop.")

	for {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
			if err := o.Stop(); err != nil {
				log.Printf("Error stopping oracle: %v", err)
			}
			log.Println("Oracle stopped")
			return
		case <-statsTicker.C:
			stats := o.GetStats()
			log.Printf("Stats: Pending=%d, CacheSize=%d, QueueDepth=%d",
				stats.PendingCount, stats.CacheSize, stats.QueueDepth)
		}
	}
}

// runDemo enqueues sample identities to exercise the resolution path
func runDemo(o *oracle.Oracle) {
	log.Println("Starting demo mode...")
	time.Sleep(time.Second)

	identities := []struct {
		poolID   string
		identity string
	}{
		{"pool-1", "example.com"},
		{"pool-2", "cosmos.network"},
	}

	for _, entry := range identities {
		reqID := o.EnqueuePool(entry.poolID, entry.identity)
		log.Printf("Enqueued %s for pool %s (request %s)", entry.identity, entry.poolID, reqID)
		time.Sleep(100 * time.Millisecond)
	}

	log.Println("Demo identities enqueued; unresolved ones retry on the refresh interval")
}
