package oracle

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/miekg/dns"

	"github.com/openalpha/poolparty/metrics"
)

// TXT record convention for identity ownership proofs. The owner of a
// sale identity publishes a TXT record on the identity's domain:
//
//	example.sale.  300  IN  TXT  "poolparty=cosmos1..."
//
// The oracle resolves it and binds the address as the pool's
// configurator on chain.
const txtPrefix = "poolparty="

// Config holds the oracle configuration
type Config struct {
	DNSServers      []string      // DNS servers to query, host:port
	ResolveTimeout  time.Duration // Per-query timeout
	RefreshInterval time.Duration // Retry interval for unresolved identities
	CachePath       string        // Path to the bbolt cache database
	CacheTTL        time.Duration // How long cached resolutions stay valid
	ChainRPCURL     string        // Chain RPC URL for submission
}

// DefaultConfig returns the default oracle configuration
func DefaultConfig() *Config {
	return &Config{
		DNSServers:      []string{"8.8.8.8:53", "1.1.1.1:53"},
		ResolveTimeout:  5 * time.Second,
		RefreshInterval: 30 * time.Second,
		CachePath:       "oracle-cache.db",
		CacheTTL:        24 * time.Hour,
		ChainRPCURL:     "http://localhost:26657",
	}
}

// Oracle resolves sale identities to configurator addresses via DNS TXT
// records and submits the bindings on chain
type Oracle struct {
	config    *Config
	cache     *ResolutionCache
	dnsClient *dns.Client
	submitter TxSubmitter
	collector *metrics.Collector

	// Identities awaiting a successful resolution, poolID -> request
	pending map[string]*Request
	mu      sync.RWMutex

	// Channel for incoming resolution requests
	requestCh chan *Request

	// Control channels
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Request asks the oracle to resolve one pool's identity
type Request struct {
	RequestID   string
	PoolID      string
	Identity    string
	SubmittedAt time.Time
	Attempts    int
}

// NewOracle creates a new identity oracle instance
func NewOracle(config *Config, submitter TxSubmitter) (*Oracle, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if submitter == nil {
		submitter = NewMockSubmitter()
	}

	cache, err := OpenResolutionCache(config.CachePath, config.CacheTTL)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		config:    config,
		cache:     cache,
		dnsClient: &dns.Client{Timeout: config.ResolveTimeout},
		submitter: submitter,
		collector: metrics.GetCollector(),
		pending:   make(map[string]*Request),
		requestCh: make(chan *Request, 1000),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start starts the oracle
func (o *Oracle) Start(ctx context.Context) error {
	log.Println("Starting identity oracle...")

	o.wg.Add(1)
	go o.eventLoop(ctx)

	o.wg.Add(1)
	go o.refreshLoop(ctx)

	log.Println("Identity oracle started")
	return nil
}

// Stop stops the oracle
func (o *Oracle) Stop() error {
	log.Println("Stopping identity oracle...")
	close(o.stopCh)
	o.wg.Wait()
	err := o.cache.Close()
	log.Println("Identity oracle stopped")
	return err
}

// EnqueuePool asks the oracle to resolve a pool's identity and bind the
// resulting address as its configurator
func (o *Oracle) EnqueuePool(poolID, identity string) string {
	req := &Request{
		RequestID:   uuid.New().String(),
		PoolID:      poolID,
		Identity:    identity,
		SubmittedAt: time.Now(),
	}
	o.requestCh <- req
	return req.RequestID
}

// eventLoop processes incoming resolution requests
func (o *Oracle) eventLoop(ctx context.Context) {
	defer o.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopCh:
			return
		case req := <-o.requestCh:
			if err := o.handleRequest(ctx, req); err != nil {
				log.Printf("Resolution failed for %s (pool %s): %v", req.Identity, req.PoolID, err)
				o.markPending(req)
			}
		}
	}
}

// refreshLoop periodically retries identities that have not resolved yet
func (o *Oracle) refreshLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.stopCh:
			return
		case <-ticker.C:
			o.retryPending(ctx)
		}
	}
}

// retryPending re-attempts every unresolved identity
func (o *Oracle) retryPending(ctx context.Context) {
	o.mu.RLock()
	requests := make([]*Request, 0, len(o.pending))
	for _, req := range o.pending {
		requests = append(requests, req)
	}
	o.mu.RUnlock()

	for _, req := range requests {
		if err := o.handleRequest(ctx, req); err != nil {
			log.Printf("Retry %d failed for %s (pool %s): %v", req.Attempts, req.Identity, req.PoolID, err)
		}
	}
}

// handleRequest resolves one identity and submits the binding on success
func (o *Oracle) handleRequest(ctx context.Context, req *Request) error {
	req.Attempts++

	res, err := o.resolveIdentity(req.Identity)
	if err != nil {
		return err
	}

	if err := o.submitter.SubmitConfigurator(ctx, req.PoolID, res.Address); err != nil {
		return fmt.Errorf("failed to submit configurator: %w", err)
	}

	o.mu.Lock()
	delete(o.pending, req.PoolID)
	o.mu.Unlock()

	log.Printf("Resolved %s -> %s (pool %s, request %s)", req.Identity, res.Address, req.PoolID, req.RequestID)
	return nil
}

// markPending records a request for the refresh loop to retry
func (o *Oracle) markPending(req *Request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[req.PoolID] = req
}

// resolveIdentity resolves an identity via the cache, falling back to DNS
func (o *Oracle) resolveIdentity(identity string) (*Resolution, error) {
	if res, ok := o.cache.Get(identity); ok {
		o.collector.RecordOracleCacheLookup(true)
		return res, nil
	}
	o.collector.RecordOracleCacheLookup(false)

	res, err := o.resolveDNS(identity)
	if err != nil {
		return nil, err
	}

	if err := o.cache.Set(res); err != nil {
		log.Printf("Failed to cache resolution for %s: %v", identity, err)
	}
	return res, nil
}

// resolveDNS queries the configured DNS servers for the identity's TXT
// record and extracts the configurator address
func (o *Oracle) resolveDNS(identity string) (*Resolution, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(identity), dns.TypeTXT)
	msg.RecursionDesired = true

	start := time.Now()
	var lastErr error
	for _, server := range o.config.DNSServers {
		reply, _, err := o.dnsClient.Exchange(msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if reply.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("dns query returned %s", dns.RcodeToString[reply.Rcode])
			continue
		}

		address, err := extractAddress(reply)
		if err != nil {
			lastErr = err
			continue
		}

		o.collector.RecordOracleResolution("success", server, float64(time.Since(start).Milliseconds()))
		return &Resolution{
			Identity:   identity,
			Address:    address,
			Source:     server,
			ResolvedAt: time.Now(),
		}, nil
	}

	o.collector.RecordOracleResolution("failure", "none", float64(time.Since(start).Milliseconds()))
	if lastErr == nil {
		lastErr = fmt.Errorf("no DNS servers configured")
	}
	return nil, fmt.Errorf("failed to resolve %s: %w", identity, lastErr)
}

// extractAddress scans the TXT answers for the ownership record and
// validates the address
func extractAddress(reply *dns.Msg) (string, error) {
	for _, answer := range reply.Answer {
		txt, ok := answer.(*dns.TXT)
		if !ok {
			continue
		}
		// Long TXT values are split into 255-byte chunks
		joined := strings.Join(txt.Txt, "")
		if !strings.HasPrefix(joined, txtPrefix) {
			continue
		}
		address := strings.TrimSpace(strings.TrimPrefix(joined, txtPrefix))
		if _, err := sdk.AccAddressFromBech32(address); err != nil {
			return "", fmt.Errorf("invalid address in TXT record: %w", err)
		}
		return address, nil
	}
	return "", fmt.Errorf("no %s TXT record found", txtPrefix)
}

// Stats returns oracle statistics
type Stats struct {
	PendingCount int
	CacheSize    int
	QueueDepth   int
}

// GetStats returns current oracle statistics
func (o *Oracle) GetStats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return Stats{
		PendingCount: len(o.pending),
		CacheSize:    o.cache.Len(),
		QueueDepth:   len(o.requestCh),
	}
}
