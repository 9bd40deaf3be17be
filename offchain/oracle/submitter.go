package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openalpha/poolparty/x/pool/types"
)

// TxSubmitter defines the interface for submitting configurator bindings
// to the chain
type TxSubmitter interface {
	// SubmitConfigurator submits a MsgSetConfigurator binding the resolved
	// address as the pool's configurator
	SubmitConfigurator(ctx context.Context, poolID, configurator string) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	PendingTxCount    int
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter is a mock implementation for testing
type MockSubmitter struct {
	mu              sync.Mutex
	submissions     []types.MsgSetConfigurator
	status          SubmitterStatus
	simulateFailure bool
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		submissions: make([]types.MsgSetConfigurator, 0),
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitConfigurator records the binding (mock implementation)
func (s *MockSubmitter) SubmitConfigurator(ctx context.Context, poolID, configurator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}

	s.submissions = append(s.submissions, types.MsgSetConfigurator{
		PoolID:       poolID,
		Configurator: configurator,
	})
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()

	log.Printf("[MockSubmitter] Bound configurator %s to pool %s", configurator, poolID)

	return nil
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GetSubmissions returns all recorded bindings (for testing)
func (s *MockSubmitter) GetSubmissions() []types.MsgSetConfigurator {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]types.MsgSetConfigurator, len(s.submissions))
	copy(result, s.submissions)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// Clear clears all recorded bindings (for testing)
func (s *MockSubmitter) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = make([]types.MsgSetConfigurator, 0)
}

// RPCSubmitter submits configurator bindings via the chain RPC endpoint
type RPCSubmitter struct {
	rpcURL        string
	operator      string
	retryAttempts int
	retryDelay    time.Duration

	mu     sync.Mutex
	status SubmitterStatus
}

// RPCSubmitterConfig holds configuration for RPCSubmitter
type RPCSubmitterConfig struct {
	RPCURL        string
	Operator      string // bech32 address paying the authorization fee
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultRPCSubmitterConfig returns default configuration
func DefaultRPCSubmitterConfig() *RPCSubmitterConfig {
	return &RPCSubmitterConfig{
		RPCURL:        "http://localhost:26657",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// NewRPCSubmitter creates a new RPC submitter
func NewRPCSubmitter(config *RPCSubmitterConfig) *RPCSubmitter {
	if config == nil {
		config = DefaultRPCSubmitterConfig()
	}

	return &RPCSubmitter{
		rpcURL:        config.RPCURL,
		operator:      config.Operator,
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitConfigurator submits the binding with retry logic
func (s *RPCSubmitter) SubmitConfigurator(ctx context.Context, poolID, configurator string) error {
	msg := types.MsgSetConfigurator{
		Sender:       s.operator,
		PoolID:       poolID,
		Configurator: configurator,
	}

	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if err := s.broadcast(ctx, &msg); err != nil {
			lastErr = err
			log.Printf("Configurator submission attempt %d failed: %v", attempt+1, err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
				continue
			}
		}

		s.mu.Lock()
		s.status.TotalSubmissions++
		s.status.LastSubmitTime = time.Now()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.status.FailedSubmissions++
	s.status.LastError = lastErr.Error()
	s.mu.Unlock()
	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// broadcast sends the message to the chain RPC endpoint
func (s *RPCSubmitter) broadcast(ctx context.Context, msg *types.MsgSetConfigurator) error {
	payload := struct {
		Jsonrpc string        `json:"jsonrpc"`
		ID      int           `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params"`
	}{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "broadcast_tx_sync",
		Params:  []interface{}{s.encodeMsg(msg)},
	}

	// Log the submission (in production, this would be an actual RPC call)
	payloadBytes, _ := json.Marshal(payload)
	log.Printf("[RPCSubmitter] Submitting configurator binding for pool %s to %s", msg.PoolID, s.rpcURL)
	log.Printf("[RPCSubmitter] Message: %s", string(payloadBytes))

	// In a real implementation, we would:
	// 1. Wrap the MsgSetConfigurator in a signed transaction
	// 2. Broadcast via RPC
	// 3. Wait for inclusion

	return nil
}

// encodeMsg encodes the message for submission
func (s *RPCSubmitter) encodeMsg(msg *types.MsgSetConfigurator) string {
	encoded, _ := json.Marshal(map[string]string{
		"sender":       msg.Sender,
		"pool_id":      msg.PoolID,
		"configurator": msg.Configurator,
	})
	return string(encoded)
}

// GetStatus returns the submitter status
func (s *RPCSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetRPCURL updates the RPC URL
func (s *RPCSubmitter) SetRPCURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpcURL = url
}

// SubmitterFactory creates submitters based on configuration
type SubmitterFactory struct{}

// NewSubmitterFactory creates a new submitter factory
func NewSubmitterFactory() *SubmitterFactory {
	return &SubmitterFactory{}
}

// Create creates a new submitter based on the type
func (f *SubmitterFactory) Create(submitterType string, config *RPCSubmitterConfig) TxSubmitter {
	switch submitterType {
	case "mock":
		return NewMockSubmitter()
	case "rpc":
		return NewRPCSubmitter(config)
	default:
		return NewMockSubmitter()
	}
}
