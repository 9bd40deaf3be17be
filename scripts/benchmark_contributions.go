package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openalpha/poolparty/pkg/grpcclient"
)

// ContributeRequest represents the request to contribute to a pool
type ContributeRequest struct {
	PoolID      string `json:"pool_id"`
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
}

// ContributeResponse represents the response
type ContributeResponse struct {
	RequestID        string `json:"request_id"`
	PoolID           string `json:"pool_id"`
	TotalContributed string `json:"total_contributed"`
	Phase            string `json:"phase"`
}

// CreatePoolRequest creates the benchmark pool
type CreatePoolRequest struct {
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
}

// CreatePoolResponse holds the created pool ID
type CreatePoolResponse struct {
	PoolID string `json:"pool_id"`
}

// BenchmarkResults holds all test results
type BenchmarkResults struct {
	Contributions int64
	Success       int64
	Failed        int64
	Latencies     []time.Duration
	mu            sync.Mutex
}

func (r *BenchmarkResults) Add(latency time.Duration, success bool) {
	atomic.AddInt64(&r.Contributions, 1)
	if success {
		atomic.AddInt64(&r.Success, 1)
	} else {
		atomic.AddInt64(&r.Failed, 1)
	}
	r.mu.Lock()
	r.Latencies = append(r.Latencies, latency)
	r.mu.Unlock()
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avg(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	return total / time.Duration(len(latencies))
}

func minLat(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l < m {
			m = l
		}
	}
	return m
}

func maxLat(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l > m {
			m = l
		}
	}
	return m
}

func contribute(client *http.Client, baseURL string, req *ContributeRequest) (time.Duration, bool) {
	body, _ := json.Marshal(req)
	start := time.Now()

	httpReq, err := http.NewRequest("POST", baseURL+"/v1/contribute", bytes.NewReader(body))
	if err != nil {
		return time.Since(start), false
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	latency := time.Since(start)

	if err != nil {
		return latency, false
	}
	defer resp.Body.Close()

	return latency, resp.StatusCode == http.StatusOK
}

func createPool(client *http.Client, baseURL string) (string, error) {
	req := &CreatePoolRequest{
		Identity:    fmt.Sprintf("bench-%d.example.com", time.Now().Unix()),
		Name:        "Benchmark Pool",
		Description: "Throughput test pool",
		Creator:     "cosmos1benchcreator",
	}
	body, _ := json.Marshal(req)

	resp, err := client.Post(baseURL+"/v1/pools", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create pool returned status %d", resp.StatusCode)
	}

	var poolResp CreatePoolResponse
	if err := json.NewDecoder(resp.Body).Decode(&poolResp); err != nil {
		return "", err
	}
	return poolResp.PoolID, nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	count := flag.Int("n", 10000, "Number of contributions")
	concurrency := flag.Int("c", 100, "Concurrency level")
	amount := flag.String("amount", "10000000000000000", "Contribution amount in wei")
	poolID := flag.String("pool", "", "Existing pool ID (created if empty)")
	useGRPC := flag.Bool("grpc", false, "Submit via gRPC instead of the REST API")
	grpcAddr := flag.String("grpc-addr", "localhost:9090", "Chain gRPC address")
	privKey := flag.String("key", "", "Hex private key for gRPC submission")
	outputFile := flag.String("o", "", "Output JSON report file")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║       PoolParty Contribution Benchmark - Throughput Test         ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Configuration:\n")
	fmt.Printf("  API URL:       %s\n", *baseURL)
	fmt.Printf("  Contributions: %d\n", *count)
	fmt.Printf("  Concurrency:   %d\n", *concurrency)
	fmt.Printf("  Amount:        %s wei\n", *amount)
	fmt.Printf("  Transport:     %s\n", transportName(*useGRPC))
	fmt.Println()

	if *useGRPC {
		runGRPCBenchmark(*grpcAddr, *privKey, *poolID, *amount, *count, *concurrency)
		return
	}

	// Check health
	fmt.Print("Checking API health... ")
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        1000,
			MaxIdleConnsPerHost: 200,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("FAILED: status %d\n", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("OK")

	// Set up the target pool
	target := *poolID
	if target == "" {
		fmt.Print("Creating benchmark pool... ")
		target, err = createPool(client, *baseURL)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK (%s)\n", target)
	}
	fmt.Println()

	results := &BenchmarkResults{
		Latencies: make([]time.Duration, 0, *count),
	}

	// Semaphore for concurrency control
	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	// Progress tracking
	var processed int64
	total := int64(*count)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := atomic.LoadInt64(&processed)
				pct := float64(p) / float64(total) * 100
				fmt.Printf("\r  Progress: %d/%d (%.1f%%) | Success: %d | Failed: %d    ",
					p, total, pct,
					atomic.LoadInt64(&results.Success),
					atomic.LoadInt64(&results.Failed))
			}
		}
	}()

	fmt.Println("Starting benchmark...")
	startTime := time.Now()

	for i := 0; i < *count; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			req := &ContributeRequest{
				PoolID:      target,
				Contributor: fmt.Sprintf("cosmos1bench%d", idx),
				Amount:      *amount,
			}

			latency, success := contribute(client, *baseURL, req)
			results.Add(latency, success)
			atomic.AddInt64(&processed, 1)
		}(i)
	}

	wg.Wait()
	close(done)
	elapsed := time.Since(startTime)

	fmt.Printf("\r                                                                              \r")
	fmt.Println()

	printResults(results, elapsed)

	// Save report if requested
	if *outputFile != "" {
		saveReport(*outputFile, *baseURL, target, *amount, *count, *concurrency, results, elapsed)
	}
}

func transportName(grpc bool) string {
	if grpc {
		return "gRPC"
	}
	return "REST"
}

// runGRPCBenchmark submits contributions as signed transactions over gRPC
func runGRPCBenchmark(grpcAddr, privKey, poolID, amount string, count, concurrency int) {
	if privKey == "" {
		fmt.Println("gRPC mode requires -key")
		os.Exit(1)
	}
	if poolID == "" {
		fmt.Println("gRPC mode requires -pool")
		os.Exit(1)
	}

	config := grpcclient.DefaultConfig()
	config.GRPCAddr = grpcAddr
	config.PoolSize = concurrency

	client, err := grpcclient.NewClient(config, privKey)
	if err != nil {
		fmt.Printf("Failed to create gRPC client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	results := &BenchmarkResults{
		Latencies: make([]time.Duration, 0, count),
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	fmt.Println("Starting gRPC benchmark...")
	startTime := time.Now()

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := client.Contribute(context.Background(), poolID, amount)
			results.Add(res.Latency, res.Success)
		}()
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	printResults(results, elapsed)
}

func printResults(results *BenchmarkResults, elapsed time.Duration) {
	successRate := float64(results.Success) / float64(results.Contributions) * 100
	throughput := float64(results.Contributions) / elapsed.Seconds()

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       BENCHMARK RESULTS                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("Test Duration:        %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput:           %.2f contributions/sec\n", throughput)
	fmt.Println()

	fmt.Println("── Contribution Statistics ────────────────────────────────────────")
	fmt.Printf("  Total:              %d\n", results.Contributions)
	fmt.Printf("  Success:            %d\n", results.Success)
	fmt.Printf("  Failed:             %d\n", results.Failed)
	fmt.Printf("  Success Rate:       %.2f%%\n", successRate)
	fmt.Println()

	fmt.Println("── Latency ────────────────────────────────────────────────────────")
	fmt.Printf("  Min:                %v\n", minLat(results.Latencies))
	fmt.Printf("  Max:                %v\n", maxLat(results.Latencies))
	fmt.Printf("  Average:            %v\n", avg(results.Latencies))
	fmt.Printf("  P50 (Median):       %v\n", percentile(results.Latencies, 0.50))
	fmt.Printf("  P90:                %v\n", percentile(results.Latencies, 0.90))
	fmt.Printf("  P95:                %v\n", percentile(results.Latencies, 0.95))
	fmt.Printf("  P99:                %v\n", percentile(results.Latencies, 0.99))
	fmt.Println()

	fmt.Println("── Assessment ─────────────────────────────────────────────────────")
	if successRate >= 99.9 {
		fmt.Println("  ✅ Success Rate:    Excellent (>99.9%)")
	} else if successRate >= 99 {
		fmt.Println("  ✅ Success Rate:    Good (>99%)")
	} else if successRate >= 95 {
		fmt.Println("  ⚠️  Success Rate:    Acceptable (>95%)")
	} else {
		fmt.Println("  ❌ Success Rate:    Poor (<95%)")
	}

	avgLat := avg(results.Latencies)
	if avgLat < 1*time.Millisecond {
		fmt.Println("  ✅ Latency:         Excellent (<1ms avg)")
	} else if avgLat < 10*time.Millisecond {
		fmt.Println("  ✅ Latency:         Good (<10ms avg)")
	} else if avgLat < 100*time.Millisecond {
		fmt.Println("  ⚠️  Latency:         Acceptable (<100ms avg)")
	} else {
		fmt.Println("  ❌ Latency:         High (>100ms avg)")
	}

	if throughput > 10000 {
		fmt.Println("  ✅ Throughput:      Excellent (>10K/s)")
	} else if throughput > 1000 {
		fmt.Println("  ✅ Throughput:      Good (>1K/s)")
	} else if throughput > 100 {
		fmt.Println("  ⚠️  Throughput:      Acceptable (>100/s)")
	} else {
		fmt.Println("  ❌ Throughput:      Low (<100/s)")
	}

	fmt.Println()
	fmt.Println("══════════════════════════════════════════════════════════════════")
}

func saveReport(path, baseURL, poolID, amount string, count, concurrency int, results *BenchmarkResults, elapsed time.Duration) {
	successRate := float64(results.Success) / float64(results.Contributions) * 100
	throughput := float64(results.Contributions) / elapsed.Seconds()

	report := map[string]interface{}{
		"config": map[string]interface{}{
			"api_url":       baseURL,
			"pool_id":       poolID,
			"contributions": count,
			"concurrency":   concurrency,
			"amount":        amount,
		},
		"summary": map[string]interface{}{
			"duration_ms":        elapsed.Milliseconds(),
			"throughput_per_sec": throughput,
			"total":              results.Contributions,
			"success":            results.Success,
			"failed":             results.Failed,
			"success_rate":       successRate,
		},
		"latency": map[string]interface{}{
			"min_us": minLat(results.Latencies).Microseconds(),
			"max_us": maxLat(results.Latencies).Microseconds(),
			"avg_us": avg(results.Latencies).Microseconds(),
			"p50_us": percentile(results.Latencies, 0.50).Microseconds(),
			"p90_us": percentile(results.Latencies, 0.90).Microseconds(),
			"p95_us": percentile(results.Latencies, 0.95).Microseconds(),
			"p99_us": percentile(results.Latencies, 0.99).Microseconds(),
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	file, err := os.Create(path)
	if err != nil {
		fmt.Printf("Failed to create report file: %v\n", err)
		return
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		fmt.Printf("Failed to write report: %v\n", err)
		return
	}
	fmt.Printf("\nReport saved to: %s\n", path)
}
