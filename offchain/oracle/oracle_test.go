package oracle

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"
)

const testAddress = "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu"

func TestExtractAddress(t *testing.T) {
	reply := new(dns.Msg)
	reply.Answer = append(reply.Answer, &dns.TXT{
		Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
		Txt: []string{"poolparty=" + testAddress},
	})

	addr, err := extractAddress(reply)
	if err != nil {
		t.Fatalf("extract address: %v", err)
	}
	if addr != testAddress {
		t.Errorf("expected %s, got %s", testAddress, addr)
	}
}

func TestExtractAddressSkipsUnrelatedRecords(t *testing.T) {
	reply := new(dns.Msg)
	reply.Answer = append(reply.Answer,
		&dns.TXT{
			Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
			Txt: []string{"v=spf1 -all"},
		},
		&dns.TXT{
			Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
			Txt: []string{"poolparty=" + testAddress},
		},
	)

	addr, err := extractAddress(reply)
	if err != nil {
		t.Fatalf("extract address: %v", err)
	}
	if addr != testAddress {
		t.Errorf("expected %s, got %s", testAddress, addr)
	}
}

func TestExtractAddressRejectsInvalidAddress(t *testing.T) {
	reply := new(dns.Msg)
	reply.Answer = append(reply.Answer, &dns.TXT{
		Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
		Txt: []string{"poolparty=not-a-bech32-address"},
	})

	if _, err := extractAddress(reply); err == nil {
		t.Error("expected invalid address error")
	}
}

func TestExtractAddressMissingRecord(t *testing.T) {
	reply := new(dns.Msg)
	if _, err := extractAddress(reply); err == nil {
		t.Error("expected missing record error")
	}
}

func TestExtractAddressChunkedTXT(t *testing.T) {
	// Long TXT values arrive split into chunks that must be rejoined
	reply := new(dns.Msg)
	reply.Answer = append(reply.Answer, &dns.TXT{
		Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET},
		Txt: []string{"poolparty=" + testAddress[:10], testAddress[10:]},
	})

	addr, err := extractAddress(reply)
	if err != nil {
		t.Fatalf("extract address: %v", err)
	}
	if addr != testAddress {
		t.Errorf("expected %s, got %s", testAddress, addr)
	}
}

func TestResolutionCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenResolutionCache(path, time.Hour)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get("example.com"); ok {
		t.Error("expected miss on empty cache")
	}

	res := &Resolution{
		Identity:   "example.com",
		Address:    testAddress,
		Source:     "8.8.8.8:53",
		ResolvedAt: time.Now(),
	}
	if err := cache.Set(res); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := cache.Get("example.com")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.Address != testAddress {
		t.Errorf("expected %s, got %s", testAddress, got.Address)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}

	cache.Delete("example.com")
	if _, ok := cache.Get("example.com"); ok {
		t.Error("expected miss after delete")
	}
}

func TestResolutionCacheExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := OpenResolutionCache(path, time.Millisecond)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	res := &Resolution{
		Identity:   "example.com",
		Address:    testAddress,
		ResolvedAt: time.Now().Add(-time.Second),
	}
	if err := cache.Set(res); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok := cache.Get("example.com"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestResolutionCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := OpenResolutionCache(path, time.Hour)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if err := cache.Set(&Resolution{
		Identity:   "example.com",
		Address:    testAddress,
		ResolvedAt: time.Now(),
	}); err != nil {
		t.Fatalf("set: %v", err)
	}
	cache.Close()

	// Reopen and verify the entry survived
	cache, err = OpenResolutionCache(path, time.Hour)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache.Close()

	got, ok := cache.Get("example.com")
	if !ok {
		t.Fatal("expected entry to survive reopen")
	}
	if got.Address != testAddress {
		t.Errorf("expected %s, got %s", testAddress, got.Address)
	}
}

func TestMockSubmitter(t *testing.T) {
	sub := NewMockSubmitter()

	if err := sub.SubmitConfigurator(context.Background(), "pool-1", testAddress); err != nil {
		t.Fatalf("submit: %v", err)
	}

	submissions := sub.GetSubmissions()
	if len(submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(submissions))
	}
	if submissions[0].PoolID != "pool-1" || submissions[0].Configurator != testAddress {
		t.Errorf("unexpected submission: %+v", submissions[0])
	}

	status := sub.GetStatus()
	if status.TotalSubmissions != 1 {
		t.Errorf("expected 1 total submission, got %d", status.TotalSubmissions)
	}

	sub.SetSimulateFailure(true)
	if err := sub.SubmitConfigurator(context.Background(), "pool-2", testAddress); err == nil {
		t.Error("expected simulated failure")
	}
}

func TestOracleCachedResolutionSubmits(t *testing.T) {
	config := DefaultConfig()
	config.CachePath = filepath.Join(t.TempDir(), "cache.db")
	config.RefreshInterval = time.Hour

	sub := NewMockSubmitter()
	o, err := NewOracle(config, sub)
	if err != nil {
		t.Fatalf("new oracle: %v", err)
	}

	// Seed the cache so no DNS query is needed
	if err := o.cache.Set(&Resolution{
		Identity:   "example.com",
		Address:    testAddress,
		ResolvedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := o.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	o.EnqueuePool("pool-1", "example.com")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sub.GetSubmissions()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := o.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	submissions := sub.GetSubmissions()
	if len(submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(submissions))
	}
	if submissions[0].PoolID != "pool-1" || submissions[0].Configurator != testAddress {
		t.Errorf("unexpected submission: %+v", submissions[0])
	}
}
