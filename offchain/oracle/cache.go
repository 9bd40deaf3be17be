package oracle

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketResolutions = []byte("resolutions")

// Resolution is a cached identity-to-address binding
type Resolution struct {
	Identity   string    `json:"identity"`
	Address    string    `json:"address"`
	Source     string    `json:"source"` // DNS server that answered
	ResolvedAt time.Time `json:"resolved_at"`
}

// ResolutionCache is a bbolt-backed cache of resolved identities. It
// survives oracle restarts so identities are not re-resolved on every
// boot.
type ResolutionCache struct {
	db  *bbolt.DB
	ttl time.Duration
}

// OpenResolutionCache opens (or creates) the cache database at path
func OpenResolutionCache(path string, ttl time.Duration) (*ResolutionCache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResolutions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &ResolutionCache{db: db, ttl: ttl}, nil
}

// Get retrieves a resolution from the cache. Expired entries are treated
// as misses and removed.
func (c *ResolutionCache) Get(identity string) (*Resolution, bool) {
	var res Resolution
	found := false

	_ = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketResolutions).Get([]byte(identity))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &res); err != nil {
			return nil
		}
		found = true
		return nil
	})

	if !found {
		return nil, false
	}
	if c.ttl > 0 && time.Since(res.ResolvedAt) > c.ttl {
		c.Delete(identity)
		return nil, false
	}
	return &res, true
}

// Set stores a resolution in the cache
func (c *ResolutionCache) Set(res *Resolution) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResolutions).Put([]byte(res.Identity), data)
	})
}

// Delete removes a resolution from the cache
func (c *ResolutionCache) Delete(identity string) {
	_ = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResolutions).Delete([]byte(identity))
	})
}

// Len returns the number of cached resolutions, expired entries included
func (c *ResolutionCache) Len() int {
	count := 0
	_ = c.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketResolutions).Stats().KeyN
		return nil
	})
	return count
}

// GetAll returns all cached resolutions
func (c *ResolutionCache) GetAll() []*Resolution {
	resolutions := make([]*Resolution, 0)
	_ = c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketResolutions).ForEach(func(_, v []byte) error {
			var res Resolution
			if err := json.Unmarshal(v, &res); err == nil {
				resolutions = append(resolutions, &res)
			}
			return nil
		})
	})
	return resolutions
}

// Close closes the underlying database
func (c *ResolutionCache) Close() error {
	return c.db.Close()
}
