// Package mdcache is a persistent cache of rendered Markdown, backed by a bbolt
// database.
package mdcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.mdkit.sh/pkg/errutil"
	"src.mdkit.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[mdcache] ")

const bucketRendered = "rendered"

// How long Open waits for another process to release the database.
const openTimeout = time.Second

var initDB = map[string](func(*bolt.Tx) error){
	"initialize rendered output table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRendered))
		return err
	},
}

// Cache maps keys derived from Markdown sources to rendered output.
type Cache struct {
	db *bolt.DB
}

// Open opens the cache database at the given path, creating it if it doesn't
// exist.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errutil.Multi(err, db.Close())
	}
	logger.Println("opened", path)
	return &Cache{db}, nil
}

// Key returns the cache key for rendering source to the given format with the
// given serialized options.
func Key(format string, options []byte, source string) string {
	h := sha256.New()
	// Each part is terminated by its length, so that different splits of the
	// same bytes produce different keys.
	for _, part := range [][]byte{[]byte(format), options, []byte(source)} {
		h.Write(part)
		fmt.Fprintf(h, "\x00%d\x00", len(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get gets the value stored under key. The second return value reports
// whether the key was found.
func (c *Cache) Get(key string) (string, bool, error) {
	var value string
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRendered))
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, err
}

// Put stores value under key, replacing any old value.
func (c *Cache) Put(key, value string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRendered))
		return b.Put([]byte(key), []byte(value))
	})
}

// Delete deletes the value stored under key. Deleting a key that doesn't
// exist is not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRendered))
		return b.Delete([]byte(key))
	})
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketRendered)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}
