package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hammamikhairi/proctor/internal/logger"
)

// DefaultMemoryTTL is how long synthesized audio stays in memory after its
// last store. A session rarely repeats a phrase after the rules are read,
// so memory is released while the disk tier keeps the warm start.
const DefaultMemoryTTL = 30 * time.Minute

// AudioCache is a thread-safe two-tier cache (in-memory + filesystem) for
// synthesized audio. The cache key is sha256(voice + ":" + text) so a voice
// change automatically causes cache misses until the voice is switched back.
//
// Disk behaviour is controlled by diskWrite:
//
//	diskWrite=true  -> reads from mem, then disk; writes to both.
//	diskWrite=false -> reads from mem, then disk; writes to mem only.
type AudioCache struct {
	mem       *gocache.Cache // hash -> WAV bytes
	log       *logger.Logger
	voice     string
	cacheDir  string // filesystem cache directory (empty = no disk layer)
	diskWrite bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewAudioCache creates an audio cache. An empty cacheDir disables the disk
// layer; memTTL <= 0 keeps entries in memory for the process lifetime.
func NewAudioCache(voice, cacheDir string, diskWrite bool, memTTL time.Duration, log *logger.Logger) *AudioCache {
	var mem *gocache.Cache
	if memTTL <= 0 {
		mem = gocache.New(gocache.NoExpiration, 0)
	} else {
		mem = gocache.New(memTTL, memTTL/2)
	}

	c := &AudioCache{
		mem:       mem,
		log:       log,
		voice:     voice,
		cacheDir:  cacheDir,
		diskWrite: diskWrite,
	}

	if cacheDir != "" && diskWrite {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("cache: failed to create cache dir %s: %v", cacheDir, err)
		}
	}

	return c
}

// Get returns cached audio for the given text and true, or nil and false.
// It checks memory first, then falls back to the disk cache.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.hashKey(text)

	if v, ok := c.mem.Get(key); ok {
		data := v.([]byte)
		c.hits.Add(1)
		c.log.Debug("cache hit (mem): %s (%d bytes)", truncate(text, 40), len(data))
		return data, true
	}

	if c.cacheDir != "" {
		if diskData, ok := c.readDisk(key); ok {
			// Promote to memory for faster subsequent hits.
			c.mem.SetDefault(key, diskData)
			c.hits.Add(1)
			c.log.Debug("cache hit (disk): %s (%d bytes)", truncate(text, 40), len(diskData))
			return diskData, true
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Put stores audio data for the given text. Always writes to memory; writes
// to disk only when diskWrite is enabled.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.hashKey(text)
	c.mem.SetDefault(key, audio)

	c.log.Debug("cache store (mem): %s (%d bytes, %d entries)", truncate(text, 40), len(audio), c.mem.ItemCount())

	if c.cacheDir != "" && c.diskWrite {
		c.writeDisk(key, audio)
	}
}

// Has returns true if audio for the text is cached (memory or disk).
func (c *AudioCache) Has(text string) bool {
	key := c.hashKey(text)
	if _, ok := c.mem.Get(key); ok {
		return true
	}
	if c.cacheDir != "" {
		_, err := os.Stat(c.diskPath(key))
		return err == nil
	}
	return false
}

// Len returns the number of in-memory entries, including expired ones not
// yet swept.
func (c *AudioCache) Len() int { return c.mem.ItemCount() }

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear empties the in-memory cache. The disk cache is NOT cleared.
func (c *AudioCache) Clear() {
	c.mem.Flush()
	c.hits.Store(0)
	c.misses.Store(0)
	c.log.Debug("cache cleared (mem)")
}

func (c *AudioCache) hashKey(text string) string {
	h := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *AudioCache) diskPath(key string) string {
	return filepath.Join(c.cacheDir, key+".wav")
}

func (c *AudioCache) readDisk(key string) ([]byte, bool) {
	data, err := os.ReadFile(c.diskPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *AudioCache) writeDisk(key string, audio []byte) {
	path := c.diskPath(key)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		c.log.Error("cache: disk write failed for %s: %v", path, err)
	} else {
		c.log.Debug("cache store (disk): %s (%d bytes)", key[:12], len(audio))
	}
}
