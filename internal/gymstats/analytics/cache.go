package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	versionKeyPrefix = "gymtracker::progression-version::"
	entryKeyPrefix   = "gymtracker::progression::"

	DefaultCacheTTL = 10 * time.Minute
	// freecache enforces a 512KB minimum anyway
	DefaultL1Size = 8 * 1024 * 1024

	// unknownVersion marks a lookup that could not read the owner's version; nothing is stored under it
	unknownVersion int64 = -1
)

// ProgressionCache keeps computed progressions in redis with a small in-process
// L1 in front. Entries are keyed by a per-owner version, bumped on every change
// to the owner's sets, so an outdated entry is never read again and just expires.
// Redis failures only cost a cache miss.
//
// All keys live under the namespace of the store the progressions are computed
// from, since owner ids are only unique within one store.
//
// An owner whose version bump failed is kept dirty: lookups for it are misses,
// and nothing is stored for it, until a retried bump succeeds.
type ProgressionCache struct {
	rdb            *redis.Client
	namespace      string
	l1             *freecache.Cache
	ttl            time.Duration
	metricsManager *metrics.Manager

	dirtyMutex sync.Mutex
	dirty      map[int64]struct{}
}

func NewProgressionCache(
	rdb *redis.Client,
	namespace string,
	l1Size int,
	ttl time.Duration,
	metricsManager *metrics.Manager,
) *ProgressionCache {
	if l1Size <= 0 {
		l1Size = DefaultL1Size
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ProgressionCache{
		rdb:            rdb,
		namespace:      namespace,
		l1:             freecache.NewCache(l1Size),
		ttl:            ttl,
		metricsManager: metricsManager,
		dirty:          make(map[int64]struct{}),
	}
}

func (c *ProgressionCache) versionKey(ownerID int64) string {
	return fmt.Sprintf("%s%s::%d", versionKeyPrefix, c.namespace, ownerID)
}

func (c *ProgressionCache) entryKey(ownerID, version int64, exerciseName string) string {
	return fmt.Sprintf("%s%s::%d::%d::%s", entryKeyPrefix, c.namespace, ownerID, version, exerciseName)
}

// Lookup returns the cached progression, if any, and the owner's current version,
// which must be passed to Store along with a freshly computed progression.
func (c *ProgressionCache) Lookup(ctx context.Context, ownerID int64, exerciseName string) (Progression, int64, bool) {
	if c.isDirty(ownerID) {
		// nothing is cached under a freshly bumped version
		version, _ := c.bumpVersion(ctx, ownerID)
		c.miss()
		return nil, version, false
	}

	version, err := c.rdb.Get(ctx, c.versionKey(ownerID)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("progression cache: get version for owner %d: %s", ownerID, err)
			c.miss()
			return nil, unknownVersion, false
		}
		version = 0
	}

	key := c.entryKey(ownerID, version, exerciseName)
	if data, err := c.l1.Get([]byte(key)); err == nil {
		if progression, ok := decode(data); ok {
			c.hit()
			return progression, version, true
		}
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("progression cache: get [%s]: %s", key, err)
		}
		c.miss()
		return nil, version, false
	}

	progression, ok := decode(data)
	if !ok {
		c.miss()
		return nil, version, false
	}

	if err := c.l1.Set([]byte(key), data, int(c.ttl.Seconds())); err != nil {
		log.Debugf("progression cache: l1 set [%s]: %s", key, err)
	}
	c.hit()
	return progression, version, true
}

func (c *ProgressionCache) Store(ctx context.Context, ownerID, version int64, exerciseName string, progression Progression) {
	if version == unknownVersion || c.isDirty(ownerID) {
		return
	}

	data, err := json.Marshal(progression)
	if err != nil {
		log.Errorf("progression cache: marshal: %s", err)
		return
	}

	key := c.entryKey(ownerID, version, exerciseName)
	if err := c.l1.Set([]byte(key), data, int(c.ttl.Seconds())); err != nil {
		log.Debugf("progression cache: l1 set [%s]: %s", key, err)
	}
	if err := c.rdb.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		log.Warnf("progression cache: set [%s]: %s", key, err)
	}
}

// SetsChanged bumps the owner's version, which makes all cached progressions of the owner unreachable.
func (c *ProgressionCache) SetsChanged(ctx context.Context, ownerID int64) {
	c.bumpVersion(ctx, ownerID)
}

func (c *ProgressionCache) bumpVersion(ctx context.Context, ownerID int64) (int64, bool) {
	version, err := c.rdb.Incr(ctx, c.versionKey(ownerID)).Result()
	if err != nil {
		log.Errorf("progression cache: bump version for owner %d: %s", ownerID, err)
		c.setDirty(ownerID, true)
		return unknownVersion, false
	}
	c.setDirty(ownerID, false)
	return version, true
}

func (c *ProgressionCache) isDirty(ownerID int64) bool {
	c.dirtyMutex.Lock()
	defer c.dirtyMutex.Unlock()
	_, dirty := c.dirty[ownerID]
	return dirty
}

func (c *ProgressionCache) setDirty(ownerID int64, dirty bool) {
	c.dirtyMutex.Lock()
	defer c.dirtyMutex.Unlock()
	if dirty {
		c.dirty[ownerID] = struct{}{}
	} else {
		delete(c.dirty, ownerID)
	}
}

func (c *ProgressionCache) hit() {
	c.metricsManager.CounterProgressionCache.WithLabelValues("hit").Inc()
}

func (c *ProgressionCache) miss() {
	c.metricsManager.CounterProgressionCache.WithLabelValues("miss").Inc()
}

func decode(data []byte) (Progression, bool) {
	var progression Progression
	if err := json.Unmarshal(data, &progression); err != nil {
		log.Warnf("progression cache: unmarshal cached entry: %s", err)
		return nil, false
	}
	return progression, true
}
