package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	log "github.com/sirupsen/logrus"
)

// ProjectCache stores computed values per project. Keys belonging to a
// project are tracked so that all of them can be dropped at once when the
// project's data changes. Every invalidation bumps the project's generation;
// a value computed under an older generation is never stored.
type ProjectCache[V any] struct {
	store *ristretto.Cache[string, V]
	ttl   time.Duration

	mu   sync.Mutex
	keys map[int]map[string]struct{}
	gens map[int]uint64
}

func NewProjectCache[V any](maxCost int64, ttl time.Duration) (*ProjectCache[V], error) {
	store, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
		// each value costs 1, MaxCost is a value count
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &ProjectCache[V]{store: store, ttl: ttl, keys: make(map[int]map[string]struct{}), gens: make(map[int]uint64)}, nil
}

func key(projectId int, subKey string) string {
	return strconv.Itoa(projectId) + "/" + subKey
}

func (c *ProjectCache[V]) Get(projectId int, subKey string) (V, bool) {
	return c.store.Get(key(projectId, subKey))
}

// Generation must be read before loading the data a value is computed from.
func (c *ProjectCache[V]) Generation(projectId int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[projectId]
}

// Set stores value unless projectId was invalidated after gen was read.
func (c *ProjectCache[V]) Set(projectId int, subKey string, gen uint64, value V) bool {
	k := key(projectId, subKey)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[projectId] != gen {
		log.Debugf("dropping %s computed before an invalidation", k)
		return false
	}
	if c.keys[projectId] == nil {
		c.keys[projectId] = make(map[string]struct{})
	}
	c.keys[projectId][k] = struct{}{}
	if !c.store.SetWithTTL(k, value, 1, c.ttl) {
		log.Debugf("cache rejected key %s", k)
		return false
	}
	c.store.Wait()
	return true
}

// Invalidate drops every value cached for projectId.
func (c *ProjectCache[V]) Invalidate(projectId int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[projectId]++
	keys := c.keys[projectId]
	delete(c.keys, projectId)
	for k := range keys {
		c.store.Del(k)
	}
	log.Debugf("invalidated %d cached values of project %d", len(keys), projectId)
}

func (c *ProjectCache[V]) Close() {
	c.store.Close()
}
