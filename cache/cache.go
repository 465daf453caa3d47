package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/config"
)

// The cache holds large objects that should only be built once per
// process, such as tuple tables, which can take gigabytes and a long time
// to load. Objects are keyed by a prefixed name, e.g. "tuple:11a".

type cache struct {
	sync.Mutex
	objects map[string]any
}

type loadFunc func(cfg *config.Config, key string) (any, error)

// GlobalObjectCache is our global object cache.
var GlobalObjectCache *cache

func (c *cache) load(cfg *config.Config, key string, loadFunc loadFunc) error {
	log.Debug().Str("key", key).Msg("loading into cache")

	obj, err := loadFunc(cfg, key)
	if err != nil {
		return err
	}
	c.objects[key] = obj

	return nil
}

func (c *cache) get(cfg *config.Config, key string, loadFunc loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	if err := c.load(cfg, key, loadFunc); err != nil {
		return nil, err
	}
	return c.objects[key], nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object for key, calling loadFunc the first time the
// key is asked for.
func Load(cfg *config.Config, key string, loadFunc loadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(cfg, key, loadFunc)
}

// Loaded returns the keys currently in the cache.
func Loaded() []string {
	if GlobalObjectCache == nil {
		return nil
	}
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	keys := make([]string, 0, len(GlobalObjectCache.objects))
	for k := range GlobalObjectCache.objects {
		keys = append(keys, k)
	}
	return keys
}

// Drain empties the cache and returns what it held, so the caller can
// release each object.
func Drain() map[string]any {
	if GlobalObjectCache == nil {
		return nil
	}
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	objs := GlobalObjectCache.objects
	GlobalObjectCache.objects = make(map[string]any)
	return objs
}
