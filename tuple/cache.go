package tuple

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/tuple2048/cache"
	"github.com/domino14/tuple2048/config"
	"github.com/domino14/tuple2048/table"
)

var CacheKeyPrefix = "tuple:"

// OptionsFromConfig reads tuple options from cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	codec, err := table.ParseCodec(cfg.GetString(config.ConfigSnapshotCodec))
	if err != nil {
		return Options{}, err
	}
	p4 := cfg.GetFloat64(config.ConfigTile4Prob)
	if p4 < 0 || p4 > 1 {
		return Options{}, fmt.Errorf("%s must be in [0, 1], got %v", config.ConfigTile4Prob, p4)
	}
	opts := DefaultOptions()
	opts.DataPath = cfg.GetString(config.ConfigDataPath)
	opts.Tile4Prob = p4
	opts.SaveThreshold = cfg.GetFloat64(config.ConfigSaveThreshold)
	opts.Codec = codec
	if n := cfg.GetUint64(config.ConfigProgressInterval); n > 0 {
		opts.ProgressInterval = n
	}
	return opts, nil
}

// CacheLoadFunc is the function that loads a tuple into the global cache.
func CacheLoadFunc(cfg *config.Config, key string) (any, error) {
	shape, err := ShapeByName(strings.TrimPrefix(key, CacheKeyPrefix))
	if err != nil {
		return nil, err
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return New(shape, opts), nil
}

// Get loads a named tuple from the cache, or builds it and loads its
// snapshot the first time.
func Get(cfg *config.Config, name string) (*Tuple, error) {
	obj, err := cache.Load(cfg, CacheKeyPrefix+name, CacheLoadFunc)
	if err != nil {
		return nil, err
	}
	ret, ok := obj.(*Tuple)
	if !ok {
		return nil, errors.New("could not read tuple from cache")
	}
	return ret, nil
}
