package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tuple2048/config"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	calls := 0
	load := func(cfg *config.Config, key string) (any, error) {
		calls++
		return key + "!", nil
	}
	cfg := config.DefaultConfig()
	for i := 0; i < 3; i++ {
		obj, err := Load(cfg, "thing", load)
		is.NoErr(err)
		is.Equal(obj.(string), "thing!")
	}
	is.Equal(calls, 1)
	is.Equal(Loaded(), []string{"thing"})
}

func TestLoadError(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	boom := errors.New("boom")
	_, err := Load(config.DefaultConfig(), "bad", func(*config.Config, string) (any, error) {
		return nil, boom
	})
	is.True(errors.Is(err, boom))
	is.Equal(len(Loaded()), 0)
}

func TestDrain(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	cfg := config.DefaultConfig()
	_, err := Load(cfg, "a", func(*config.Config, string) (any, error) { return 1, nil })
	is.NoErr(err)
	objs := Drain()
	is.Equal(len(objs), 1)
	is.Equal(objs["a"].(int), 1)
	is.Equal(len(Loaded()), 0)
}
