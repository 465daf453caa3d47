package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/config"
	"github.com/domino14/tuple2048/tuple"
)

// job is one shape and the key range to fill.
type job struct {
	shape      *tuple.Shape
	start, end uint64
}

// parseJob reads "name" or "name:start-end".
func parseJob(arg string) (job, error) {
	name, rng, hasRange := strings.Cut(arg, ":")
	shape, err := tuple.ShapeByName(name)
	if err != nil {
		return job{}, err
	}
	j := job{shape: shape, end: shape.NumTuples()}
	if !hasRange {
		return j, nil
	}
	from, to, ok := strings.Cut(rng, "-")
	if !ok {
		return job{}, fmt.Errorf("bad key range %q, want start-end", rng)
	}
	if j.start, err = strconv.ParseUint(from, 10, 64); err != nil {
		return job{}, err
	}
	if to != "" {
		if j.end, err = strconv.ParseUint(to, 10, 64); err != nil {
			return job{}, err
		}
	}
	if j.start > j.end {
		return job{}, fmt.Errorf("bad key range %q, start after end", rng)
	}
	return j, nil
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	args := cfg.Args()
	if len(args) == 0 {
		args = []string{cfg.GetString(config.ConfigDefaultShape)}
	}
	opts, err := tuple.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, arg := range args {
		j, err := parseJob(arg)
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		t := tuple.New(j.shape, opts)
		started := time.Now()
		gs, genErr := t.Generate(ctx, j.start, j.end)
		log.Info().Str("shape", j.shape.Name).Uint64("start", j.start).Uint64("end", j.end).
			Uint64("visited", gs.Visited).Uint64("computed", gs.Computed).
			Uint64("entries", t.Table().Count()).Dur("elapsed", time.Since(started)).
			Msg("generate-done")
		// whatever was computed is worth keeping, even after an interrupt
		if err := t.Close(); err != nil {
			log.Fatal().Err(err).Msg("")
		}
		if genErr != nil {
			log.Info().Err(genErr).Msg("stopped")
			return
		}
	}
}
