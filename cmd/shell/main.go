package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/config"
	"github.com/domino14/tuple2048/shell"
)

var GitVersion string

//go:embed tuple2048.txt
var banner string

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func writeMemProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Msg("could not create memory profile")
		return
	}
	defer f.Close()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	log.Info().Uint64("heap-alloc", ms.HeapAlloc).Uint64("sys", ms.Sys).Msg("memory-stats")
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Error().Err(err).Msg("could not write memory profile")
	}
}

func main() {
	fmt.Println(banner)
	fmt.Println(GitVersion)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// a relative data path means next to the binary
	if !filepath.IsAbs(cfg.GetString(config.ConfigDataPath)) {
		ex, err := os.Executable()
		if err != nil {
			panic(err)
		}
		cfg.AdjustRelativePaths(filepath.Dir(ex))
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))
	log.Debug().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		f, err := os.Create(p)
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	sc := shell.NewShellController(cfg)
	if line := strings.TrimSpace(strings.Join(cfg.Args(), " ")); line != "" {
		// one-shot: run the command, then fall through to shutdown
		sc.Execute(sig, line)
	} else {
		go sc.Loop(sig)
		<-sig
		log.Info().Msg("got quit signal...")
	}

	if p := cfg.GetString(config.ConfigMemProfile); p != "" {
		writeMemProfile(p)
	}
	// saves every table that was loaded
	sc.Cleanup()
	log.Info().Msg("shutting down")
}
