package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDataPath         = "data-path"
	ConfigDebug            = "debug"
	ConfigCPUProfile       = "cpu-profile"
	ConfigMemProfile       = "mem-profile"
	ConfigTile4Prob        = "tile4-prob"
	ConfigSaveThreshold    = "save-threshold"
	ConfigSnapshotCodec    = "snapshot-codec"
	ConfigProgressInterval = "progress-interval"
	ConfigDefaultShape     = "default-shape"
	ConfigFile             = "config-file"
)

const envPrefix = "TUPLE2048"

// Config is a viper instance with the tuple2048 keys registered. Callers
// read values with the embedded getters, e.g. cfg.GetString(ConfigDataPath).
type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDataPath, "./data/tuples")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigTile4Prob, 0.1)
	v.SetDefault(ConfigSaveThreshold, 0.0)
	v.SetDefault(ConfigSnapshotCodec, "zstd")
	v.SetDefault(ConfigProgressInterval, 1<<20)
	v.SetDefault(ConfigDefaultShape, "11a")
}

// DefaultConfig returns a config holding only the defaults. It does not
// look at flags or the environment; tests use it.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tuple2048", pflag.ContinueOnError)
	fs.String(ConfigDataPath, "./data/tuples", "directory holding tuple snapshot files")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.Float64(ConfigTile4Prob, 0.1, "probability that a spawned tile is a 4")
	fs.Float64(ConfigSaveThreshold, 0, "quantization step for saved probabilities (0 keeps full resolution)")
	fs.String(ConfigSnapshotCodec, "zstd", "snapshot compression: zstd, lz4 or none")
	fs.Uint64(ConfigProgressInterval, 1<<20, "log search progress every this many computed entries")
	fs.String(ConfigDefaultShape, "11a", "tuple shape used when a command does not name one")
	fs.String(ConfigFile, "", "optional config file (yaml, json or toml)")
	return fs
}

// Load reads flags from args, then TUPLE2048_* environment variables, then
// the config file if one was given. Flags the user set explicitly win.
// Arguments that are not flags are left for the caller in Args.
func (c *Config) Load(args []string) error {
	v := viper.New()
	setDefaults(v)
	c.Viper = v

	fs := flagSet()
	// shell commands after the flags keep their own -options
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cf := v.GetString(ConfigFile); cf != "" {
		v.SetConfigFile(cf)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", cf, err)
		}
	}
	c.args = fs.Args()
	return nil
}

// Args returns the positional arguments left over after Load.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths makes relative data paths relative to basepath,
// normally the directory of the executable.
func (c *Config) AdjustRelativePaths(basepath string) {
	p := c.GetString(ConfigDataPath)
	if p == "" || filepath.IsAbs(p) {
		return
	}
	c.Set(ConfigDataPath, filepath.Join(basepath, p))
}

// SanitizedSettings returns the settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
