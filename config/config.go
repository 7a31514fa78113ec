package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/solver"
)

const (
	ConfigPits           = "pits"
	ConfigSeeds          = "seeds"
	ConfigStealing       = "stealing"
	ConfigCountRemaining = "count-remaining"
	ConfigThreads        = "threads"
	ConfigDivisions      = "divisions"
	ConfigMode           = "mode"
	ConfigMaxWidth       = "max-width"
	ConfigCompressDepth  = "compress-depth"
	ConfigDumpPath       = "dump-path"
	ConfigReportPath     = "report-path"
	ConfigHistogram      = "histogram"
	ConfigNatsURL        = "nats-url"
	ConfigNatsSubject    = "nats-subject"
	ConfigDebug          = "debug"
	ConfigCPUProfile     = "cpu-profile"
	ConfigMemProfile     = "mem-profile"
)

type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigPits, 4)
	v.SetDefault(ConfigSeeds, 2)
	v.SetDefault(ConfigStealing, true)
	v.SetDefault(ConfigCountRemaining, false)
	v.SetDefault(ConfigThreads, 4)
	v.SetDefault(ConfigDivisions, 64)
	v.SetDefault(ConfigMode, solver.ModeScore)
	v.SetDefault(ConfigMaxWidth, 3)
	v.SetDefault(ConfigCompressDepth, 0)
	v.SetDefault(ConfigDumpPath, "")
	v.SetDefault(ConfigReportPath, "")
	v.SetDefault(ConfigHistogram, false)
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigNatsSubject, "mancala.solve")
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return Config{Viper: v}
}

// Load reads command-line flags and MANCALA_* environment variables on top
// of the defaults. Flags win over the environment.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("mancala", pflag.ContinueOnError)
	// Everything after the first positional argument is a shell command line.
	fs.SetInterspersed(false)
	fs.Int(ConfigPits, 4, "pits per side")
	fs.Int(ConfigSeeds, 2, "seeds per pit at the start")
	fs.Bool(ConfigStealing, true, "capture the mirror pit when the last seed lands in an empty own pit")
	fs.Bool(ConfigCountRemaining, false, "credit seeds left in pits at the end to their side")
	fs.Int(ConfigThreads, 4, "number of search workers")
	fs.Int(ConfigDivisions, 64, "number of transposition store shards")
	fs.String(ConfigMode, solver.ModeScore, "search mode: score, settlement or widthcut")
	fs.Int(ConfigMaxWidth, 3, "successors searched per position in widthcut mode")
	fs.Int(ConfigCompressDepth, 0, "if positive, compress the store keeping every n-th turn")
	fs.String(ConfigDumpPath, "", "write the score store to this file")
	fs.String(ConfigReportPath, "", "write a YAML run report to this file")
	fs.Bool(ConfigHistogram, false, "print a histogram of stored values")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server for the solve bot")
	fs.String(ConfigNatsSubject, "mancala.solve", "NATS subject the solve bot listens on")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a heap profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("mancala")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return c.BindPFlags(fs)
}

// Args are the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// Rules builds the game rules from the configuration.
func (c *Config) Rules() (board.Rules, error) {
	r := board.Rules{
		Pits:           c.GetInt(ConfigPits),
		Seeds:          c.GetInt(ConfigSeeds),
		Stealing:       c.GetBool(ConfigStealing),
		CountRemaining: c.GetBool(ConfigCountRemaining),
	}
	if err := r.Validate(); err != nil {
		return board.Rules{}, err
	}
	return r, nil
}

func (c *Config) Mode() (string, error) {
	return solver.ParseMode(c.GetString(ConfigMode))
}

// Request builds a solve request from the configuration.
func (c *Config) Request() (solver.Request, error) {
	rules, err := c.Rules()
	if err != nil {
		return solver.Request{}, err
	}
	mode, err := c.Mode()
	if err != nil {
		return solver.Request{}, err
	}
	return solver.Request{
		Rules:         rules,
		Mode:          mode,
		Threads:       c.GetInt(ConfigThreads),
		Divisions:     c.GetInt(ConfigDivisions),
		MaxWidth:      c.GetInt(ConfigMaxWidth),
		CompressDepth: c.GetInt(ConfigCompressDepth),
	}, nil
}

func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
