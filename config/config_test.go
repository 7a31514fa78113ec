package config

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/solver"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	r, err := cfg.Rules()
	is.NoErr(err)
	is.Equal(r, board.Rules{Pits: 4, Seeds: 2, Stealing: true})
	m, err := cfg.Mode()
	is.NoErr(err)
	is.Equal(m, solver.ModeScore)
	is.Equal(cfg.GetInt(ConfigThreads), 4)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--pits", "3", "--seeds=3", "--stealing=false",
		"--mode", "Settlement", "--threads", "8"}))
	r, err := cfg.Rules()
	is.NoErr(err)
	is.Equal(r, board.Rules{Pits: 3, Seeds: 3})
	m, err := cfg.Mode()
	is.NoErr(err)
	is.Equal(m, solver.ModeSettlement)
	is.Equal(cfg.GetInt(ConfigThreads), 8)
	is.Equal(cfg.GetInt(ConfigDivisions), 64)
	is.Equal(len(cfg.Args()), 0)
}

func TestLoadKeepsPositionalArgs(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--threads", "2", "new", "3", "2", "-stealing", "false"}))
	is.Equal(cfg.Args(), []string{"new", "3", "2", "-stealing", "false"})
	is.Equal(cfg.GetInt(ConfigThreads), 2)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("MANCALA_MAX_WIDTH", "5")
	t.Setenv("MANCALA_PITS", "2")
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--pits", "6"}))
	is.Equal(cfg.GetInt(ConfigMaxWidth), 5)
	// flags win
	is.Equal(cfg.GetInt(ConfigPits), 6)
}

func TestBadSettings(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--pits", "6", "--seeds", "12"}))
	_, err := cfg.Rules()
	is.True(errors.Is(err, board.ErrInvalidRules))

	is.NoErr(cfg.Load([]string{"--mode", "minimax"}))
	_, err = cfg.Mode()
	is.True(err != nil)

	is.True(cfg.Load([]string{"--no-such-flag"}) != nil)
}

func TestRequest(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--pits", "3", "--mode", "widthcut", "--max-width", "2", "--compress-depth", "1"}))
	req, err := cfg.Request()
	is.NoErr(err)
	is.Equal(req, solver.Request{
		Rules:         board.Rules{Pits: 3, Seeds: 2, Stealing: true},
		Mode:          solver.ModeWidthCut,
		Threads:       4,
		Divisions:     64,
		MaxWidth:      2,
		CompressDepth: 1,
	})
}
