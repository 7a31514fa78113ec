package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mancala/board"
	"github.com/domino14/mancala/config"
	"github.com/domino14/mancala/solver"
)

var (
	errNoGame            = errors.New("no game yet; start one with `new`")
	errWrongOptionSyntax = errors.New("options must be given as -name value")
	errQuit              = errors.New("quit")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	execPath   string
	gitVersion string

	ctx     context.Context
	rules   board.Rules
	game    *board.Board
	history []*board.Board
	sol     *solver.Solution

	// settleSol is solved on the first settle of a game.
	settleSol *solver.Solution
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := newController(cfg, execPath, gitVersion)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mmancala>\033[0m ",
		HistoryFile:     "/tmp/mancala-readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func newController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	return &ShellController{
		config:     cfg,
		execPath:   execPath,
		gitVersion: gitVersion,
		ctx:        log.Logger.WithContext(context.Background()),
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	cmd := &shellcmd{cmd: fields[0], options: CmdOptions{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, "-") || isNumber(f) {
			cmd.args = append(cmd.args, f)
			continue
		}
		if i+1 >= len(fields) {
			return nil, fmt.Errorf("%w: %s has no value", errWrongOptionSyntax, f)
		}
		name := strings.TrimLeft(f, "-")
		cmd.options[name] = append(cmd.options[name], fields[i+1])
		i++
	}
	return cmd, nil
}

func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Execute runs one command line and writes the result to w.
func (sc *ShellController) Execute(sig chan os.Signal, line string, w io.Writer) {
	resp, err := sc.execute(line)
	if err == errQuit {
		sig <- syscall.SIGINT
		return
	}
	if err != nil {
		showMessage("Error: "+err.Error(), w)
		return
	}
	if resp != nil && resp.message != "" {
		showMessage(resp.message, w)
	}
}

func (sc *ShellController) execute(line string) (*Response, error) {
	cmd, err := extractFields(strings.TrimSpace(line))
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, nil
	}
	return sc.standardModeSwitch(cmd)
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.execute(line)
		if err == errQuit {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	log.Info().Msg("shell-cleanup")
	sc.sol = nil
	sc.settleSol = nil
}
