package shell

import (
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter completes command names, options and pit numbers.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-pits", "-seeds", "-stealing", "-count-remaining", "-threads"},
	},
	"hint": {
		Options: []string{"-n"},
	},
	"help": {
		Args: []string{"new", "show", "sow", "undo", "hint", "auto", "settle", "hist", "exit"},
	},
}

var commandNames = []string{
	"help", "new", "show", "s", "sow", "undo", "hint", "auto", "settle", "hist", "exit", "quit",
}

var boolValues = []string{"true", "false"}

// legalPits lists the 1-based pits the side to move may sow.
func (c *ShellCompleter) legalPits() []string {
	if c.sc.game == nil {
		return nil
	}
	moves := c.sc.game.LegalMoves()
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = strconv.Itoa(m + 1)
	}
	return out
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "stealing", "count-remaining":
				completions = boolValues
			}
		}
		if completions == nil && cmdName == "sow" {
			completions = c.legalPits()
		}
		if completions == nil {
			if metadata, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
