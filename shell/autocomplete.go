package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/tuple2048/tuple"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-trials")
	Args    []string // Possible argument values (for non-option arguments)
}

var commandMetadata = map[string]CommandMetadata{
	"suggest":  {Options: []string{"-shape"}},
	"simulate": {Options: []string{"-shape", "-trials"}},
	"lookup":   {Options: []string{"-shape"}},
	"query":    {Options: []string{"-shape"}},
	"show":     {Options: []string{"-shape"}},
	"save":     {Options: []string{"-shape"}},
	"stats":    {Options: []string{"-shape", "-sample", "-bins"}},
	"generate": {Options: []string{"-shape", "-start", "-end"}, Args: []string{"stop"}},
	"move":     {Args: []string{"up", "left", "right", "down"}},
	"help": {Args: []string{
		"board", "suggest", "generate", "query", "simulate", "stats",
	}},
}

var commandNames = []string{
	"help", "board", "move", "suggest", "simulate", "lookup", "query",
	"show", "generate", "stats", "save", "shape", "shapes", "exit",
}

// Do implements the readline.AutoComplete interface
// It provides context-aware autocomplete based on what's been typed
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// If we can't parse, fall back to simple space splitting
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

		if lastCompleteField == "-shape" || cmdName == "shape" {
			completions = tuple.ShapeNames()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
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
			// Return only the part that needs to be added
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
