package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/cache"
	"github.com/domino14/tuple2048/config"
	"github.com/domino14/tuple2048/tuple"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoBoard           = errors.New("please set a board first with the `board` command")
	errQuit              = errors.New("sending quit signal")
	errJobRunning        = errors.New("already generating, please do a `generate stop` first")
)

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	out    io.Writer

	shape    string
	curBoard board.Board
	hasBoard bool

	// a running generate job. Its table belongs to the job until it ends.
	jobMu     sync.Mutex
	jobShape  string
	jobCancel context.CancelFunc
	jobDone   chan struct{}
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

func NewShellController(cfg *config.Config) *ShellController {
	prompt := "\033[31mtuple2048>\033[0m "
	sc := &ShellController{
		config: cfg,
		shape:  cfg.GetString(config.ConfigDefaultShape),
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/tuple2048-readline.tmp",
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
	sc.out = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// tuple returns the tuple the command is about. Tables are not safe for
// concurrent use, so a shape with a running generate job is refused.
func (sc *ShellController) tuple(cmd *shellcmd) (*tuple.Tuple, error) {
	name := sc.shape
	if s := cmd.options.String("shape"); s != "" {
		name = s
	}
	sc.jobMu.Lock()
	busy := sc.jobCancel != nil && sc.jobShape == name
	sc.jobMu.Unlock()
	if busy {
		return nil, fmt.Errorf("%s: %w", name, errJobRunning)
	}
	return tuple.Get(sc.config, name)
}

// startJob runs fn in the background on the named shape. Only one job runs
// at a time.
func (sc *ShellController) startJob(shape string, fn func(ctx context.Context)) error {
	sc.jobMu.Lock()
	defer sc.jobMu.Unlock()
	if sc.jobCancel != nil {
		return errJobRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.jobShape = shape
	sc.jobCancel = cancel
	sc.jobDone = done

	go func() {
		defer close(done)
		fn(ctx)

		sc.jobMu.Lock()
		sc.jobShape = ""
		sc.jobCancel = nil
		sc.jobDone = nil
		sc.jobMu.Unlock()
		cancel()
	}()
	return nil
}

func (sc *ShellController) stopJob() bool {
	sc.jobMu.Lock()
	defer sc.jobMu.Unlock()
	if sc.jobCancel == nil {
		return false
	}
	sc.jobCancel()
	return true
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") && !isNumber(fields[idx]) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[idx][1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "shapes":
		return sc.shapes(cmd)
	case "shape":
		return sc.setShape(cmd)
	case "board":
		return sc.setBoard(cmd)
	case "move", "m":
		return sc.move(cmd)
	case "suggest", "s":
		return sc.suggest(cmd)
	case "lookup":
		return sc.lookup(cmd)
	case "show":
		return sc.show(cmd)
	case "query":
		return sc.query(cmd)
	case "generate", "gen":
		return sc.generate(cmd)
	case "stats":
		return sc.stats(cmd)
	case "simulate", "sim":
		return sc.simulate(cmd)
	case "save":
		return sc.save(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !sc.execute(line, sig) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Execute runs one command line, as given on the command line of the
// binary, and prints its result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	sc.execute(line, sig)
	// a generate job started from the command line should finish first
	sc.waitJob()
}

func (sc *ShellController) execute(line string, sig chan os.Signal) bool {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		if errors.Is(err, errQuit) {
			return false
		}
		sc.showError(err)
		return true
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
	return true
}

func (sc *ShellController) waitJob() {
	sc.jobMu.Lock()
	done := sc.jobDone
	sc.jobMu.Unlock()
	if done != nil {
		<-done
	}
}

// Cleanup stops any running job and saves every loaded table. Tables go to
// distinct files, so they are written concurrently.
func (sc *ShellController) Cleanup() {
	sc.stopJob()
	sc.waitJob()

	var g errgroup.Group
	for key, obj := range cache.Drain() {
		t, ok := obj.(*tuple.Tuple)
		if !ok {
			continue
		}
		g.Go(func() error {
			log.Info().Str("key", key).Msg("saving tuple table")
			return t.Close()
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("could not save all tables")
	}
}
