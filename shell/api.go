package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tuple2048/board"
	"github.com/domino14/tuple2048/tuple"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Uint64Default(key string, defaultU uint64) (uint64, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultU, nil
	}
	return strconv.ParseUint(v[0], 10, 64)
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) shapes(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	for _, name := range tuple.ShapeNames() {
		s, err := tuple.ShapeByName(name)
		if err != nil {
			return nil, err
		}
		marker := "  "
		if name == sc.shape {
			marker = "* "
		}
		sb.WriteString(marker + s.String())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) setShape(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg("current shape: " + sc.shape), nil
	}
	if _, err := tuple.ShapeByName(cmd.args[0]); err != nil {
		return nil, err
	}
	sc.shape = cmd.args[0]
	return msg("shape set to " + sc.shape), nil
}

func (sc *ShellController) setBoard(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if !sc.hasBoard {
			return nil, errNoBoard
		}
		return msg(sc.curBoard.String()), nil
	}
	b, err := board.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.curBoard = b
	sc.hasBoard = true
	return msg(b.String()), nil
}

// boardArg returns the board given in the arguments, or the current one.
func (sc *ShellController) boardArg(cmd *shellcmd) (board.Board, error) {
	if len(cmd.args) > 0 {
		return board.Parse(strings.Join(cmd.args, " "))
	}
	if !sc.hasBoard {
		return board.Board{}, errNoBoard
	}
	return sc.curBoard, nil
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if !sc.hasBoard {
		return nil, errNoBoard
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: move <up|left|right|down>")
	}
	m, err := board.ParseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	b, changed := sc.curBoard.Move(m)
	if !changed {
		return nil, fmt.Errorf("moving %s does not change the board", m)
	}
	sc.curBoard = b
	return msg(b.String()), nil
}

func (sc *ShellController) suggest(cmd *shellcmd) (*Response, error) {
	b, err := sc.boardArg(cmd)
	if err != nil {
		return nil, err
	}
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	m, prob := t.SuggestMove(b)
	if prob == 0 {
		return msg(fmt.Sprintf("%s: board is outside the tables or lost", t.Shape().Name)), nil
	}
	return msg(fmt.Sprintf("%s: %s %.6f", t.Shape().Name, m, prob)), nil
}

func (sc *ShellController) lookup(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: lookup <key>")
	}
	key, err := strconv.ParseUint(cmd.args[0], 10, 64)
	if err != nil {
		return nil, err
	}
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	if key >= t.Shape().NumTuples() {
		return nil, fmt.Errorf("key %d out of range; %s has %d keys", key,
			t.Shape().Name, t.Shape().NumTuples())
	}
	m, prob := t.Lookup(key)
	if prob == 0 {
		return msg(fmt.Sprintf("%d: :( %.6f", key, prob)), nil
	}
	return msg(fmt.Sprintf("%d: %s %.6f", key, m, prob)), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	return nil, t.Show(sc.out)
}

func (sc *ShellController) query(cmd *shellcmd) (*Response, error) {
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	tiles := make([]int, len(cmd.args))
	for i, a := range cmd.args {
		tiles[i], err = strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
	}
	return nil, t.Query(sc.out, tiles)
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if !sc.stopJob() {
			return nil, errors.New("no running generate job to stop")
		}
		return msg("stopping generate job"), nil
	}

	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	start, err := cmd.options.Uint64Default("start", 0)
	if err != nil {
		return nil, err
	}
	end, err := cmd.options.Uint64Default("end", t.Shape().NumTuples())
	if err != nil {
		return nil, err
	}

	err = sc.startJob(t.Shape().Name, func(ctx context.Context) {
		gs, err := t.Generate(ctx, start, end)
		if err != nil {
			log.Info().Err(err).Msg("generate stopped early")
		}
		sc.showMessage(fmt.Sprintf("%s [%d, %d): %s", t.Shape().Name, start, end, gs))
	})
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("generating %s keys [%d, %d) in the background; `generate stop` to stop",
		t.Shape().Name, start, end)), nil
}

func (sc *ShellController) stats(cmd *shellcmd) (*Response, error) {
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	sample, err := cmd.options.IntDefault("sample", 0)
	if err != nil {
		return nil, err
	}
	bins, err := cmd.options.IntDefault("bins", 10)
	if err != nil {
		return nil, err
	}
	sc.showMessage(fmt.Sprintf("%s: %d pages allocated", t.Shape().Name, t.Table().NumPages()))
	return nil, t.Stats(sample).Fprint(sc.out, bins, 60)
}

func (sc *ShellController) simulate(cmd *shellcmd) (*Response, error) {
	b, err := sc.boardArg(cmd)
	if err != nil {
		return nil, err
	}
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	trials, err := cmd.options.IntDefault("trials", 1000)
	if err != nil {
		return nil, err
	}
	res, err := t.Simulate(context.Background(), b, trials)
	if err != nil {
		return nil, err
	}
	return msg(res.String()), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	t, err := sc.tuple(cmd)
	if err != nil {
		return nil, err
	}
	n, err := t.Save()
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("saved %d records for %s", n, t.Shape().Name)), nil
}
