package viewer

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/internal/ui/components"
)

// Action names handled by the session itself rather than the reducer.
const (
	actionReload       = "reload"
	actionCopy         = "copy"
	actionPaletteClose = "palette-close"
)

var (
	errUnknownAction = errors.New("unknown action")
	errBadArgument   = errors.New("bad action argument")
)

// buildActions maps a posted action name, its query arguments and the
// client signals onto reducer actions.
func buildActions(name string, q url.Values, sig components.Signals, v session.View) ([]tablestate.Action, error) {
	st := v.State
	switch name {
	case "search":
		return one(tablestate.SetSearch{Query: sig.Search}), nil

	case "source":
		if key := q.Get("run"); key != "" {
			run, ok := loader.FindRun(v.Runs, key)
			if !ok {
				return nil, fmt.Errorf("%w: no run %q", errBadArgument, key)
			}
			return one(tablestate.SetSource{Source: run.Path}), nil
		}
		return one(tablestate.SetSource{Source: strings.TrimSpace(sig.CSV)}), nil

	case "tag":
		tag := strings.TrimSpace(q.Get("tag"))
		if tag == "" {
			return nil, fmt.Errorf("%w: empty tag", errBadArgument)
		}
		return one(tablestate.ToggleTag{Tag: tag}), nil

	case "clear-tags":
		return one(tablestate.ClearTags{}), nil

	case "sort":
		col, err := column(q, st)
		if err != nil {
			return nil, err
		}
		return one(tablestate.CycleSort{Column: col}), nil

	case "column":
		col, err := column(q, st)
		if err != nil {
			return nil, err
		}
		return one(tablestate.ToggleColumn{Column: col}), nil

	case "move":
		col, err := column(q, st)
		if err != nil {
			return nil, err
		}
		return one(tablestate.SetColumnOrder{Order: move(st.ColumnOrder, col, q.Get("dir"))}), nil

	case "reset-columns":
		return one(tablestate.ResetColumns{}), nil

	case "columns":
		return one(tablestate.SetColumnsModal{Open: q.Get("open") == "1"}), nil

	case "paging":
		return one(tablestate.SetPaging{Enabled: sig.Paging}), nil

	case "page-size":
		if sig.PageSize < 1 {
			return nil, fmt.Errorf("%w: page size %d", errBadArgument, sig.PageSize)
		}
		return one(tablestate.SetPageSize{Size: sig.PageSize}), nil

	case "page":
		return pageAction(q.Get("to"))

	case "refresh":
		acts := []tablestate.Action{tablestate.SetAutoRefresh{Enabled: sig.AutoRefresh}}
		if sig.RefreshSec > 0 {
			acts = append(acts, tablestate.SetRefreshInterval{Interval: time.Duration(sig.RefreshSec) * time.Second})
		}
		return acts, nil

	case "theme":
		return one(tablestate.ToggleTheme{}), nil

	case "wrap":
		return one(tablestate.ToggleWrap{}), nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownAction, name)
}

func one(a tablestate.Action) []tablestate.Action {
	return []tablestate.Action{a}
}

func pageAction(to string) ([]tablestate.Action, error) {
	switch to {
	case "first":
		return one(tablestate.FirstPage{}), nil
	case "prev":
		return one(tablestate.PrevPage{}), nil
	case "next":
		return one(tablestate.NextPage{}), nil
	case "last":
		return one(tablestate.LastPage{}), nil
	}
	n, err := strconv.Atoi(to)
	if err != nil {
		return nil, fmt.Errorf("%w: page %q", errBadArgument, to)
	}
	return one(tablestate.SetPage{Page: n}), nil
}

// column reads the col argument and checks it against the grid width.
func column(q url.Values, st tablestate.TableState) (int, error) {
	col, err := strconv.Atoi(q.Get("col"))
	if err != nil || col < 0 || col >= st.Width() {
		return 0, fmt.Errorf("%w: column %q", errBadArgument, q.Get("col"))
	}
	return col, nil
}

// move swaps col with its neighbour in the display order. dir is "up" or
// "down"; moves past either end leave the order unchanged.
func move(order []int, col int, dir string) []int {
	pos := slices.Index(order, col)
	if pos < 0 {
		return order
	}
	target := pos + 1
	if dir == "up" {
		target = pos - 1
	}
	if target < 0 || target >= len(order) {
		return order
	}
	out := slices.Clone(order)
	out[pos], out[target] = out[target], out[pos]
	return out
}
