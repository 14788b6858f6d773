package tablestate

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Snapshot is the persisted subset of a TableState. The grid and the
// transient status fields are excluded.
type Snapshot struct {
	Source         string         `json:"csvPath,omitempty"`
	Theme          core.Theme     `json:"theme,omitempty"`
	Search         string         `json:"search,omitempty"`
	Wrap           bool           `json:"wrap,omitempty"`
	SelectedTags   []string       `json:"selectedTags,omitempty"`
	HiddenCols     []int          `json:"hiddenCols,omitempty"`
	ColumnOrder    []int          `json:"columnOrder,omitempty"`
	SortKeys       []core.SortKey `json:"sortKeys,omitempty"`
	Paging         bool           `json:"paging"`
	Page           int            `json:"page,omitempty"`
	PageSize       int            `json:"pageSize,omitempty"`
	AutoRefresh    bool           `json:"autoRefresh,omitempty"`
	RefreshSeconds int            `json:"refreshSec,omitempty"`
}

// TakeSnapshot copies the persisted fields of s.
func TakeSnapshot(s TableState) Snapshot {
	return Snapshot{
		Source:         s.Source,
		Theme:          s.Theme,
		Search:         s.Search,
		Wrap:           s.Wrap,
		SelectedTags:   slices.Clone(s.SelectedTags),
		HiddenCols:     slices.Clone(s.HiddenCols),
		ColumnOrder:    slices.Clone(s.ColumnOrder),
		SortKeys:       slices.Clone(s.SortKeys),
		Paging:         s.Paging,
		Page:           s.Page,
		PageSize:       s.PageSize,
		AutoRefresh:    s.AutoRefresh,
		RefreshSeconds: int(s.RefreshInterval / time.Second),
	}
}

// Restore overlays the snapshot onto base, normalizing anything out of range.
func (snap Snapshot) Restore(base TableState) TableState {
	s := base
	s.Source = snap.Source
	s.Theme = core.ParseTheme(string(snap.Theme))
	s.Search = snap.Search
	s.Wrap = snap.Wrap
	s.SelectedTags = normalizeTags(snap.SelectedTags)
	s.HiddenCols = normalizeHidden(snap.HiddenCols)
	s.ColumnOrder = slices.Clone(snap.ColumnOrder)
	s.SortKeys = slices.Clone(snap.SortKeys)
	s.Paging = snap.Paging
	s.Page = max(snap.Page, 1)
	s.PageSize = DefaultPageSize
	if snap.PageSize > 0 {
		s.PageSize = snap.PageSize
	}
	s.AutoRefresh = snap.AutoRefresh
	s.RefreshInterval = DefaultRefreshInterval
	if snap.RefreshSeconds > 0 {
		s.RefreshInterval = max(time.Duration(snap.RefreshSeconds)*time.Second, MinRefreshInterval)
	}
	return s
}

// MarshalSnapshot encodes the persisted fields of s as JSON.
func MarshalSnapshot(s TableState) ([]byte, error) {
	data, err := json.Marshal(TakeSnapshot(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode view state: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes JSON produced by MarshalSnapshot onto base.
func UnmarshalSnapshot(data []byte, base TableState) (TableState, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return base, fmt.Errorf("failed to decode view state: %w", err)
	}
	return snap.Restore(base), nil
}
