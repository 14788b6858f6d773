package tablestate

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/horizon/pkg/core"
)

// Query parameter names.
const (
	ParamSource   = "csv"
	ParamTheme    = "theme"
	ParamSearch   = "q"
	ParamWrap     = "wrap"
	ParamRefresh  = "refresh"
	ParamTags     = "tags"
	ParamHide     = "hide"
	ParamSort     = "sort"
	ParamPaging   = "paging"
	ParamPage     = "pg"
	ParamPageSize = "ps"
	ParamOrder    = "order"
)

var stateParams = []string{
	ParamSource, ParamTheme, ParamSearch, ParamWrap, ParamRefresh, ParamTags,
	ParamHide, ParamSort, ParamPaging, ParamPage, ParamPageSize, ParamOrder,
}

// fallbackRefresh applies when a refresh parameter is present but unusable.
const fallbackRefresh = 30 * time.Second

// EncodeQuery writes the shareable fields of s as query parameters.
// Values equal to their default are omitted.
func EncodeQuery(s TableState) url.Values {
	q := url.Values{}
	if s.Source != "" {
		q.Set(ParamSource, s.Source)
	}
	if s.Theme.Valid() && s.Theme != core.DefaultTheme {
		q.Set(ParamTheme, string(s.Theme))
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if s.Wrap {
		q.Set(ParamWrap, "1")
	}
	if s.AutoRefresh {
		q.Set(ParamRefresh, strconv.Itoa(int(s.RefreshInterval/time.Second)))
	}
	if len(s.SelectedTags) > 0 {
		q.Set(ParamTags, strings.Join(s.SelectedTags, ";"))
	}
	if len(s.HiddenCols) > 0 {
		q.Set(ParamHide, joinInts(normalizeHidden(s.HiddenCols)))
	}
	if len(s.SortKeys) > 0 {
		keys := make([]string, len(s.SortKeys))
		for i, k := range s.SortKeys {
			keys[i] = k.String()
		}
		q.Set(ParamSort, strings.Join(keys, "|"))
	}
	if !s.Paging {
		q.Set(ParamPaging, "0")
	}
	if s.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if s.PageSize != DefaultPageSize {
		q.Set(ParamPageSize, strconv.Itoa(s.PageSize))
	}
	if len(s.ColumnOrder) > 0 && !slices.Equal(s.ColumnOrder, core.IdentityOrder(len(s.ColumnOrder))) {
		q.Set(ParamOrder, joinInts(s.ColumnOrder))
	}
	return q
}

// HasState reports whether q carries any view state parameter.
func HasState(q url.Values) bool {
	for _, p := range stateParams {
		if q.Has(p) {
			return true
		}
	}
	return false
}

// DecodeQuery overlays the parameters present in q onto base. Absent
// parameters keep the base value; malformed ones fall back to defaults.
func DecodeQuery(q url.Values, base TableState) TableState {
	s := base
	if q.Has(ParamSource) {
		s.Source = q.Get(ParamSource)
	}
	if q.Has(ParamTheme) {
		s.Theme = core.ParseTheme(q.Get(ParamTheme))
	}
	if q.Has(ParamSearch) {
		s.Search = q.Get(ParamSearch)
	}
	if q.Has(ParamWrap) {
		s.Wrap = q.Get(ParamWrap) == "1"
	}
	if q.Has(ParamRefresh) {
		s.AutoRefresh = true
		s.RefreshInterval = fallbackRefresh
		if n, err := strconv.Atoi(q.Get(ParamRefresh)); err == nil && n > 0 {
			s.RefreshInterval = max(time.Duration(n)*time.Second, MinRefreshInterval)
		}
	}
	if q.Has(ParamTags) {
		s.SelectedTags = normalizeTags(strings.Split(q.Get(ParamTags), ";"))
	}
	if q.Has(ParamHide) {
		s.HiddenCols = normalizeHidden(splitInts(q.Get(ParamHide)))
	}
	if q.Has(ParamSort) {
		s.SortKeys = nil
		for _, part := range strings.Split(q.Get(ParamSort), "|") {
			if k, err := core.ParseSortKey(part); err == nil {
				s.SortKeys = append(s.SortKeys, k)
			}
		}
		s.SortKeys = inRange(s.SortKeys, s.Width())
	}
	if q.Has(ParamPaging) {
		s.Paging = q.Get(ParamPaging) == "1"
	}
	if q.Has(ParamPage) {
		s.Page = positiveOr(q.Get(ParamPage), 1)
	}
	if q.Has(ParamPageSize) {
		s.PageSize = positiveOr(q.Get(ParamPageSize), DefaultPageSize)
	}
	if q.Has(ParamOrder) {
		order, ok := parseInts(q.Get(ParamOrder))
		if ok {
			s.ColumnOrder = order
		}
	}
	return s
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "|")
}

// splitInts parses "|"-separated integers, skipping invalid parts.
func splitInts(s string) []int {
	var out []int
	for _, part := range strings.Split(s, "|") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// parseInts parses "|"-separated integers and fails on any invalid part.
func parseInts(s string) ([]int, bool) {
	if s == "" {
		return []int{}, true
	}
	parts := strings.Split(s, "|")
	out := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func positiveOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
