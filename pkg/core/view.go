package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is the ordering of a single sort level.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortKey is one level of a multi-column sort.
type SortKey struct {
	Column int       `json:"idx"`
	Dir    Direction `json:"dir"`
}

// String renders the key as "idx:dir".
func (k SortKey) String() string {
	return strconv.Itoa(k.Column) + ":" + string(k.Dir)
}

// ParseSortKey parses an "idx:dir" pair.
func ParseSortKey(s string) (SortKey, error) {
	idxStr, dirStr, _ := strings.Cut(s, ":")
	idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
	if err != nil {
		return SortKey{}, fmt.Errorf("invalid sort column %q: %w", idxStr, err)
	}
	if idx < 0 {
		return SortKey{}, fmt.Errorf("invalid sort column %d", idx)
	}
	return SortKey{Column: idx, Dir: ParseDirection(dirStr)}, nil
}

// Theme selects the visual palette.
type Theme string

// Themes.
const (
	ThemeRose Theme = "rose"
	ThemeVeil Theme = "veil"
)

// DefaultTheme is used when nothing valid was configured.
const DefaultTheme = ThemeRose

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeRose || t == ThemeVeil
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeRose {
		return ThemeVeil
	}
	return ThemeRose
}

// ParseTheme returns the theme named by s, falling back to DefaultTheme.
func ParseTheme(s string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return DefaultTheme
}
