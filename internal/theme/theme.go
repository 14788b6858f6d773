// Package theme turns a brand token manifest into CSS custom properties.
//
// A manifest is JSON or YAML shaped like
//
//	brand:
//	  cyan: {rgb: [0, 200, 255]}
//	motion: {signal_hue_deg: 190, resonance_gain: 0.35}
//	focus:  {rose1_hsl: [340, 80, 60]}
//
// Adapt flattens it into a token bag; Vars maps the bag through a fixed
// table of CSS variables. Missing or malformed tokens are skipped.
package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// TokenBag is the flat token set, keyed by dotted token path.
type TokenBag map[string]string

// Var is one CSS custom property.
type Var struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// varTable maps token paths to CSS variables, in output order.
var varTable = []struct {
	token string
	css   string
}{
	{"brand.cyan.rgb", "--tint-cyan"},
	{"brand.violet.rgb", "--tint-violet"},
	{"brand.magenta.rgb", "--tint-magenta"},
	{"brand.navy.rgb", "--tint-navy"},
	{"motion.signal.hue", "--signal-hue"},
	{"motion.resonance", "--resonance-alpha"},
	{"focus.rose1.hsl", "--rose-accent-1"},
	{"focus.rose2.hsl", "--rose-accent-2"},
}

var brandColors = []string{"cyan", "violet", "magenta", "navy"}

// Manifest is a loaded brand manifest.
type Manifest struct {
	k *koanf.Koanf
}

// LoadFile reads a manifest from a JSON or YAML file.
func LoadFile(path string) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", path, err)
	}
	return &Manifest{k: k}, nil
}

// FromMap builds a manifest from already decoded data.
func FromMap(data map[string]any) (*Manifest, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(data, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &Manifest{k: k}, nil
}

// Adapt flattens the manifest into UI tokens.
func (m *Manifest) Adapt() TokenBag {
	bag := TokenBag{}
	if m == nil || m.k == nil {
		return bag
	}

	for _, c := range brandColors {
		if v, ok := joinNumbers(m.k.Get("brand."+c+".rgb"), 0, ", "); ok {
			bag["brand."+c+".rgb"] = v
		}
	}
	if v, ok := number(m.k.Get("motion.signal_hue_deg")); ok {
		bag["motion.signal.hue"] = v
	}
	if v, ok := number(m.k.Get("motion.resonance_gain")); ok {
		bag["motion.resonance"] = v
	}
	for _, n := range []string{"rose1", "rose2"} {
		if v, ok := hsl(m.k.Get("focus." + n + "_hsl")); ok {
			bag["focus."+n+".hsl"] = v
		}
	}
	return bag
}

// Vars maps a token bag to CSS variables in a fixed order. Tokens without
// a variable, and variables without a token, are left out.
func Vars(bag TokenBag) []Var {
	var out []Var
	for _, e := range varTable {
		if v, ok := bag[e.token]; ok && v != "" {
			out = append(out, Var{Name: e.css, Value: v})
		}
	}
	return out
}

// Style renders vars as a declaration list for a style attribute or a
// :root rule.
func Style(vars []Var) string {
	var b strings.Builder
	for i, v := range vars {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.Name)
		b.WriteString(": ")
		b.WriteString(v.Value)
		b.WriteByte(';')
	}
	return b.String()
}

func number(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	}
	return "", false
}

// joinNumbers joins a numeric list. want > 0 requires that exact length.
func joinNumbers(v any, want int, sep string) (string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 || (want > 0 && len(list) != want) {
		return "", false
	}
	parts := make([]string, len(list))
	for i, item := range list {
		s, ok := number(item)
		if !ok {
			return "", false
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), true
}

func hsl(v any) (string, bool) {
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return "", false
	}
	h, ok1 := number(list[0])
	s, ok2 := number(list[1])
	l, ok3 := number(list[2])
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	return fmt.Sprintf("%s %s%% %s%%", h, s, l), true
}
