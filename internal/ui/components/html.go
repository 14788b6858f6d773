// Package components renders the viewer's HTML.
//
// Components are plain templ components; the datastar attributes they emit
// post actions back to the viewer feature and receive morphs over SSE.
package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DatastarScript is the client runtime matching the datastar-go SDK.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// buf accumulates markup; the first render error sticks.
type buf struct {
	strings.Builder
	err error
}

func (b *buf) raw(s string) { b.WriteString(s) }

// text writes s escaped.
func (b *buf) text(s string) { b.WriteString(templ.EscapeString(s)) }

// rawf formats into the buffer. Callers escape user data themselves.
func (b *buf) rawf(format string, args ...any) { fmt.Fprintf(b, format, args...) }

func (b *buf) render(ctx context.Context, c templ.Component) {
	if b.err != nil || c == nil {
		return
	}
	b.err = c.Render(ctx, b)
}

func (b *buf) flush(w io.Writer) error {
	if b.err != nil {
		return b.err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// component adapts a builder function to templ.Component.
func component(fn func(ctx context.Context, b *buf)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b buf
		fn(ctx, &b)
		return b.flush(w)
	})
}

// esc escapes s for use in text or a double-quoted attribute.
func esc(s string) string { return templ.EscapeString(s) }

func classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}
