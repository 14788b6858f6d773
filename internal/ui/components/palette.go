package components

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/horizon/internal/session"
)

// PaletteID is the element the palette endpoint patches.
const PaletteID = "palette"

// Palette renders the command palette with its current matches. Choosing
// a run loads it; choosing a tag toggles the tag filter.
func Palette(items []session.PaletteItem) templ.Component {
	return component(func(_ context.Context, b *buf) {
		b.rawf("<div id=\"%s\" class=\"palette open\" data-on:keydown__window=\"evt.key === 'Escape' && @post('/actions/palette-close')\">\n", PaletteID)
		b.raw("<input class=\"input\" type=\"search\" placeholder=\"Runs and tags\" data-bind:palette data-on:input__debounce.150ms=\"@get('/palette')\">\n")
		b.raw("<ul>\n")
		for _, it := range items {
			switch it.Kind {
			case session.KindRun:
				b.rawf("<li class=\"run\"><button data-on:click=\"@post('/actions/source?run=%s')\">%s</button></li>\n",
					esc(url.QueryEscape(it.Text)), esc(it.Text))
			case session.KindTag:
				b.rawf("<li class=\"tag\"><button data-on:click=\"@post('/actions/tag?tag=%s')\">#%s</button></li>\n",
					esc(url.QueryEscape(it.Text)), esc(it.Text))
			default:
				b.rawf("<li class=\"hint\">%s</li>\n", esc(it.Text))
			}
		}
		b.raw("</ul>\n</div>\n")
	})
}

// PaletteClosed is the empty palette container.
func PaletteClosed() templ.Component {
	return component(func(_ context.Context, b *buf) {
		b.rawf("<div id=\"%s\" class=\"palette\"></div>\n", PaletteID)
	})
}
