package components

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/horizon/internal/theme"
	"github.com/leapstack-labs/horizon/internal/ui/resources"
)

// PageData is everything the document shell needs.
type PageData struct {
	Title   string
	IsDev   bool
	Vars    []theme.Var
	Signals Signals
	Body    templ.Component
}

// Signals are the client-side values bound to form controls. They are
// posted with every action.
type Signals struct {
	Search      string `json:"search"`
	CSV         string `json:"csv"`
	Paging      bool   `json:"paging"`
	PageSize    int    `json:"pageSize"`
	AutoRefresh bool   `json:"autoRefresh"`
	RefreshSec  int    `json:"refreshSec"`
	Palette     string `json:"palette"`
}

// Page renders the full HTML document around data.Body.
func Page(data PageData) templ.Component {
	return component(func(ctx context.Context, b *buf) {
		signals, err := json.Marshal(data.Signals)
		if err != nil {
			b.err = err
			return
		}

		b.raw("<!doctype html>\n<html lang=\"en\">\n<head>\n")
		b.raw("<meta charset=\"utf-8\">\n")
		b.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		b.rawf("<title>%s - Horizon</title>\n", esc(data.Title))
		b.rawf("<link rel=\"stylesheet\" href=\"%s\">\n", resources.StaticPath("app.css"))
		if style := theme.Style(data.Vars); style != "" {
			b.rawf("<style>:root { %s }</style>\n", strings.ReplaceAll(style, "<", ""))
		}
		b.rawf("<script type=\"module\" src=\"%s\"></script>\n", DatastarScript)
		b.raw("</head>\n")

		b.rawf("<body data-signals=\"%s\" data-init=\"@get('/updates', {openWhenHidden: true})\">\n", esc(string(signals)))
		if data.IsDev {
			b.raw("<div data-init=\"@get('/reload', {retryMaxCount: 1000})\"></div>\n")
		}
		b.render(ctx, data.Body)
		b.render(ctx, PaletteClosed())
		b.raw("</body>\n</html>\n")
	})
}
