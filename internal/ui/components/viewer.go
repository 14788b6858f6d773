package components

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/tablestate"
	"github.com/leapstack-labs/horizon/pkg/core"
)

// ViewerID is the element morphed on every update.
const ViewerID = "viewer"

// keyBindings maps [ and ] to page navigation, r to reload and / to the
// search box. Keys typed into form controls are ignored.
const keyBindings = `!['INPUT', 'SELECT', 'TEXTAREA'].includes(evt.target.tagName) && (` +
	`evt.key === '[' ? @post('/actions/page?to=prev') : ` +
	`evt.key === ']' ? @post('/actions/page?to=next') : ` +
	`evt.key === 'r' ? @post('/actions/reload') : ` +
	`evt.key === '/' ? (evt.preventDefault(), document.getElementById('search').focus()) : null)`

// PageSizes are offered by the pager.
var PageSizes = []int{25, 50, 100, 250, 500}

// SignalsFor derives the bound control values from a view.
func SignalsFor(v session.View) Signals {
	st := v.State
	return Signals{
		Search:      st.Search,
		CSV:         st.Source,
		Paging:      st.Paging,
		PageSize:    st.PageSize,
		AutoRefresh: st.AutoRefresh,
		RefreshSec:  int(st.RefreshInterval.Seconds()),
	}
}

// Viewer renders the whole viewer: toolbar, sidebar, table and pager.
func Viewer(v session.View) templ.Component {
	return component(func(ctx context.Context, b *buf) {
		st := v.State
		wrap := ""
		if st.Wrap {
			wrap = "wrap"
		}
		b.rawf("<main id=\"%s\" class=\"%s\" data-theme=\"%s\" data-on:keydown__window=\"%s\">\n",
			ViewerID, classes("viewer", wrap), esc(string(st.Theme)), esc(keyBindings))

		b.render(ctx, Toolbar(v))
		b.render(ctx, Notices(st))

		b.raw("<div class=\"viewer-body\">\n")
		b.render(ctx, Sidebar(v))
		b.raw("<section class=\"viewer-table\">\n")
		b.render(ctx, Table(v))
		b.render(ctx, Pager(v))
		b.raw("</section>\n</div>\n")

		if st.ShowColumns {
			b.render(ctx, ColumnsModal(st))
		}
		b.raw("</main>\n")
	})
}

// Toolbar renders the source, search and view controls.
func Toolbar(v session.View) templ.Component {
	return component(func(_ context.Context, b *buf) {
		st := v.State
		b.raw("<header class=\"toolbar\">\n")

		b.raw("<div class=\"toolbar-source\">\n")
		b.raw("<input class=\"input\" type=\"text\" placeholder=\"CSV path or URL\" data-bind:csv data-on:keydown=\"evt.key === 'Enter' && @post('/actions/source')\">\n")
		b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/source')\">Load</button>\n")
		b.raw("<button class=\"btn\" title=\"Reload (r)\" data-on:click=\"@post('/actions/reload')\">Reload</button>\n")
		// The form carries the multipart encoding that the form content type reads.
		b.raw("<form class=\"upload-form\" method=\"post\" action=\"/upload\" enctype=\"multipart/form-data\">")
		b.raw("<label class=\"btn upload\">Upload<input type=\"file\" name=\"file\" accept=\".csv,text/csv\" hidden data-on:change=\"@post('/upload', {contentType: 'form'})\"></label>")
		b.raw("</form>\n")
		b.raw("</div>\n")

		b.raw("<input id=\"search\" class=\"input search\" type=\"search\" placeholder=\"Search (/)\" data-bind:search data-on:input__debounce.250ms=\"@post('/actions/search')\">\n")

		b.raw("<div class=\"toolbar-view\">\n")
		b.raw("<label><input type=\"checkbox\" data-bind:paging data-on:change=\"@post('/actions/paging')\"> Paging</label>\n")
		b.raw("<label><input type=\"checkbox\" data-bind:auto-refresh data-on:change=\"@post('/actions/refresh')\"> Auto refresh</label>\n")
		b.rawf("<input class=\"input narrow\" type=\"number\" min=\"%d\" step=\"1\" title=\"Refresh interval (s)\" data-bind:refresh-sec data-on:change=\"@post('/actions/refresh')\">\n",
			int(tablestate.MinRefreshInterval.Seconds()))
		b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/wrap')\">Wrap</button>\n")
		b.rawf("<button class=\"btn\" data-on:click=\"@post('/actions/theme')\">Theme: %s</button>\n", esc(string(st.Theme)))
		b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/columns?open=1')\">Columns</button>\n")
		b.raw("<a class=\"btn\" href=\"/export.csv\" download=\"filtered.csv\">Export</a>\n")
		b.raw("<button class=\"btn\" data-on:click=\"navigator.clipboard.writeText(location.href).then(() => @post('/actions/copy?ok=1'), () => @post('/actions/copy?ok=0'))\">Copy link</button>\n")
		b.raw("</div>\n")

		b.raw("<div class=\"toolbar-status\">")
		if st.Loading {
			b.raw("<span class=\"status loading\">Loading…</span>")
		}
		if st.Copied != "" {
			b.rawf("<span class=\"status copied\">%s</span>", esc(st.Copied))
		}
		b.raw("</div>\n")

		b.raw("</header>\n")
	})
}

// Notices renders the load error and schema warnings.
func Notices(st tablestate.TableState) templ.Component {
	return component(func(_ context.Context, b *buf) {
		if st.Error == "" && len(st.Warnings) == 0 {
			return
		}
		b.raw("<div class=\"notices\">\n")
		if st.Error != "" {
			b.rawf("<div class=\"notice error\" role=\"alert\">%s</div>\n", esc(st.Error))
		}
		for _, w := range st.Warnings {
			b.rawf("<div class=\"notice warning\">%s</div>\n", esc(w))
		}
		b.raw("</div>\n")
	})
}

// Sidebar renders the runs index, tag filters and charts.
func Sidebar(v session.View) templ.Component {
	return component(func(ctx context.Context, b *buf) {
		st := v.State
		b.raw("<aside class=\"sidebar\">\n")

		b.raw("<button class=\"btn palette-open\" data-on:click=\"@get('/palette')\">Search runs and tags</button>\n")

		if len(v.Runs) > 0 {
			b.raw("<h3>Runs</h3>\n<ul class=\"runs\">\n")
			for _, r := range v.Runs {
				active := ""
				if r.Path == st.Source {
					active = "active"
				}
				b.rawf("<li><button class=\"%s\" data-on:click=\"@post('/actions/source?run=%s')\">%s</button></li>\n",
					classes("link", active), esc(url.QueryEscape(r.Name)), esc(r.Name))
			}
			b.raw("</ul>\n")
		}

		if len(st.SelectedTags) > 0 {
			b.raw("<h3>Filters</h3>\n<div class=\"chips\">\n")
			for _, t := range st.SelectedTags {
				b.render(ctx, tagChip(t, true, 0))
			}
			b.raw("<button class=\"link\" data-on:click=\"@post('/actions/clear-tags')\">Clear</button>\n</div>\n")
		}

		if len(v.Result.Popular) > 0 {
			b.raw("<h3>Popular tags</h3>\n<div class=\"chips\">\n")
			for _, tc := range v.Result.Popular {
				b.render(ctx, tagChip(tc.Tag, st.HasTag(tc.Tag), tc.Count))
			}
			b.raw("</div>\n")
		}

		b.render(ctx, Charts(v))
		b.raw("</aside>\n")
	})
}

func tagChip(tag string, selected bool, count int) templ.Component {
	return component(func(_ context.Context, b *buf) {
		sel := ""
		if selected {
			sel = "selected"
		}
		b.rawf("<button class=\"%s\" data-on:click=\"@post('/actions/tag?tag=%s')\">%s",
			classes("chip", sel), esc(url.QueryEscape(tag)), esc(tag))
		if count > 0 {
			b.rawf(" <small>%d</small>", count)
		}
		b.raw("</button>\n")
	})
}

// Table renders the visible rows in display order.
func Table(v session.View) templ.Component {
	return component(func(_ context.Context, b *buf) {
		st := v.State
		if st.Grid.Empty() {
			if !st.Loading && st.Error == "" {
				b.raw("<p class=\"empty\">No data loaded.</p>\n")
			}
			return
		}

		b.raw("<table class=\"grid\">\n<thead><tr>\n")
		for _, col := range v.Columns {
			indicator := ""
			if dir, ok := st.SortDirection(col); ok {
				indicator = " ▲"
				if dir == core.Desc {
					indicator = " ▼"
				}
			}
			b.rawf("<th><button class=\"sort\" data-on:click=\"@post('/actions/sort?col=%d')\">%s%s</button></th>\n",
				col, esc(st.Grid.Header.Cell(col)), indicator)
		}
		b.raw("</tr></thead>\n<tbody>\n")
		for _, row := range v.Result.Visible {
			b.raw("<tr>")
			for _, col := range v.Columns {
				b.raw("<td>")
				b.text(row.Cell(col))
				b.raw("</td>")
			}
			b.raw("</tr>\n")
		}
		b.raw("</tbody>\n</table>\n")
		if len(v.Result.Visible) == 0 {
			b.raw("<p class=\"empty\">No rows match.</p>\n")
		}
	})
}

// Pager renders page navigation and the page size selector.
func Pager(v session.View) templ.Component {
	return component(func(_ context.Context, b *buf) {
		st := v.State
		res := v.Result
		b.raw("<nav class=\"pager\">\n")
		b.rawf("<span class=\"count\">%d of %d rows</span>\n", len(res.Sorted), len(st.Grid.Body()))
		if st.Paging {
			b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/page?to=first')\">«</button>\n")
			b.raw("<button class=\"btn\" title=\"Previous page ([)\" data-on:click=\"@post('/actions/page?to=prev')\">‹</button>\n")
			b.rawf("<span class=\"page\">Page %d of %d</span>\n", res.Page, res.Pages)
			b.raw("<button class=\"btn\" title=\"Next page (])\" data-on:click=\"@post('/actions/page?to=next')\">›</button>\n")
			b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/page?to=last')\">»</button>\n")
			b.raw("<select class=\"input\" data-bind:page-size data-on:change=\"@post('/actions/page-size')\">\n")
			for _, n := range pageSizes(st.PageSize) {
				sel := ""
				if n == st.PageSize {
					sel = " selected"
				}
				b.rawf("<option value=\"%d\"%s>%d / page</option>\n", n, sel, n)
			}
			b.raw("</select>\n")
		}
		b.raw("</nav>\n")
	})
}

// pageSizes returns PageSizes plus current when it is not one of them.
func pageSizes(current int) []int {
	for _, n := range PageSizes {
		if n == current {
			return PageSizes
		}
	}
	out := append([]int{current}, PageSizes...)
	for i := 1; i < len(out) && out[i-1] > out[i]; i++ {
		out[i-1], out[i] = out[i], out[i-1]
	}
	return out
}

// ColumnsModal lists every column with visibility and ordering controls.
func ColumnsModal(st tablestate.TableState) templ.Component {
	return component(func(_ context.Context, b *buf) {
		b.raw("<div class=\"modal-backdrop\" data-on:click=\"@post('/actions/columns?open=0')\"></div>\n")
		b.raw("<div class=\"modal\" role=\"dialog\" aria-label=\"Columns\" data-on:keydown__window=\"evt.key === 'Escape' && @post('/actions/columns?open=0')\">\n")
		b.raw("<h2>Columns</h2>\n<ul class=\"columns\">\n")
		last := len(st.ColumnOrder) - 1
		for pos, col := range st.ColumnOrder {
			checked := " checked"
			if st.IsHidden(col) {
				checked = ""
			}
			b.raw("<li>")
			b.rawf("<label><input type=\"checkbox\"%s data-on:change=\"@post('/actions/column?col=%d')\"> %s</label>",
				checked, col, esc(st.Grid.Header.Cell(col)))
			if pos > 0 {
				b.rawf(" <button class=\"link\" title=\"Move up\" data-on:click=\"@post('/actions/move?col=%d&amp;dir=up')\">↑</button>", col)
			}
			if pos < last {
				b.rawf(" <button class=\"link\" title=\"Move down\" data-on:click=\"@post('/actions/move?col=%d&amp;dir=down')\">↓</button>", col)
			}
			b.raw("</li>\n")
		}
		b.raw("</ul>\n<footer>\n")
		b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/reset-columns')\">Reset</button>\n")
		b.raw("<button class=\"btn\" data-on:click=\"@post('/actions/columns?open=0')\">Close</button>\n")
		b.raw("</footer>\n</div>\n")
	})
}

// Query returns the URL query that reproduces st.
func Query(st tablestate.TableState) string {
	return tablestate.EncodeQuery(st).Encode()
}


