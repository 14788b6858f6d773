package components

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/pkg/pipeline"
)

// ChartTags is how many popular tags the tag chart shows.
const ChartTags = 10

const (
	chartWidth  = 240
	barHeight   = 14
	hourHeight  = 60
	labelOffset = 90
)

// Charts renders the row count, the top tags and the UTC hour histogram
// for the current view.
func Charts(v session.View) templ.Component {
	return component(func(ctx context.Context, b *buf) {
		res := v.Result
		b.raw("<div class=\"charts\">\n")
		b.rawf("<div class=\"stat\"><span class=\"stat-value\">%d</span> <span class=\"stat-label\">rows in view</span></div>\n", len(res.Sorted))
		b.render(ctx, tagBars(res.Popular[:min(ChartTags, len(res.Popular))]))
		if v.TimestampColumn >= 0 {
			b.render(ctx, hourBars(res.Hours))
		}
		b.raw("</div>\n")
	})
}

func tagBars(tags []pipeline.TagCount) templ.Component {
	return component(func(_ context.Context, b *buf) {
		if len(tags) == 0 {
			return
		}
		top := tags[0].Count
		height := len(tags) * (barHeight + 4)
		b.rawf("<svg class=\"chart tags\" viewBox=\"0 0 %d %d\" role=\"img\" aria-label=\"Top tags\">\n", chartWidth, height)
		for i, tc := range tags {
			y := i * (barHeight + 4)
			w := scale(tc.Count, top, chartWidth-labelOffset)
			b.rawf("<text x=\"0\" y=\"%d\" class=\"label\">%s</text>", y+barHeight-3, esc(truncate(tc.Tag, 14)))
			b.rawf("<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" class=\"bar\"><title>%s: %d</title></rect>\n",
				labelOffset, y, w, barHeight, esc(tc.Tag), tc.Count)
		}
		b.raw("</svg>\n")
	})
}

func hourBars(hours [24]int) templ.Component {
	return component(func(_ context.Context, b *buf) {
		top := slices.Max(hours[:])
		if top == 0 {
			return
		}
		step := chartWidth / 24
		b.rawf("<svg class=\"chart hours\" viewBox=\"0 0 %d %d\" role=\"img\" aria-label=\"Runs by UTC hour\">\n", chartWidth, hourHeight+12)
		for h, n := range hours {
			bh := scale(n, top, hourHeight)
			b.rawf("<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" class=\"bar\"><title>%02d:00 UTC: %d</title></rect>\n",
				h*step, hourHeight-bh, step-1, bh, h, n)
		}
		for _, h := range []int{0, 6, 12, 18} {
			b.rawf("<text x=\"%d\" y=\"%d\" class=\"label\">%s</text>", h*step, hourHeight+11, strconv.Itoa(h))
		}
		b.raw("</svg>\n")
	})
}

// scale maps n in [0, top] to [0, span], keeping non-zero values visible.
func scale(n, top, span int) int {
	if n <= 0 || top <= 0 {
		return 0
	}
	return max(n*span/top, 1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return fmt.Sprintf("%s…", string(r[:n-1]))
}
