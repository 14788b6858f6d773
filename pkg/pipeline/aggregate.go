package pipeline

import (
	"slices"

	"github.com/leapstack-labs/horizon/pkg/core"
	"github.com/leapstack-labs/horizon/pkg/csvgrid"
)

// DefaultPopularLimit caps PopularTags when no limit is given.
const DefaultPopularLimit = 20

// TagCount is a tag and the number of rows carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// PopularTags counts tag occurrences, most frequent first. Ties keep the
// order in which tags were first seen. A limit below 1 uses
// DefaultPopularLimit.
func PopularTags(rows []core.Row, tagsCol, limit int) []TagCount {
	if tagsCol < 0 {
		return nil
	}
	if limit < 1 {
		limit = DefaultPopularLimit
	}

	index := make(map[string]int)
	var counts []TagCount
	for _, row := range rows {
		for _, tag := range csvgrid.ParseTags(row.Cell(tagsCol)) {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b TagCount) int {
		return b.Count - a.Count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// HourHistogram buckets the timestamps in tsCol by UTC hour.
// Unparseable and missing values are skipped.
func HourHistogram(rows []core.Row, tsCol int) [24]int {
	var hours [24]int
	if tsCol < 0 {
		return hours
	}
	for _, row := range rows {
		if t, ok := ParseTime(row.Cell(tsCol)); ok {
			hours[t.UTC().Hour()]++
		}
	}
	return hours
}
