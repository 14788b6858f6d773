// Package pipeline derives the visible rows of a grid.
//
// Stages run in a fixed order, each a pure function of the previous stage's
// output plus its own parameters:
//
//	Search -> FilterTags -> Sort -> Paginate
//
// PopularTags aggregates the searched rows and HourHistogram the tag-filtered
// rows. View memoizes every stage so that a change to one parameter only
// recomputes the stages downstream of it.
package pipeline
