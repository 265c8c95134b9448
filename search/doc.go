// Package search contains core.Searcher implementations used by the Search
// handler.
package search
