// Package crawler walks the paginated film category of a year and yields the
// films it lists, with non-film entries filtered out and titles cleaned.
package crawler
