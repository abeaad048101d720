// Package film defines the harvested dataset, its title cleanup rules, and the
// actor index derived from it.
package film

// FilmEntry is a single film with its cast as listed on the source page.
type FilmEntry struct {
	Title  string   `json:"title"`
	Actors []string `json:"actors"`
}

// NewFilmEntry builds an entry, guaranteeing a non-nil actor list so the
// encoded form is always an array.
func NewFilmEntry(title string, actors []string) FilmEntry {
	if actors == nil {
		actors = []string{}
	}
	return FilmEntry{Title: title, Actors: actors}
}

// YearResult holds the films of one year in crawl order.
type YearResult []FilmEntry

// MovieDataset maps a release year to its films.
type MovieDataset map[int]YearResult

// ActorIndex maps an actor to the titles they appear in and each title's year.
type ActorIndex map[string]map[string]int

// Films returns the total number of films across all years.
func (d MovieDataset) Films() int {
	n := 0
	for _, films := range d {
		n += len(films)
	}
	return n
}
