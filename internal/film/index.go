package film

import "sort"

// BuildIndex folds the dataset into an actor index. Years are visited in
// ascending order so that, when the same actor/title pair shows up under two
// years, the later year wins deterministically.
func BuildIndex(dataset MovieDataset) ActorIndex {
	index := make(ActorIndex)
	for _, year := range Years(dataset) {
		for _, entry := range dataset[year] {
			for _, actor := range entry.Actors {
				titles, ok := index[actor]
				if !ok {
					titles = make(map[string]int)
					index[actor] = titles
				}
				titles[entry.Title] = year
			}
		}
	}
	return index
}

// Years returns the dataset's years in ascending order.
func Years(dataset MovieDataset) []int {
	years := make([]int, 0, len(dataset))
	for year := range dataset {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
