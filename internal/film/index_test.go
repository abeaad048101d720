package film

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	dataset := MovieDataset{
		1994: {
			NewFilmEntry("Roseanne Special", []string{"Roseanne Barr", "John Goodman"}),
		},
		1995: {
			NewFilmEntry("Harvest", []string{"John Goodman"}),
			NewFilmEntry("No Cast", nil),
		},
	}

	index := BuildIndex(dataset)

	require.Len(t, index, 2)
	assert.Equal(t, map[string]int{"Roseanne Special": 1994}, index["Roseanne Barr"])
	assert.Equal(t, map[string]int{"Roseanne Special": 1994, "Harvest": 1995}, index["John Goodman"])
}

func TestBuildIndexLaterYearWins(t *testing.T) {
	t.Parallel()

	dataset := MovieDataset{
		2001: {NewFilmEntry("Twice Listed", []string{"Erika Alexander"})},
		2000: {NewFilmEntry("Twice Listed", []string{"Erika Alexander"})},
	}

	for i := 0; i < 20; i++ {
		index := BuildIndex(dataset)
		assert.Equal(t, 2001, index["Erika Alexander"]["Twice Listed"])
	}
}

func TestBuildIndexEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildIndex(MovieDataset{}))
	assert.Empty(t, BuildIndex(nil))
}

func TestYearsSorted(t *testing.T) {
	t.Parallel()

	dataset := MovieDataset{2010: nil, 1940: nil, 1988: nil}
	assert.Equal(t, []int{1940, 1988, 2010}, Years(dataset))
}
