package ranking_test

import (
	"testing"

	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/UnknownOlympus/courier/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(id int, coords *models.Coordinates) ranking.Pair {
	return ranking.Pair{Restaurant: models.Restaurant{ID: id, Name: "r"}, Coordinates: coords}
}

func point(lon, lat float64) *models.Coordinates {
	return &models.Coordinates{Longitude: lon, Latitude: lat}
}

func order(candidates []models.Candidate) []int {
	out := make([]int, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Restaurant.ID)
	}

	return out
}

func TestDistanceKm(t *testing.T) {
	t.Run("one degree along the equator", func(t *testing.T) {
		km := ranking.DistanceKm(models.Coordinates{}, models.Coordinates{Longitude: 1})

		assert.InDelta(t, 111.32, km, 0.005)
	})

	t.Run("same point", func(t *testing.T) {
		km := ranking.DistanceKm(*point(37.61, 55.75), *point(37.61, 55.75))

		assert.Zero(t, km)
	})

	t.Run("moscow to saint petersburg", func(t *testing.T) {
		km := ranking.DistanceKm(*point(37.6173, 55.7558), *point(30.3351, 59.9343))

		assert.InDelta(t, 634.6, km, 5)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		km := ranking.DistanceKm(*point(37.6173, 55.7558), *point(37.5, 55.7))

		assert.InDelta(t, km, float64(int(km*100+0.5))/100, 1e-9)
	})
}

func TestRank(t *testing.T) {
	origin := point(0, 0)

	t.Run("nearest first", func(t *testing.T) {
		ranked := ranking.Rank(origin, []ranking.Pair{
			pair(1, point(0.3, 0)),
			pair(2, point(0.1, 0)),
			pair(3, point(0.2, 0)),
		})

		assert.Equal(t, []int{2, 3, 1}, order(ranked))
		for _, c := range ranked {
			assert.True(t, c.Distance.Resolved())
		}
	})

	t.Run("equal distances keep input order", func(t *testing.T) {
		ranked := ranking.Rank(origin, []ranking.Pair{
			pair(5, point(0.1, 0)),
			pair(4, point(-0.1, 0)),
			pair(3, point(0.05, 0)),
		})

		assert.Equal(t, []int{3, 5, 4}, order(ranked))
	})

	t.Run("deterministic", func(t *testing.T) {
		pairs := []ranking.Pair{
			pair(1, point(0.1, 0)), pair(2, nil), pair(3, point(-0.1, 0)), pair(4, nil), pair(5, point(0.05, 0)),
		}

		first := ranking.Rank(origin, pairs)
		for range 10 {
			assert.Equal(t, first, ranking.Rank(origin, pairs))
		}
	})

	t.Run("unknown order coordinates mark every candidate", func(t *testing.T) {
		ranked := ranking.Rank(nil, []ranking.Pair{pair(1, point(1, 1)), pair(2, nil)})

		require.Len(t, ranked, 2)
		assert.False(t, ranked[0].Distance.Resolved())
		assert.False(t, ranked[1].Distance.Resolved())
		assert.Equal(t, []int{1, 2}, order(ranked))
	})

	t.Run("unresolved restaurant is demoted, not dropped", func(t *testing.T) {
		ranked := ranking.Rank(origin, []ranking.Pair{pair(2, nil), pair(1, point(1, 1)), pair(3, nil)})

		require.Len(t, ranked, 3)
		assert.Equal(t, []int{1, 2, 3}, order(ranked))
		assert.True(t, ranked[0].Distance.Resolved())
		assert.False(t, ranked[1].Distance.Resolved())
		assert.False(t, ranked[2].Distance.Resolved())
	})

	t.Run("empty candidate list", func(t *testing.T) {
		ranked := ranking.Rank(origin, nil)

		require.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})
}
