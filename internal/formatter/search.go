package formatter

import (
	"github.com/desertthunder/vibesync/internal/models"
	"github.com/sahilm/fuzzy"
)

// PageSize is how many tracks a results page shows.
const PageSize = 50

type trackSource []models.Track

func (s trackSource) String(i int) string { return s[i].SearchText() }
func (s trackSource) Len() int            { return len(s) }

// Search fuzzy-matches query against each track's name, artists and album, best match first.
// An empty query returns tracks unchanged.
func Search(tracks []models.Track, query string) []models.Track {
	if query == "" {
		return tracks
	}

	matches := fuzzy.FindFrom(query, trackSource(tracks))
	found := make([]models.Track, 0, len(matches))
	for _, m := range matches {
		found = append(found, tracks[m.Index])
	}
	return found
}

// Filter returns a copy of c whose track lists only hold tracks matching query. Stats are left untouched.
func Filter(c *models.Comparison, query string) *models.Comparison {
	if query == "" {
		return c
	}
	filtered := *c
	filtered.OnlyA = Search(c.OnlyA, query)
	filtered.OnlyB = Search(c.OnlyB, query)
	filtered.Common = Search(c.Common, query)
	return &filtered
}

// Page returns the first page*[PageSize] tracks and how many remain. Pages start at 1.
func Page(tracks []models.Track, page int) ([]models.Track, int) {
	if page < 1 {
		page = 1
	}
	n := min(page*PageSize, len(tracks))
	return tracks[:n], len(tracks) - n
}
