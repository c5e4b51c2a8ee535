package images

import (
	"math"
	"sort"

	"github.com/use-agent/purify/models"
)

// score computes §4.6's scoring formula for every candidate in place:
// score = 2·[inArticleScope] + 1·[source=="og"] + 1·[aspect whitelisted] + log10(max(1, area)).
func (s *Selector) score(candidates []*models.ImageCandidate) {
	for _, c := range candidates {
		var sc float64
		if c.InArticleScope {
			sc += 2
		}
		if c.Source == "og" {
			sc += 1
		}
		if c.Height > 0 {
			aspect := float64(c.Width) / float64(c.Height)
			if s.whitelistedAspect(aspect) {
				sc += 1
			}
		}
		area := c.Area
		if area < 1 {
			area = 1
		}
		sc += math.Log10(float64(area))
		c.Score = sc
	}
}

// sortCandidates orders by (score desc, area desc), the monotone ordering
// §8 requires: if A dominates B in (score, area), A ranks >= B.
func sortCandidates(candidates []*models.ImageCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Area > candidates[j].Area
	})
}
