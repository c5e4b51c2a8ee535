package images

import (
	"github.com/use-agent/purify/models"
)

// filter applies §4.6's size/aspect/ad-size/bad-hint rules. Candidates with
// unknown dimensions are accepted unless badHint is true.
func (s *Selector) filter(candidates []*models.ImageCandidate) []*models.ImageCandidate {
	out := make([]*models.ImageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Width == 0 || c.Height == 0 {
			if !c.BadHint {
				out = append(out, c)
			}
			continue
		}
		if s.passesFilters(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Selector) passesFilters(c *models.ImageCandidate) bool {
	shortSide := c.Width
	if c.Height < shortSide {
		shortSide = c.Height
	}
	if shortSide < s.cfg.MinShortSide {
		return false
	}
	if c.Width*c.Height < s.cfg.MinArea {
		return false
	}

	aspect := float64(c.Width) / float64(c.Height)
	if !s.aspectAllowed(aspect) {
		return false
	}

	if isAdSize(c.Width, c.Height, s.cfg.AdSizes) {
		return false
	}

	if c.BadHint {
		if shortSide < 400 || c.Width*c.Height < 300000 {
			return false
		}
	}

	return true
}

func (s *Selector) aspectAllowed(aspect float64) bool {
	if aspect >= s.cfg.MinAspect && aspect <= s.cfg.MaxAspect {
		return true
	}
	return s.whitelistedAspect(aspect)
}

func (s *Selector) whitelistedAspect(aspect float64) bool {
	for _, r := range s.cfg.RatioWhitelist {
		if absFloat(aspect-r) <= s.cfg.RatioTol {
			return true
		}
	}
	return false
}

func isAdSize(w, h int, sizes [][2]int) bool {
	for _, sz := range sizes {
		if sz[0] == w && sz[1] == h {
			return true
		}
	}
	return false
}
