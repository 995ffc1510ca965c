// Package service implements the concrete tool services registered with the
// intent router: ride hailing, weather lookup, and time queries.
package service

import (
	"strings"

	"github.com/tymem/mem-agent/internal/router"
)

// Scoring weights for keyword/intent matching. A single trigger hit lands
// at baseHitScore, just above the default acceptance threshold; every
// additional hit adds extraHitScore up to 1.0.
const (
	baseHitScore  = 0.6
	extraHitScore = 0.15
)

// matchScore computes a normalized confidence from keyword and capability
// overlap with the request. Keywords match as substrings of the normalized
// utterance. CJK text carries no word boundaries, so containment is the
// matching unit. Capability tags match the request's upstream intent tags.
// The function is pure and total: no I/O, never fails, zero on no overlap.
func matchScore(req *router.Request, keywords, capabilities []string) float64 {
	utterance := req.Normalized()

	hits := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(utterance, strings.ToLower(kw)) {
			hits++
		}
	}
	for _, tag := range capabilities {
		if req.HasTag(tag) {
			hits++
		}
	}

	if hits == 0 {
		return 0
	}
	score := baseHitScore + extraHitScore*float64(hits-1)
	if score > 1 {
		return 1
	}
	return score
}
