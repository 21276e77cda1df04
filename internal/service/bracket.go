package service

import (
	"fmt"

	"transfer/internal/domain"
)

// BracketResult is the mileage contribution of the bracket covering a distance.
type BracketResult struct {
	Bracket domain.MileageBracket
	Amount  float64
	Fixed   bool
}

// ResolveBracket finds the bracket with Min <= d < Max (or open-ended) and
// prices the distance. A fixed price takes precedence over a per-mile rate.
// Negative distances are treated as zero.
func ResolveBracket(distanceMiles float64, brackets []domain.MileageBracket) (BracketResult, error) {
	if distanceMiles < 0 {
		distanceMiles = 0
	}

	for _, b := range brackets {
		if !b.Contains(distanceMiles) {
			continue
		}

		switch {
		case b.FixedPrice != nil:
			return BracketResult{Bracket: b, Amount: *b.FixedPrice, Fixed: true}, nil
		case b.PerMileRate != nil:
			return BracketResult{Bracket: b, Amount: *b.PerMileRate * distanceMiles}, nil
		default:
			// Validated schemes never contain an unpriced bracket.
			return BracketResult{}, fmt.Errorf("%w: bracket at %.2f mi has no price", ErrNoBracketMatch, b.MinDistance)
		}
	}

	return BracketResult{}, fmt.Errorf("%w: %.2f mi", ErrNoBracketMatch, distanceMiles)
}
