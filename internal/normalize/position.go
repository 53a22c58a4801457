package normalize

import (
	"math/rand/v2"

	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/types"

	"gonum.org/v1/gonum/stat/distuv"
)

// Strategy returns the engagement strategy for an (influence, sentiment) position
func Strategy(vocab config.VocabularyConfig, influence, sentiment float64, known bool) string {
	if known {
		for _, q := range vocab.Strategies {
			if q.Influence == influence && q.Sentiment == sentiment {
				return q.Strategy
			}
		}
	}
	return vocab.UndefinedStrategy
}

// Place maps records onto the influence/sentiment plane. Values outside the
// vocabulary leave the point unknown and the impact size at its default.
// Jitter is drawn from a source seeded per call, so the same input always
// lands on the same display coordinates. It never changes X or Y.
func Place(records []types.NormalizedRecord, vocab config.VocabularyConfig, jitter config.JitterConfig) []types.Point {
	points := make([]types.Point, len(records))

	for i, rec := range records {
		x, okX := vocab.Level.Position(rec.Influence)
		y, okY := vocab.Sentiment.Position(rec.Sentiment)

		size, ok := vocab.ImpactSize.Position(rec.Impact)
		if !ok {
			size = vocab.DefaultImpactSize
		}

		known := okX && okY
		points[i] = types.Point{
			Record:   rec,
			X:        x,
			Y:        y,
			Known:    known,
			Size:     size,
			Strategy: Strategy(vocab, x, y, known),
		}
	}

	offsets := distuv.Uniform{
		Min: -jitter.Spread,
		Max: jitter.Spread,
		Src: rand.NewPCG(jitter.Seed, jitter.Seed),
	}

	// All x offsets first, then all y offsets.
	for i := range points {
		points[i].JitterX = points[i].X + offsets.Rand()
	}
	for i := range points {
		points[i].JitterY = points[i].Y + offsets.Rand()
	}

	return points
}
