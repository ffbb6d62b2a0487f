package strategy

import (
	"sort"

	"coinscan/internal/model"
)

// Rank filters records to score >= minScore, sorts them by score descending
// and truncates to topN. Ties keep the original discovery order via the
// recorded sequence number, so the ranking is reproducible regardless of the
// order results were collected in.
func Rank(records []model.ScoreRecord, minScore, topN int) []model.ScoreRecord {
	ranked := make([]model.ScoreRecord, 0, len(records))
	for _, r := range records {
		if r.Score >= minScore {
			ranked = append(ranked, r)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Seq < ranked[j].Seq
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
