// Package coverage derives per-category coverage statistics and topic-scoped
// actor sets from an article list and the full actor roster. Inputs are never
// mutated; everything is recomputed per call.
package coverage

import (
	"math"
	"math/rand"
	"sort"

	"github.com/curiosinfo/curiosinfo/internal/models"
)

// Stat is the coverage of one actor category on a topic: how many of the
// category's actors published at least one article, out of the category
// total, as a percentage rounded to one decimal.
type Stat struct {
	Type        string  `json:"type"`
	TypeRaw     string  `json:"typeRaw"`
	CoveragePct float64 `json:"coveragePct"`
	Covered     int     `json:"covered"`
	Total       int     `json:"total"`
}

// Compute groups the roster by normalized category and counts, per category,
// the actors referenced by at least one of the topic's articles. Results are
// ordered by descending coverage percentage; ties keep the order in which
// categories were first encountered in the roster. An empty roster yields an
// empty slice, never an error.
func Compute(allActors []models.Actor, articles []models.Article) []Stat {
	covered := make(map[int]bool, len(articles))
	for _, a := range articles {
		covered[a.ActorID] = true
	}

	byType := make(map[string]*Stat)
	order := make([]string, 0)

	for _, actor := range allActors {
		category := models.NormalizeCategory(actor.ActorType)
		stat, ok := byType[category]
		if !ok {
			stat = &Stat{Type: models.CategoryLabel(category), TypeRaw: category}
			byType[category] = stat
			order = append(order, category)
		}
		stat.Total++
		if covered[actor.ID] {
			stat.Covered++
		}
	}

	stats := make([]Stat, 0, len(order))
	for _, category := range order {
		stat := byType[category]
		if stat.Total > 0 {
			pct := float64(stat.Covered) / float64(stat.Total) * 100
			stat.CoveragePct = math.Round(pct*10) / 10
		}
		stats = append(stats, *stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].CoveragePct > stats[j].CoveragePct
	})

	return stats
}

// ActorsInTopic returns the distinct actors referenced by the given articles,
// ordered by the first referencing article. Unresolvable actor references are
// skipped.
func ActorsInTopic(allActors []models.Actor, articles []models.Article) []models.Actor {
	byID := make(map[int]models.Actor, len(allActors))
	for _, actor := range allActors {
		byID[actor.ID] = actor
	}

	seen := make(map[int]bool)
	result := make([]models.Actor, 0)
	for _, article := range articles {
		if seen[article.ActorID] {
			continue
		}
		seen[article.ActorID] = true
		if actor, ok := byID[article.ActorID]; ok {
			result = append(result, actor)
		}
	}

	return result
}

// Jitter offsets a scatter-plot coordinate by a uniform random value in
// [-0.1, 0.1) so actors with identical axis scores do not overlap exactly.
// Presentation-time only; never persist the result.
func Jitter(v float64) float64 {
	return v + (rand.Float64()*0.2 - 0.1)
}
