package reviews

import (
	"fmt"
	"math"
	"strings"

	"resume-review-backend/internal/agents"
)

// Aggregation weights. Overall weighs the appeal side slightly higher:
// competitiveness for the target role matters more to recruiters than
// document polish.
const (
	weightStructure = 0.45
	weightAppeal    = 0.55
)

// Market tier thresholds over the overall score; executive additionally
// requires a strong appeal average.
const (
	tierMidFloor       = 50.0
	tierSeniorFloor    = 70.0
	tierExecutiveFloor = 85.0
	execAppealFloor    = 80.0
)

// Aggregated holds the derived headline scores.
type Aggregated struct {
	Overall          float64
	ATS              float64
	Content          float64
	Formatting       float64
	MarketTier       string
	ExecutiveSummary string
}

// Aggregate derives the headline scores, market tier and executive summary
// from the two agent analyses. It is deterministic: identical inputs
// always produce identical output.
func Aggregate(out agents.Output) Aggregated {
	structureAvg := out.Structure.Scores.Average()
	appealAvg := out.Appeal.Scores.Average()

	agg := Aggregated{
		Overall:    round1(weightStructure*structureAvg + weightAppeal*appealAvg),
		ATS:        round1(0.5*out.Structure.Scores.Format + 0.5*out.Appeal.Scores.SkillsAlignment),
		Content:    round1((out.Appeal.Scores.AchievementRelevance + out.Appeal.Scores.ExperienceFit + out.Structure.Scores.Completeness) / 3),
		Formatting: round1((out.Structure.Scores.Format + out.Structure.Scores.Organization) / 2),
	}
	agg.MarketTier = marketTier(agg.Overall, appealAvg)
	agg.ExecutiveSummary = executiveSummary(agg.Overall, agg.MarketTier, out)
	return agg
}

func marketTier(overall, appealAvg float64) string {
	switch {
	case overall >= tierExecutiveFloor && appealAvg >= execAppealFloor:
		return TierExecutive
	case overall >= tierSeniorFloor:
		return TierSenior
	case overall >= tierMidFloor:
		return TierMid
	default:
		return TierEntry
	}
}

func executiveSummary(overall float64, tier string, out agents.Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall score %.1f, positioned at the %s tier.", overall, tier)
	if s := firstOf(out.Appeal.Strengths, out.Structure.Strengths); s != "" {
		fmt.Fprintf(&b, " Key strength: %s.", strings.TrimRight(s, "."))
	}
	if a := firstOf(out.Appeal.ImprovementAreas, out.Structure.ImprovementAreas); a != "" {
		fmt.Fprintf(&b, " Top improvement area: %s.", strings.TrimRight(a, "."))
	}
	return b.String()
}

func firstOf(lists ...[]string) string {
	for _, list := range lists {
		for _, item := range list {
			if strings.TrimSpace(item) != "" {
				return strings.TrimSpace(item)
			}
		}
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
