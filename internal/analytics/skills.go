package analytics

import (
	"math"
	"strings"
)

// SkillScore is one of the five fixed report dimensions on a 0–5 scale.
type SkillScore struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// RoundSignal is the per-round input to skill aggregation.
type RoundSignal struct {
	StarScore  int
	AnswerText string
}

// presenceFloor is the base applied when the STAR average is exactly 0
// but the candidate did answer. It keeps the radar chart from rendering
// empty for weak-but-present answers; downstream visualization depends
// on it, so it is a fixed contract.
const presenceFloor = 40

// skillDimensions is the fixed dimension/multiplier table. Implementations
// must produce exactly these five outputs.
var skillDimensions = []struct {
	key    string
	label  string
	weight float64
}{
	{"communication", "의사소통", 0.86},
	{"logic", "논리성", 0.80},
	{"expertise", "전문성", 0.82},
	{"problemSolving", "문제해결력", 0.78},
	{"attitude", "태도/자신감", 0.88},
}

// SkillsFromRounds maps per-round STAR scores into the five skill
// dimensions. The mean STAR score (0 when there are no rounds) is floored
// to presenceFloor when it is exactly 0 and at least one answer is
// non-blank, then weighted per dimension and rescaled to 0–5 in 0.1 steps.
func SkillsFromRounds(rounds []RoundSignal) []SkillScore {
	avgStar100 := 0
	if len(rounds) > 0 {
		sum := 0
		for _, r := range rounds {
			sum += r.StarScore
		}
		avgStar100 = int(math.Round(float64(sum) / float64(len(rounds))))
	}

	if avgStar100 == 0 && anyAnswered(rounds) {
		avgStar100 = presenceFloor
	}

	skills := make([]SkillScore, 0, len(skillDimensions))
	for _, dim := range skillDimensions {
		skills = append(skills, SkillScore{
			Key:   dim.key,
			Label: dim.label,
			Score: toFive(float64(avgStar100) * dim.weight),
		})
	}
	return skills
}

func anyAnswered(rounds []RoundSignal) bool {
	for _, r := range rounds {
		if strings.TrimSpace(r.AnswerText) != "" {
			return true
		}
	}
	return false
}

// toFive rescales a 0–100 value to 0–5, rounded to the nearest 0.1.
func toFive(v float64) float64 {
	v = math.Max(0, math.Min(100, v))
	scaled := math.Round(v/100*5*10) / 10
	return math.Max(0, math.Min(5, scaled))
}
