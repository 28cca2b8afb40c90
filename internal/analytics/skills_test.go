package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillsFromRounds_FixedDimensions(t *testing.T) {
	skills := SkillsFromRounds(nil)
	require.Len(t, skills, 5)

	keys := []string{"communication", "logic", "expertise", "problemSolving", "attitude"}
	for i, s := range skills {
		assert.Equal(t, keys[i], s.Key)
		assert.Equal(t, 0.0, s.Score)
	}
}

func TestSkillsFromRounds_AllEmptyAnswersNoFloor(t *testing.T) {
	skills := SkillsFromRounds([]RoundSignal{
		{StarScore: 0, AnswerText: ""},
		{StarScore: 0, AnswerText: "   "},
	})
	for _, s := range skills {
		assert.Equal(t, 0.0, s.Score, s.Key)
	}
}

func TestSkillsFromRounds_FloorAppliesWithPresentAnswer(t *testing.T) {
	skills := SkillsFromRounds([]RoundSignal{
		{StarScore: 0, AnswerText: "키워드 신호가 전혀 없는 답변"},
	})

	// Floor of 40: communication = round(40*0.86/100*5, 0.1) = 1.7.
	byKey := map[string]float64{}
	for _, s := range skills {
		byKey[s.Key] = s.Score
	}
	assert.Equal(t, 1.7, byKey["communication"])
	assert.Equal(t, 1.6, byKey["logic"])
	assert.Equal(t, 1.6, byKey["expertise"])
	assert.Equal(t, 1.6, byKey["problemSolving"])
	assert.Equal(t, 1.8, byKey["attitude"])
}

func TestSkillsFromRounds_NoFloorWhenAveragepositive(t *testing.T) {
	skills := SkillsFromRounds([]RoundSignal{
		{StarScore: 50, AnswerText: "상황과 결과"},
	})

	// avg 50: communication = round(50*0.86/100*5, 0.1) = 2.2.
	assert.Equal(t, 2.2, skills[0].Score)
	// attitude = round(50*0.88/100*5, 0.1) = 2.2.
	assert.Equal(t, 2.2, skills[4].Score)
}

func TestSkillsFromRounds_MeanIsRounded(t *testing.T) {
	// (25+50)/2 = 37.5 -> rounds to 38.
	skills := SkillsFromRounds([]RoundSignal{
		{StarScore: 25, AnswerText: "a"},
		{StarScore: 50, AnswerText: "b"},
	})
	// communication: 38*0.86 = 32.68 -> /100*5 = 1.634 -> 1.6.
	assert.Equal(t, 1.6, skills[0].Score)
}

func TestToFive_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, toFive(-10))
	assert.Equal(t, 5.0, toFive(250))
	assert.Equal(t, 2.5, toFive(50))
}
