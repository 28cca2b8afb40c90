package analytics

import (
	"regexp"
	"strings"
)

// STAR holds the four structural storytelling signals detected in an
// answer and the derived completeness score.
type STAR struct {
	S     bool `json:"S"`
	T     bool `json:"T"`
	A     bool `json:"A"`
	R     bool `json:"R"`
	Score int  `json:"score"`
}

// resultFigure accepts a percentage or count figure as a result signal.
var resultFigure = regexp.MustCompile(`\d+%|\d+건`)

// ScoreSTAR detects the situation/task/action/result cues in an answer.
// Each present component contributes 25 points, so the score is always
// one of 0, 25, 50, 75, 100. No partial credit within a component.
func ScoreSTAR(text string) STAR {
	has := func(cues ...string) bool {
		for _, cue := range cues {
			if strings.Contains(text, cue) {
				return true
			}
		}
		return false
	}

	st := STAR{
		S: has("상황", "배경"),
		T: has("과제", "문제"),
		A: has("행동", "어떻게"),
		R: has("결과", "성과") || resultFigure.MatchString(text),
	}
	for _, present := range []bool{st.S, st.T, st.A, st.R} {
		if present {
			st.Score += 25
		}
	}
	return st
}
