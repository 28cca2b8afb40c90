package transcript

import (
	"sort"
	"strings"
)

// Round is one question/answer exchange reconstructed from the transcript.
// AnswerSec and MaxSilenceSec are zero when the source carries no timing.
type Round struct {
	Index         int
	Type          string
	Interviewer   string
	Question      string
	Answer        string
	AnswerSec     float64
	MaxSilenceSec float64
	Score         *float64
}

// BuildRounds produces the ordered round list for a session. A structured
// round array supplied by the session record is authoritative; otherwise
// the free-form event stream is grouped heuristically. An empty source
// yields an empty list.
func BuildRounds(structured []map[string]any, events []Event) []Round {
	if len(structured) > 0 {
		return roundsFromStructured(structured)
	}
	return roundsFromEvents(events)
}

// roundsFromStructured maps pre-built question/answer objects directly,
// tolerating both `question: "..."` and `question: {text: "..."}` shapes.
func roundsFromStructured(structured []map[string]any) []Round {
	rounds := make([]Round, 0, len(structured))
	for i, raw := range structured {
		r := Round{Index: i + 1}
		if n, ok := roundOf(Event(raw)); ok {
			r.Index = n
		} else if idx, ok := raw["idx"].(float64); ok && idx >= 1 {
			r.Index = int(idx)
		}
		r.Type = typeOf(Event(raw))
		if s, ok := raw["interviewer"].(string); ok {
			r.Interviewer = s
		}
		switch q := raw["question"].(type) {
		case string:
			r.Question = q
		case map[string]any:
			r.Question = flattenText(q)
		}
		if a, ok := raw["answer"].(map[string]any); ok {
			if s, ok := a["text"].(string); ok {
				r.Answer = s
			}
			if sec, ok := a["durationSec"].(float64); ok {
				r.AnswerSec = sec
			}
			if sil, ok := a["maxSilenceSec"].(float64); ok {
				r.MaxSilenceSec = sil
			}
			if score, ok := a["score"].(float64); ok {
				s := score
				r.Score = &s
			}
		}
		rounds = append(rounds, r)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Index < rounds[j].Index })
	return rounds
}

// roundsFromEvents groups an ordered event stream. An explicit round
// number on the event wins; otherwise a bot event opens a new round and a
// user event attaches to the current one (or round 1 when none is open).
// Unknown roles never move the boundary.
func roundsFromEvents(events []Event) []Round {
	byRound := make(map[int]*Round)
	last := 0
	for _, ev := range events {
		role := RoleOf(ev)
		num, explicit := roundOf(ev)
		if !explicit {
			switch role {
			case RoleBot:
				num = last + 1
			default:
				num = last
				if num == 0 {
					num = 1
				}
				// Unattributable text before any round has opened.
				if role != RoleUser && len(byRound) == 0 {
					continue
				}
			}
		}
		rec, ok := byRound[num]
		if !ok {
			rec = &Round{
				Index:       num,
				Type:        typeOf(ev),
				Interviewer: interviewerOf(ev),
			}
			byRound[num] = rec
		}
		if num > last {
			last = num
		}

		txt := TextOf(ev)
		if txt == "" {
			continue
		}
		switch role {
		case RoleBot:
			rec.Question = joinLines(rec.Question, txt)
		default:
			// Candidate text, plus unknown-role fragments that arrived
			// inside an open round.
			rec.Answer = joinLines(rec.Answer, txt)
		}
	}

	rounds := make([]Round, 0, len(byRound))
	for _, rec := range byRound {
		rounds = append(rounds, *rec)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Index < rounds[j].Index })
	return rounds
}

func joinLines(acc, txt string) string {
	if acc == "" {
		return txt
	}
	return acc + "\n" + txt
}

// JoinAnswers concatenates the answer texts of all rounds, newline
// separated, for aggregate-level analysis.
func JoinAnswers(rounds []Round) string {
	parts := make([]string, len(rounds))
	for i, r := range rounds {
		parts[i] = r.Answer
	}
	return strings.Join(parts, "\n")
}
