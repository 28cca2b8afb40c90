// Package analytics provides the deterministic scoring functions of the
// report pipeline: delivery metrics, STAR completeness, skill dimensions,
// and keyword profiling. Everything here is pure and locale-tuned to
// Korean transcripts.
package analytics

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Fillers is the fixed filler-token set counted by the delivery metrics.
// The scan tries tokens in this order, so at each position the first
// token in the list wins, not the longest.
var Fillers = []string{"음", "어", "그", "약간", "그러니까", "뭐라", "음..", "어.."}

// RoundTiming is the per-round input to session-level speech analytics.
type RoundTiming struct {
	AnswerText    string
	AnswerSec     float64
	QuestionSec   float64
	MaxSilenceSec float64
}

// SpeechStats aggregates delivery metrics across a session.
type SpeechStats struct {
	TalkListenRatio float64 `json:"talkListenRatio"`
	AvgWPM          int     `json:"avgWpm"`
	WPMStd          float64 `json:"wpmStd"`
	FillerPerMin    float64 `json:"fillerPerMin"`
	LongestPauseSec float64 `json:"longestPauseSec"`
	HedgingPct      float64 `json:"hedgingPct"`
}

// WordsPerMinute computes the speaking pace of a text spoken over the
// given duration. Zero or unknown duration yields 0.
func WordsPerMinute(text string, seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) / seconds * 60))
}

// FillerPerMinute computes filler density over the given duration in
// minutes, rounded to two decimals. Zero minutes yields 0.
func FillerPerMinute(text string, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return round2(float64(CountFillers(text)) / minutes)
}

// CountFillers scans the text once, left to right, trying the filler
// tokens in list order at each position and skipping past a match.
func CountFillers(text string) int {
	count := 0
	for i := 0; i < len(text); {
		matched := 0
		for _, f := range Fillers {
			if strings.HasPrefix(text[i:], f) {
				matched = len(f)
				count++
				break
			}
		}
		if matched > 0 {
			i += matched
			continue
		}
		// Advance one rune.
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return count
}

// ComputeSpeechStats derives the session aggregate. All quantities
// default to 0 under missing duration data; no division by zero.
func ComputeSpeechStats(rounds []RoundTiming) SpeechStats {
	var userMs, allMs float64
	var words, fillerCnt int
	var longestPause float64
	for _, r := range rounds {
		userMs += r.AnswerSec * 1000
		allMs += (r.AnswerSec + r.QuestionSec) * 1000
		words += len(strings.Fields(r.AnswerText))
		fillerCnt += CountFillers(r.AnswerText)
		if r.MaxSilenceSec > longestPause {
			longestPause = r.MaxSilenceSec
		}
	}

	stats := SpeechStats{LongestPauseSec: longestPause}
	if allMs > 0 {
		stats.TalkListenRatio = round2(userMs / allMs)
	}
	minutes := userMs / 60000
	if minutes > 0 {
		stats.AvgWPM = int(math.Round(float64(words) / minutes))
		stats.FillerPerMin = round2(float64(fillerCnt) / minutes)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
