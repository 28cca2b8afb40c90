package report

// IsStale is the cache-validity predicate of the self-healing read path:
// a missing report, an empty round list, or a zero total score all
// trigger a transparent rebuild on fetch.
func IsStale(r *Report) bool {
	if r == nil {
		return true
	}
	if len(r.Rounds) == 0 {
		return true
	}
	return r.Summary.TotalScore == 0
}
