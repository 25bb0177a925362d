package health

import "canoncache/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// minPutsForEvictionRule keeps a handful of early evictions from tripping the rule.
const minPutsForEvictionRule = 10

// ---------- RULES ----------

// Entries from the future mean the wall clock stepped backward.
func ClockRegressionRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.CacheClockRegressionsTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Wall clock regression observed on cached entries",
			Recommendation: "Check time synchronization on the host",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Capacity evictions on at least half the inserts mean the cache is too small
// for the working set.
func EvictionPressureRule(snapshot map[string]int64) RuleResult {
	puts := snapshot[string(metrics.CachePutsTotal)]
	evicted := snapshot[string(metrics.CacheEvictedTotal)]

	if puts >= minPutsForEvictionRule && evicted*2 >= puts {
		return RuleResult{
			Triggered:      true,
			Signal:         "Capacity evictions dominate cache inserts",
			Recommendation: "Increase cache.max_entries",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// Resolver failures are returned to callers but usually point at permissions
// or symlink loops.
func ResolveErrorRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.CanonErrorsTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Path resolution failures detected",
			Recommendation: "Inspect logs for permission errors or symlink loops",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
