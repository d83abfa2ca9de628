package schema

import (
	"fmt"
	"strconv"

	"github.com/michaelayoade/ontbridge/pkg/tree"
)

// ResolveFirst extracts the first candidate path that yields a non-nil value
// from the document. If no candidate resolves the result is nil; an
// unresolvable label is not an error.
func ResolveFirst(doc tree.Document, candidates []string) interface{} {
	for _, path := range candidates {
		if v := tree.Extract(doc, path); v != nil {
			return v
		}
	}
	return nil
}

// ResolveGroup resolves every label in a group, in declared order.
func ResolveGroup(doc tree.Document, g Group) map[string]interface{} {
	out := make(map[string]interface{}, len(g.Labels))
	for _, l := range g.Labels {
		out[l.Name] = ResolveFirst(doc, l.Candidates)
	}
	return out
}

// Humanize post-processes a resolved system group in place: the raw uptime
// seconds become "{d}d {h}h {m}m" and the total/free memory pair becomes a
// percentage-used display string. Both conversions are skipped silently when
// the source value does not parse as an integer.
func Humanize(values map[string]interface{}) {
	if secs, ok := asInt(values["Uptime"]); ok {
		values["Uptime"] = FormatUptime(secs)
	}
	total, okT := asInt(values["Memory Total"])
	free, okF := asInt(values["Memory Free"])
	if okT && okF && total > 0 {
		values["Memory Usage"] = FormatMemory(total, free)
	}
}

// FormatUptime renders a seconds count as "{days}d {hours}h {minutes}m".
func FormatUptime(seconds int64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}

// FormatMemory renders paired total/free KB values as a used percentage.
func FormatMemory(total, free int64) string {
	used := float64(total-free) / float64(total) * 100
	return fmt.Sprintf("%.1f%% (%d / %d KB)", used, free, total)
}

// asInt coerces the loosely typed values an ACS reports (JSON numbers decode
// as float64, many devices report numerics as strings).
func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}
