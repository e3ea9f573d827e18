package logging

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// Keys shown first, in this order, on INFO and above.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldDecisionType,
	"watchlist_title",
	"matched_title",
	"listing_title",
	"score",
	"match_kind",
	"match_branch",
	"match_count",
	"watchlist_count",
	"listing_count",
	"method",
	"status",
	"error",
	FieldErrorHint,
	FieldImpact,
	"duration",
	"next_run",
	"reason",
}

// selectInfoFields returns formatted info-level fields and a count of hidden
// entries. limit=0 means no limit.
func selectInfoFields(attrs []kv, limit int) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	ordered := make([]kv, 0, len(attrs))
	used := make([]bool, len(attrs))
	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				used[idx] = true
				ordered = append(ordered, attr)
				break
			}
		}
	}
	for idx, attr := range attrs {
		if !used[idx] {
			ordered = append(ordered, attr)
		}
	}

	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0
	for _, attr := range ordered {
		if attr.key == "" {
			continue
		}
		if isDebugOnlyKey(attr.key) {
			hidden++
			continue
		}
		val := formatValueForKey(attr.key, attr.value)
		if shouldHideInfoValue(attr.key, val) || (limit > 0 && len(result) >= limit) {
			hidden++
			continue
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: val})
	}
	return result, hidden
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case isScoreKey(key) && v.Kind() == slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" {
		value = truncateErrorValue(value)
	}
	return value
}

func isScoreKey(key string) bool {
	return key == "score" || key == "threshold" || strings.HasSuffix(key, "_score")
}

func formatDurationHuman(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldCorrelationID, FieldRunID, FieldSource, "user_agent", "normalized_a", "normalized_b", "cache_key":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir") || strings.HasSuffix(key, "_html")
}

func shouldHideInfoValue(key, value string) bool {
	switch key {
	case "error", "url":
		return false
	}
	return len(value) > 120
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldDecisionType:
		return "Decision"
	case FieldErrorHint:
		return "Hint"
	case "watchlist_title":
		return "Wanted"
	case "listing_title":
		return "Showing"
	case "matched_title":
		return "Via"
	case "match_kind":
		return "Kind"
	case "match_branch":
		return "Branch"
	case "match_count":
		return "Matches"
	case "watchlist_count":
		return "Watchlist"
	case "listing_count":
		return "Listings"
	case "url":
		return "URL"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
