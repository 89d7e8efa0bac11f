package model

import "strings"

// EntityType is the coarse category assigned to a third-party entity.
type EntityType string

// Entity categories written to the "Type" column of the destination sheet.
const (
	// TypeAds marks entities whose display name indicates an advertising
	// product (e.g. "Google/Doubleclick Ads").
	TypeAds EntityType = "Ads"

	// TypeAnalytics marks entities whose display name indicates an
	// analytics product (e.g. "Google Analytics").
	TypeAnalytics EntityType = "Analytics"

	// TypeOther is the fallback category for everything else.
	TypeOther EntityType = "other"
)

// EntitySample is the raw per-entity measurement produced by the audit
// engine. Times are in milliseconds, transfer size in bytes; all values
// are non-negative.
type EntitySample struct {
	// Entity is the display name of the third-party entity, either a
	// well-known product name or the registrable domain of its requests.
	Entity string `json:"entity"`

	// BlockingTime is the estimated time in milliseconds the entity's
	// scripts blocked the main thread (long task time beyond 50ms each).
	BlockingTime float64 `json:"blockingTime"`

	// MainThreadTime is the total main-thread time in milliseconds
	// attributed to the entity.
	MainThreadTime float64 `json:"mainThreadTime"`

	// TransferSize is the total encoded bytes transferred for the
	// entity's requests.
	TransferSize float64 `json:"transferSize"`
}

// ThirdPartyEntry is one shaped audit result: a classified entity with its
// measurements converted to the units the destination sheet expects.
type ThirdPartyEntry struct {
	// EntityName is the display name copied verbatim from the sample.
	EntityName string `json:"entityName"`

	// Type is the category assigned by Classify.
	Type EntityType `json:"type"`

	// BlockingTimeMs is the blocking time truncated to whole milliseconds.
	BlockingTimeMs int `json:"blockingTimeMs"`

	// MainThreadTimeMs is the main-thread time truncated to whole milliseconds.
	MainThreadTimeMs int `json:"mainThreadTimeMs"`

	// TransferSizeKb is the transfer size in kilobytes. Unlike the time
	// columns this is NOT truncated; the sheet stores the full float.
	TransferSizeKb float64 `json:"transferSizeKb"`
}

// Classify assigns a category based on the entity's display name.
// Matching is case-insensitive: " ads" (with the leading space) wins over
// "analytics" when both occur.
//
// Compatibility note: a substring match anchored at position 0 is NOT
// recognized, so a name that is exactly "ads" or "analytics" classifies as
// "other". Sheets produced by earlier versions of this tool depend on this
// matching, so it must not change without migrating the recorded data.
func Classify(entityName string) EntityType {
	name := strings.ToLower(entityName)
	if strings.Index(name, " ads") > 0 {
		return TypeAds
	}
	if strings.Index(name, "analytics") > 0 {
		return TypeAnalytics
	}
	return TypeOther
}

// NewThirdPartyEntry shapes a raw sample into a sheet-ready entry.
// Times are truncated (not rounded) to integer milliseconds; the transfer
// size is converted from bytes to kilobytes and kept as a float.
func NewThirdPartyEntry(sample EntitySample) ThirdPartyEntry {
	return ThirdPartyEntry{
		EntityName:       sample.Entity,
		Type:             Classify(sample.Entity),
		BlockingTimeMs:   int(sample.BlockingTime),
		MainThreadTimeMs: int(sample.MainThreadTime),
		TransferSizeKb:   sample.TransferSize / 1024,
	}
}

// Row serializes the entry in the exact column order of the destination
// range: source URL, entity name, type, blocking ms, main-thread ms,
// transfer KB. Rows are written positionally, so this order must match the
// template sheet's header layout.
func (e ThirdPartyEntry) Row(sourceURL string) []any {
	return []any{
		sourceURL,
		e.EntityName,
		string(e.Type),
		e.BlockingTimeMs,
		e.MainThreadTimeMs,
		e.TransferSizeKb,
	}
}
