// Package fields encodes a BinResult into the wire's typed field list.
// Field identifiers are configurable (spec.md §6); this package defines
// their names and the fixed-point encoding convention, and leaves the
// concrete numeric FIDs to configuration.
package fields

// Name is the canonical RWFFld name for one of the response fields of
// spec.md §6. Actual numeric FIDs are supplied by configuration per
// deployment dictionary.
type Name string

const (
	TimeOfUpdate Name = "TIMACT"
	ActiveDate   Name = "ACTIV_DATE"

	AverageVolume        Name = "VMA"
	AverageNonZeroVolume Name = "NZERO_VMA"
	TotalMoves           Name = "NUM_MOVES"
	MaximumMoves         Name = "NM_HIGH"
	MinimumMoves         Name = "NM_LOW"
	SmallestMoves        Name = "NM_SMALL"

	PctChange10Day Name = "PCTCHG_10D"
	PctChange15Day Name = "PCTCHG_15D"
	PctChange20Day Name = "PCTCHG_20D"

	PctChange10TradingDay Name = "PCTCHG_10T"
	PctChange15TradingDay Name = "PCTCHG_15T"
	PctChange20TradingDay Name = "PCTCHG_20T"
)

// IDMap associates each field Name with a numeric FID from the deployed
// RWFFld dictionary. Populated from configuration, per spec.md §6.
type IDMap map[Name]int32

// ArchiveFIDs is the FID subset published as "archive" fields — present on
// every bin's response regardless of which bin was requested. Grounded on
// original_source/src/gomi.cc's config_.archive_fids.
type ArchiveFIDs struct {
	TenDayPercentChange          int32
	FifteenDayPercentChange      int32
	TwentyDayPercentChange       int32
	TenTradingDayPercentChange   int32
	FifteenTradingDayPercentChange int32
	TwentyTradingDayPercentChange  int32
	AverageVolume                  int32
	AverageNonZeroVolume           int32
	TotalMoves                     int32
	MaximumMoves                   int32
	MinimumMoves                   int32
	SmallestMoves                  int32
}

// RealtimeFIDs is a per-bin-name FID subset, keyed by bin name, for bins
// published with distinct field sets per the original's
// config_.realtime_fids.find(bin.bin_name) lookup.
type RealtimeFIDs map[string]ArchiveFIDs
