package fields

import (
	"math"
	"time"

	"github.com/steve-o/gomi/internal/binengine"
)

// Exponent is the base-10 exponent a numeric field's mantissa is scaled
// by, per spec.md §6: 10^-6 for percentages, 10^0 for volume/count.
type Exponent int8

const (
	ExponentUnit    Exponent = 0
	ExponentMicro   Exponent = -6
)

// Entry is one encoded field: an FID, an integer mantissa, and the
// exponent that mantissa is scaled by.
type Entry struct {
	FID      int32
	Mantissa int64
	Exponent Exponent
}

// TimeOfDay is the RWF TIME wire representation: hour, minute, second,
// millisecond, extracted from a UTC instant.
type TimeOfDay struct {
	Hour, Minute, Second, Millisecond int
}

// Date is the RWF DATE wire representation: year, month (1-12), day.
type Date struct {
	Year  int
	Month int
	Day   int
}

func timeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

func dateFrom(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

const microScale = 1_000_000

func mantissaOfMicro(x float64) int64 {
	return int64(math.Floor(x*microScale + 0.5))
}

// Encoded is the fully-encoded response for one BinResult: the two
// date/time fields plus the numeric field list.
type Encoded struct {
	TimeOfUpdate TimeOfDay
	ActiveDate   Date
	Entries      []Entry
}

// Encode converts a BinResult into the wire field list of spec.md §6.
// ids provides the numeric FIDs for a single bin's field set (either the
// archive set or a per-bin realtime set).
func Encode(res binengine.BinResult, ids ArchiveFIDs) Encoded {
	enc := Encoded{
		TimeOfUpdate: timeOfDayFrom(res.CloseTime),
		ActiveDate:   dateFrom(res.CloseTime),
	}

	enc.Entries = []Entry{
		{FID: ids.TenDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange10Day), Exponent: ExponentMicro},
		{FID: ids.FifteenDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange15Day), Exponent: ExponentMicro},
		{FID: ids.TwentyDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange20Day), Exponent: ExponentMicro},
		{FID: ids.TenTradingDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange10TradingDay), Exponent: ExponentMicro},
		{FID: ids.FifteenTradingDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange15TradingDay), Exponent: ExponentMicro},
		{FID: ids.TwentyTradingDayPercentChange, Mantissa: mantissaOfMicro(res.PctChange20TradingDay), Exponent: ExponentMicro},
		{FID: ids.AverageVolume, Mantissa: int64(res.AvgVolume), Exponent: ExponentUnit},
		{FID: ids.AverageNonZeroVolume, Mantissa: int64(res.AvgNonZeroVolume), Exponent: ExponentUnit},
		{FID: ids.TotalMoves, Mantissa: int64(res.TotalMoves), Exponent: ExponentUnit},
		{FID: ids.MaximumMoves, Mantissa: int64(res.MaxMoves), Exponent: ExponentUnit},
		{FID: ids.MinimumMoves, Mantissa: int64(res.MinMoves), Exponent: ExponentUnit},
		{FID: ids.SmallestMoves, Mantissa: int64(res.SmallestMoves), Exponent: ExponentUnit},
	}

	return enc
}
