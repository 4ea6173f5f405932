package binengine

import "time"

// BinResult is the fixed field set produced by one bin analytics
// computation. Lifetime is bounded to the serving of one request.
type BinResult struct {
	CloseTime time.Time // UTC

	TradingDayCount int
	TotalMoves      uint64
	MaxMoves        uint64
	MinMoves        uint64
	SmallestMoves   uint64

	AvgVolume         uint64
	AvgNonZeroVolume  uint64

	PctChange10Day float64
	PctChange15Day float64
	PctChange20Day float64

	PctChange10TradingDay float64
	PctChange15TradingDay float64
	PctChange20TradingDay float64

	IsNull bool
}
