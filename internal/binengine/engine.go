package binengine

import (
	"context"
	"time"

	"github.com/steve-o/gomi/internal/calendar"
	"github.com/steve-o/gomi/internal/tickstore"
)

// Engine computes BinResult values against a tick-store adapter and a
// business-day calendar. spec.md §4.4.
type Engine struct {
	adapter tickstore.Adapter
	cal     *calendar.Calendar
}

// New returns an Engine backed by adapter, walking business days with cal.
func New(adapter tickstore.Adapter, cal *calendar.Calendar) *Engine {
	return &Engine{adapter: adapter, cal: cal}
}

// dayAccum holds the per-day accumulators of spec.md §4.4.
type dayAccum struct {
	openPrice  float64
	closePrice float64
	numMoves   uint64
	volume     uint64
	hasTrade   bool
}

// dailyPct is one day's percentage change, for the windowed averages of
// spec.md §4.4.
type dailyPct struct {
	pc       float64
	hasTrade bool
}

// atTimeOfDay returns d's calendar date combined with tod (a duration
// since local midnight) interpreted in loc.
func atTimeOfDay(d time.Time, tod time.Duration, loc *time.Location) time.Time {
	y, m, day := d.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, loc)
	return midnight.Add(tod)
}

// Compute runs the bin analytic engine for one symbol against decl,
// anchoring "today" at now (converted into decl.Timezone).
func (e *Engine) Compute(ctx context.Context, handle tickstore.SymbolHandle, decl BinDecl, now time.Time) (BinResult, error) {
	if decl.DayCount == 0 {
		return BinResult{IsNull: true}, nil
	}

	nowInTZ := now.In(decl.Timezone)
	today := e.cal.NearestBusinessDay(nowInTZ)
	d0 := e.cal.Shift(today, -decl.DayOffset)

	closeTime := atTimeOfDay(d0, decl.EndTime, decl.Timezone).UTC()

	res := BinResult{CloseTime: closeTime}

	pcts := make([]dailyPct, decl.DayCount)

	tradingDayCount := 0
	var totalMoves, accumulatedVolume uint64
	var maxMoves, minMoves, smallestMoves uint64
	haveMinMax := false

	dt := d0
	for t := 0; t < decl.DayCount; t++ {
		if t > 0 {
			dt = e.cal.Shift(dt, -1)
		}

		from := atTimeOfDay(dt, decl.StartTime, decl.Timezone).UTC().Unix()
		to := atTimeOfDay(dt, decl.EndTime, decl.Timezone).UTC().Unix()

		var acc dayAccum
		err := e.adapter.ForEachTrade(ctx, handle, from, to, func(trade tickstore.Trade) error {
			if !acc.hasTrade {
				acc.openPrice = trade.LastPrice
				acc.hasTrade = true
			}
			acc.closePrice = trade.LastPrice
			acc.numMoves++
			acc.volume += trade.TickVolume
			return nil
		})
		if err != nil {
			return BinResult{}, err
		}

		totalMoves += acc.numMoves
		accumulatedVolume += acc.volume

		if acc.numMoves > 0 {
			tradingDayCount++
		}

		if !haveMinMax {
			haveMinMax = true
			maxMoves, minMoves, smallestMoves = acc.numMoves, acc.numMoves, acc.numMoves
		} else {
			if acc.numMoves > 0 {
				// edge case: smallest-moves should not be zero if any
				// trade-day is available (spec.md §4.4).
				if smallestMoves == 0 {
					smallestMoves = acc.numMoves
				} else if acc.numMoves < smallestMoves {
					smallestMoves = acc.numMoves
				}
				if acc.numMoves > maxMoves {
					maxMoves = acc.numMoves
				}
			}
			if acc.numMoves < minMoves {
				minMoves = acc.numMoves
			}
		}

		var pc float64
		if acc.hasTrade && acc.openPrice > 0 {
			pc = 100 * (acc.closePrice - acc.openPrice) / acc.openPrice
		}
		pcts[t] = dailyPct{pc: pc, hasTrade: acc.hasTrade}
	}

	res.TradingDayCount = tradingDayCount
	res.TotalMoves = totalMoves
	res.MaxMoves = maxMoves
	res.MinMoves = minMoves
	res.SmallestMoves = smallestMoves

	if accumulatedVolume > 0 {
		res.AvgVolume = accumulatedVolume / uint64(decl.DayCount)
	}
	if tradingDayCount > 0 {
		res.AvgNonZeroVolume = accumulatedVolume / uint64(tradingDayCount)
	}

	res.PctChange10Day, res.PctChange10TradingDay = windowedPctChange(pcts, 10)
	res.PctChange15Day, res.PctChange15TradingDay = windowedPctChange(pcts, 15)
	res.PctChange20Day, res.PctChange20TradingDay = windowedPctChange(pcts, 20)

	return res, nil
}

func windowedPctChange(pcts []dailyPct, k int) (dayPct, tradingDayPct float64) {
	n := k
	if n > len(pcts) {
		n = len(pcts)
	}
	var sum float64
	tradingDays := 0
	for i := 0; i < n; i++ {
		sum += pcts[i].pc
		if pcts[i].hasTrade {
			tradingDays++
		}
	}
	if n == 0 {
		return 0, 0
	}
	dayPct = roundTo6dp(sum / float64(n))
	denom := tradingDays
	if denom < 1 {
		denom = 1
	}
	tradingDayPct = roundTo6dp(sum / float64(denom))
	return dayPct, tradingDayPct
}
