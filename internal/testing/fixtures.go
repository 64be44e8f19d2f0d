package testing

import (
	"time"

	"github.com/aristath/momentum/internal/domain"
)

// FixtureStartDate is the date of the first bar produced by the fixtures
var FixtureStartDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// GeometricSeries builds n daily bars starting at start and compounding by rate per bar.
// A positive rate gives RSI 100 with MACD above its signal; a negative rate gives RSI 0.
func GeometricSeries(start, rate float64, n int) domain.Series {
	series := make(domain.Series, n)
	price := start
	for i := range series {
		series[i] = domain.Bar{
			Date:   FixtureStartDate.AddDate(0, 0, i).Format("2006-01-02"),
			Open:   price,
			High:   price * 1.005,
			Low:    price * 0.995,
			Close:  price,
			Volume: 1_000_000,
		}
		price *= 1 + rate
	}
	return series
}

// TrendingBundle builds a bundle where every ticker in up trends upward and every ticker in down trends downward
func TrendingBundle(bars int, up []string, down []string) domain.MarketData {
	data := make(domain.MarketData, len(up)+len(down))
	for i, ticker := range up {
		data[ticker] = GeometricSeries(100+float64(i)*10, 0.01, bars)
	}
	for i, ticker := range down {
		data[ticker] = GeometricSeries(100+float64(i)*10, -0.01, bars)
	}
	return data
}

// TwoPhaseSeries compounds by rate for the first switchAt bars and by after for the rest
func TwoPhaseSeries(start, rate float64, switchAt int, after float64, n int) domain.Series {
	series := GeometricSeries(start, rate, n)
	for i := switchAt + 1; i < n; i++ {
		price := series[i-1].Close * (1 + after)
		series[i].Open = price
		series[i].High = price * 1.005
		series[i].Low = price * 0.995
		series[i].Close = price
	}
	return series
}
