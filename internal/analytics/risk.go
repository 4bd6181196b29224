package analytics

import "math"

// Rolling volatility windows in observations.
const (
	ultraShortWindow = 5
	shortTermWindow  = 22
	longTermWindow   = 252
)

// tradingDaysPerYear scales a daily stddev to an annualized figure.
const tradingDaysPerYear = 252

// VolatilityAndMDD computes annualized volatility over the three
// rolling windows plus the maximum drawdown over the full history.
// Fewer than 2 observations yields all zeros.
func VolatilityAndMDD(closes []float64) (ultraShort, shortTerm, longTerm, mdd float64) {
	if len(closes) < 2 {
		return 0, 0, 0, 0
	}
	ultraShort = annualizedVol(tail(closes, ultraShortWindow))
	shortTerm = annualizedVol(tail(closes, shortTermWindow))
	longTerm = annualizedVol(tail(closes, longTermWindow))
	mdd = maxDrawdown(closes)
	return ultraShort, shortTerm, longTerm, mdd
}

// DrawdownFrom52WeekHigh is the percentage distance of the current
// price from the trailing ~52-week (252 session) high. Always <= 0.
func DrawdownFrom52WeekHigh(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	recent := tail(closes, longTermWindow)
	high := recent[0]
	for _, c := range recent[1:] {
		if c > high {
			high = c
		}
	}
	if high == 0 {
		return 0
	}
	current := closes[len(closes)-1]
	return (current - high) / high * 100
}

// SharpeRatio divides the excess of the realized 264-day return over
// the risk-free rate by the long-term volatility. Both inputs are in
// percentage units. Not a textbook Sharpe: the single realized return
// stands in for an annualized mean.
func SharpeRatio(days264Return, longTermVol, riskFreeRate float64) float64 {
	if longTermVol == 0 {
		return 0
	}
	return (days264Return - riskFreeRate) / longTermVol
}

// annualizedVol is the sample stddev of period-over-period fractional
// changes scaled by sqrt(252)*100. Windows with fewer than 2
// observations have no changes to measure and return 0.
func annualizedVol(window []float64) float64 {
	changes := pctChanges(window)
	if len(changes) < 2 {
		return 0
	}
	return stdDev(changes) * math.Sqrt(tradingDaysPerYear) * 100
}

// pctChanges computes (p[i]-p[i-1])/p[i-1], skipping zero bases.
func pctChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
	}
	return changes
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(xs []float64) float64 {
	n := float64(len(xs))
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / n
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / (n - 1))
}

// maxDrawdown tracks the running maximum and returns the most negative
// percentage drop below it. Never positive.
func maxDrawdown(closes []float64) float64 {
	runningMax := closes[0]
	var mdd float64
	for _, c := range closes {
		if c > runningMax {
			runningMax = c
		}
		if runningMax == 0 {
			continue
		}
		dd := (c - runningMax) / runningMax * 100
		if dd < mdd {
			mdd = dd
		}
	}
	return mdd
}

func tail(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
