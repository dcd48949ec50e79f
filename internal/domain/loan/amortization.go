package loan

import "math"

type Money = float64

// CalculateEMI returns the fixed monthly instalment that repays principal over
// tenureMonths at annualRatePercent. A zero rate splits the principal evenly
// and is not rounded; otherwise the annuity result is rounded to cents.
func CalculateEMI(principal Money, annualRatePercent float64, tenureMonths int) Money {
	if tenureMonths < 1 {
		return 0
	}
	n := float64(tenureMonths)
	i := annualRatePercent / 12 / 100
	if i == 0 {
		return principal / n
	}

	growth := math.Pow(1+i, n)
	emi := principal * i * growth / (growth - 1)
	return roundTo(emi, 2)
}

func roundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}
