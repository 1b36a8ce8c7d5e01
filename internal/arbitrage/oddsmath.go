package arbitrage

// ImpliedProbability converts decimal odds to the bookmaker-implied probability
// Decimal 2.00 → 0.50
// Decimal 1.25 → 0.80
func ImpliedProbability(decimalOdds float64) float64 {
	return 1.0 / decimalOdds
}

// AllocateStakes splits total across decimal odds so every outcome returns the
// same payout. Each stake is total * (1/odds) / Σ(1/odds).
func AllocateStakes(decimalOdds []float64, total float64) []float64 {
	if len(decimalOdds) == 0 {
		return nil
	}

	inverseSum := 0.0
	for _, odds := range decimalOdds {
		inverseSum += ImpliedProbability(odds)
	}

	stakes := make([]float64, len(decimalOdds))
	for i, odds := range decimalOdds {
		stakes[i] = total * ImpliedProbability(odds) / inverseSum
	}
	return stakes
}
