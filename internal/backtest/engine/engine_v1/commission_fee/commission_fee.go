package commission_fee

type CommissionFee interface {
	// Calculate returns the commission charged for a trade of the given stake, in account currency
	Calculate(stake float64) float64
}

type Model string

const (
	ModelZero       Model = "zero"
	ModelPercentage Model = "percentage"
)

// GetCommissionFeeHandler returns the percentage model when pct is positive and the
// zero model otherwise.
func GetCommissionFeeHandler(pct float64) CommissionFee {
	if pct > 0 {
		return NewPercentageCommissionFee(pct)
	}

	return NewZeroCommissionFee()
}
