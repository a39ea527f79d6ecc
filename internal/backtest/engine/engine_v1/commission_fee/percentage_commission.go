package commission_fee

// PercentageCommissionFee charges a fixed percentage of the stake.
type PercentageCommissionFee struct {
	pct float64
}

func NewPercentageCommissionFee(pct float64) CommissionFee {
	return &PercentageCommissionFee{pct: pct}
}

func (c *PercentageCommissionFee) Calculate(stake float64) float64 {
	if stake <= 0 {
		return 0
	}

	return stake * c.pct / 100
}
