package rail

import "railguard/pkg/domain"

// Schedule computes rail fees. Rates come from configuration; the ledger
// never hard-codes them.
type Schedule struct {
	FeeBps         domain.BasisPoints
	MinFee         domain.Amount
	StakerShareBps domain.BasisPoints
}

// Fee returns the proportional fee for the requested amount, floored at the
// flat minimum.
func (s Schedule) Fee(amount domain.Amount) domain.Amount {
	fee := domain.ApplyBps(amount, s.FeeBps)
	if fee < s.MinFee {
		return s.MinFee
	}
	return fee
}

// Split divides a fee into the staker's share and the protocol remainder.
// Truncation favors the protocol side so the two parts always sum to fee.
func (s Schedule) Split(fee domain.Amount) (staker, protocol domain.Amount) {
	staker = domain.ApplyBps(fee, s.StakerShareBps)
	return staker, fee - staker
}
