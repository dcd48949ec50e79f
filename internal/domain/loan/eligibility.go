package loan

import "strings"

const (
	ReasonLowCreditScore     = "credit score below minimum threshold"
	ReasonLowIncome          = "income below minimum requirement"
	ReasonHighDebtToIncome   = "loan amount too high relative to income"
	ReasonBelowThreshold     = "score below approval threshold"
	reasonSeparator          = "; "
	defaultApprovalThreshold = 0.5
)

// Range is a closed interval used for min-max normalization.
type Range struct {
	Min float64
	Max float64
}

func (r Range) normalize(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}

// Policy holds every tunable of the eligibility scorer.
type Policy struct {
	IncomeRange      Range
	CreditScoreRange Range
	AmountRange      Range

	CreditWeight float64
	IncomeWeight float64
	AmountWeight float64

	ApprovalThreshold float64

	MinCreditScore  int
	MinAnnualIncome Money
	MaxDebtToIncome float64

	BaseRate   float64
	RateSpread float64
}

func DefaultPolicy() Policy {
	return Policy{
		IncomeRange:       Range{Min: 0, Max: 10_000_000},
		CreditScoreRange:  Range{Min: 300, Max: 850},
		AmountRange:       Range{Min: 1_000, Max: 10_000_000},
		CreditWeight:      0.6,
		IncomeWeight:      0.4,
		AmountWeight:      -0.2,
		ApprovalThreshold: defaultApprovalThreshold,
		MinCreditScore:    550,
		MinAnnualIncome:   200_000,
		MaxDebtToIncome:   0.5,
		BaseRate:          12,
		RateSpread:        5,
	}
}

// WithApprovalThreshold returns a copy of p using threshold. Values outside
// (0,1] keep the current threshold.
func (p Policy) WithApprovalThreshold(threshold float64) Policy {
	if threshold > 0 && threshold <= 1 {
		p.ApprovalThreshold = threshold
	}
	return p
}

type Evaluation struct {
	Score           float64
	Status          ApplicationStatus
	InterestRate    *float64
	RejectionReason *string
}

func (e Evaluation) Approved() bool {
	return e.Status == StatusApproved
}

// Score computes the weighted eligibility score in [0,1] and the decision
// derived from it. Approved applications are priced; rejected ones carry the
// ordered list of rule failures.
func (p Policy) Score(creditScore int, annualIncome, amountRequested Money) Evaluation {
	creditNorm := p.CreditScoreRange.normalize(float64(creditScore))
	incomeNorm := p.IncomeRange.normalize(annualIncome)
	amountNorm := p.AmountRange.normalize(amountRequested)

	raw := p.CreditWeight*creditNorm + p.IncomeWeight*incomeNorm + p.AmountWeight*amountNorm
	score := clamp(raw, 0, 1)

	if score >= p.ApprovalThreshold {
		rate := p.BaseRate - score*p.RateSpread
		return Evaluation{Score: score, Status: StatusApproved, InterestRate: &rate}
	}

	reason := p.rejectionReason(creditScore, annualIncome, amountRequested)
	return Evaluation{Score: score, Status: StatusRejected, RejectionReason: &reason}
}

func (p Policy) rejectionReason(creditScore int, annualIncome, amountRequested Money) string {
	var reasons []string
	if creditScore < p.MinCreditScore {
		reasons = append(reasons, ReasonLowCreditScore)
	}
	if annualIncome < p.MinAnnualIncome {
		reasons = append(reasons, ReasonLowIncome)
	}
	// A non-positive income makes any request unaffordable.
	if annualIncome <= 0 || amountRequested/annualIncome > p.MaxDebtToIncome {
		reasons = append(reasons, ReasonHighDebtToIncome)
	}
	if len(reasons) == 0 {
		return ReasonBelowThreshold
	}
	return strings.Join(reasons, reasonSeparator)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
