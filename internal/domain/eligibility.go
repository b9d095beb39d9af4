package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Eligibility rule constants.
const (
	MinBorrowerAge = 21
	MaxBorrowerAge = 60
)

// incomeMultipleCap limits the approved amount to five times the declared
// monthly income.
var incomeMultipleCap = decimal.NewFromInt(5)

// Eligibility rejection reasons. These are user-facing strings recorded on
// the request and included in notifications.
const (
	ReasonBorrowerNotFound = "Borrower not found"
	ReasonIncomeNotFound   = "Income information not found"
	ReasonCreditNotFound   = "Credit information not found"
	ReasonInvalidAge       = "Invalid age"
	ReasonUnemployed       = "Unemployed"
	ReasonScoreTooLow      = "Your credit score is too low (less than 20)"
	ReasonAmountTooHigh    = "Loan amount is too high"
)

// EligibilityInput carries everything the evaluator reads. Nil members are
// treated as missing data and fail the evaluation.
type EligibilityInput struct {
	Borrower *Borrower
	Income   *IncomeInformation
	Score    *CreditScore
	Amount   decimal.Decimal
	Now      time.Time
}

// EligibilityOutcome is the evaluator's decision.
type EligibilityOutcome struct {
	Eligible        bool
	Reason          string
	ApprovedAmount  decimal.Decimal
	ApprovedPercent int64
}

// EvaluateEligibility applies the eligibility rules in order; the first
// failing rule wins and no further rules run. It is a pure function of its
// input, so identical inputs always produce identical outcomes.
func EvaluateEligibility(in EligibilityInput) EligibilityOutcome {
	if in.Borrower == nil {
		return notEligible(ReasonBorrowerNotFound)
	}
	if in.Income == nil {
		return notEligible(ReasonIncomeNotFound)
	}
	if in.Score == nil {
		return notEligible(ReasonCreditNotFound)
	}

	age := wholeYears(in.Borrower.Dob, in.Now)
	if age < MinBorrowerAge || age > MaxBorrowerAge {
		return notEligible(ReasonInvalidAge)
	}

	if in.Income.EmployeeType == "Unemployed" {
		return notEligible(ReasonUnemployed)
	}

	percent := ApprovalPercent(in.Score.Score)
	if percent == 0 {
		return notEligible(ReasonScoreTooLow)
	}

	approved := in.Amount.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100))
	if approved.GreaterThan(in.Income.Income.Mul(incomeMultipleCap)) {
		return notEligible(ReasonAmountTooHigh)
	}

	return EligibilityOutcome{
		Eligible:        true,
		ApprovedAmount:  approved,
		ApprovedPercent: percent,
	}
}

// ApprovalPercent maps a credit score to the percentage of the requested
// amount that may be approved.
func ApprovalPercent(score int) int64 {
	switch {
	case score >= 50:
		return 100
	case score >= 40:
		return 75
	case score >= 30:
		return 50
	case score >= 20:
		return 25
	default:
		return 0
	}
}

func notEligible(reason string) EligibilityOutcome {
	return EligibilityOutcome{Reason: reason, ApprovedAmount: decimal.Zero}
}

// wholeYears counts completed years between dob and now.
func wholeYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
