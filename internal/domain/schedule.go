package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// FlatInterest computes the total interest for a principal at a flat monthly
// rate in percent over the given number of months. Interest accrues on the
// full original principal, not on a declining balance.
func FlatInterest(principal, monthlyRatePercent decimal.Decimal, months int) decimal.Decimal {
	return principal.Mul(monthlyRatePercent).Div(oneHundred).Mul(decimal.NewFromInt(int64(months)))
}

// EmiAmount is the equal monthly installment for a principal, flat monthly
// rate in percent and duration, rounded to 2 decimal places.
func EmiAmount(principal, monthlyRatePercent decimal.Decimal, months int) decimal.Decimal {
	total := principal.Add(FlatInterest(principal, monthlyRatePercent, months))
	return total.Div(decimal.NewFromInt(int64(months))).Round(2)
}

// GenerateSchedule produces the repayment schedule for a loan: exactly months
// installments due at from+1..from+months months, each unpaid. The rounding
// remainder of the EMI division is absorbed into the final installment so the
// schedule sums exactly to principal plus interest.
func GenerateSchedule(principal, monthlyRatePercent decimal.Decimal, months int, from time.Time) (decimal.Decimal, []RepaymentInstallment) {
	emi := EmiAmount(principal, monthlyRatePercent, months)
	total := principal.Add(FlatInterest(principal, monthlyRatePercent, months))

	installments := make([]RepaymentInstallment, 0, months)
	for k := 1; k <= months; k++ {
		amount := emi
		if k == months {
			amount = total.Sub(emi.Mul(decimal.NewFromInt(int64(months - 1))))
		}
		installments = append(installments, RepaymentInstallment{
			DueDate:   from.AddDate(0, k, 0),
			EmiAmount: amount,
			Status:    InstallmentStatusUnpaid,
		})
	}

	return emi, installments
}
