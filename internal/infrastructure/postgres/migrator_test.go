package postgres

import (
	"os"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/domain"
)

var interestRateSeed = regexp.MustCompile(`INSERT INTO interest_rates[^;]*VALUES\s*\('[^']+',\s*([0-9.]+),`)

// The seeded default rate is a flat monthly rate in percent, the unit
// FlatInterest expects. A rate seeded as a fraction (0.02 instead of 2)
// would make every loan effectively interest-free.
func TestDefaultInterestRateSeedIsInPercent(t *testing.T) {
	sql, err := os.ReadFile("../../../migrations/000003_create_borrowers.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	m := interestRateSeed.FindSubmatch(sql)
	if m == nil {
		t.Fatalf("migration no longer seeds interest_rates")
	}

	rate, err := decimal.NewFromString(string(m[1]))
	if err != nil {
		t.Fatalf("parse seeded rate %q: %v", m[1], err)
	}

	principal := decimal.NewFromInt(1200)
	interest := domain.FlatInterest(principal, rate, 6)
	if interest.LessThan(decimal.NewFromInt(1)) {
		t.Fatalf("seeded rate %s yields interest %s on 1200 over 6 months; rate must be in percent", rate, interest)
	}

	// 2%/month on 1200 over 6 months is 144 interest, EMI 224.00.
	if rate.Equal(decimal.NewFromInt(2)) {
		if got := interest.String(); got != "144" {
			t.Fatalf("interest = %s, want 144", got)
		}
		if got := domain.EmiAmount(principal, rate, 6).String(); got != "224" {
			t.Fatalf("emi = %s, want 224", got)
		}
	}
}
