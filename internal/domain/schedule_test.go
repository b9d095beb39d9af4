package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGenerateSchedule_FlatInterest(t *testing.T) {
	// principal 1200 at 2%/month over 6 months:
	// interest 144, total 1344, EMI 224.00
	from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	emi, rows := GenerateSchedule(decimal.NewFromInt(1200), decimal.NewFromInt(2), 6, from)

	if !emi.Equal(decimal.RequireFromString("224")) {
		t.Fatalf("emi = %s, want 224", emi)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d installments, want 6", len(rows))
	}

	sum := decimal.Zero
	for k, row := range rows {
		if !row.EmiAmount.Equal(emi) {
			t.Errorf("installment %d amount = %s, want %s", k+1, row.EmiAmount, emi)
		}
		if row.Status != InstallmentStatusUnpaid {
			t.Errorf("installment %d status = %s, want unpaid", k+1, row.Status)
		}
		wantDue := from.AddDate(0, k+1, 0)
		if !row.DueDate.Equal(wantDue) {
			t.Errorf("installment %d due = %s, want %s", k+1, row.DueDate, wantDue)
		}
		sum = sum.Add(row.EmiAmount)
	}

	if !sum.Equal(decimal.RequireFromString("1344")) {
		t.Errorf("schedule sum = %s, want 1344", sum)
	}
}

func TestGenerateSchedule_RemainderOnFinalInstallment(t *testing.T) {
	// principal 1000 at 1%/month over 3 months: total 1030, EMI 343.33,
	// final installment carries the remainder (343.34).
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	emi, rows := GenerateSchedule(decimal.NewFromInt(1000), decimal.NewFromInt(1), 3, from)

	if !emi.Equal(decimal.RequireFromString("343.33")) {
		t.Fatalf("emi = %s, want 343.33", emi)
	}

	if !rows[2].EmiAmount.Equal(decimal.RequireFromString("343.34")) {
		t.Errorf("final installment = %s, want 343.34", rows[2].EmiAmount)
	}

	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(row.EmiAmount)
	}
	if !sum.Equal(decimal.RequireFromString("1030")) {
		t.Errorf("schedule sum = %s, want 1030", sum)
	}
}

func TestGenerateSchedule_SingleMonth(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, rows := GenerateSchedule(decimal.NewFromInt(500), decimal.NewFromInt(3), 1, from)

	if len(rows) != 1 {
		t.Fatalf("got %d installments, want 1", len(rows))
	}
	if !rows[0].EmiAmount.Equal(decimal.RequireFromString("515")) {
		t.Errorf("installment = %s, want 515", rows[0].EmiAmount)
	}
}

func TestFlatInterest(t *testing.T) {
	got := FlatInterest(decimal.NewFromInt(1200), decimal.NewFromInt(2), 6)
	if !got.Equal(decimal.RequireFromString("144")) {
		t.Errorf("FlatInterest = %s, want 144", got)
	}
}
