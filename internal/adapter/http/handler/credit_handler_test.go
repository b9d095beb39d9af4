package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/online-loan-project/jorngka-backend/internal/adapter/http/dto"
	"github.com/online-loan-project/jorngka-backend/internal/domain"
	"github.com/online-loan-project/jorngka-backend/internal/usecase"
)

type creditServiceStub struct {
	getAccountFn func(ctx context.Context) (*domain.CreditAccount, error)
	adjustFn     func(ctx context.Context, input usecase.AdjustInput) (*domain.CreditTransaction, error)
	listFn       func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.CreditTransaction, error)
	getByCodeFn  func(ctx context.Context, code string) (*domain.CreditTransaction, error)
	netFn        func(ctx context.Context) (decimal.Decimal, error)
}

func (s *creditServiceStub) GetAccount(ctx context.Context) (*domain.CreditAccount, error) {
	return s.getAccountFn(ctx)
}

func (s *creditServiceStub) Adjust(ctx context.Context, input usecase.AdjustInput) (*domain.CreditTransaction, error) {
	return s.adjustFn(ctx, input)
}

func (s *creditServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.CreditTransaction, error) {
	return s.listFn(ctx, input)
}

func (s *creditServiceStub) GetTransactionByCode(ctx context.Context, code string) (*domain.CreditTransaction, error) {
	return s.getByCodeFn(ctx, code)
}

func (s *creditServiceStub) NetActivity(ctx context.Context) (decimal.Decimal, error) {
	return s.netFn(ctx)
}

func TestCreditHandler_GetAccount(t *testing.T) {
	handler := NewCreditHandler(&creditServiceStub{
		getAccountFn: func(ctx context.Context) (*domain.CreditAccount, error) {
			return &domain.CreditAccount{
				ID:       "credit-1",
				Balance:  decimal.RequireFromString("10000"),
				Currency: "USD",
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/credit", nil)
	rec := httptest.NewRecorder()

	handler.GetAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.CreditAccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "credit-1" || !resp.Balance.Equal(decimal.RequireFromString("10000")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreditHandler_Deposit_SetsKind(t *testing.T) {
	var captured usecase.AdjustInput
	handler := NewCreditHandler(&creditServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustInput) (*domain.CreditTransaction, error) {
			captured = input
			return &domain.CreditTransaction{ID: "txn-1", Kind: input.Kind}, nil
		},
	})

	body, _ := json.Marshal(dto.AdjustCreditRequest{
		UserID: "admin-1",
		Amount: decimal.RequireFromString("500"),
	})
	req := httptest.NewRequest(http.MethodPost, "/credit/deposit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Kind != domain.KindAdminDeposit {
		t.Fatalf("expected admin_deposit kind, got %s", captured.Kind)
	}
}

func TestCreditHandler_Withdraw_InsufficientBalance(t *testing.T) {
	handler := NewCreditHandler(&creditServiceStub{
		adjustFn: func(ctx context.Context, input usecase.AdjustInput) (*domain.CreditTransaction, error) {
			if input.Kind != domain.KindAdminWithdrawal {
				t.Fatalf("expected admin_withdrawal kind, got %s", input.Kind)
			}
			return nil, domain.ErrInsufficientBalance
		},
	})

	body, _ := json.Marshal(dto.AdjustCreditRequest{
		UserID: "admin-1",
		Amount: decimal.RequireFromString("600"),
	})
	req := httptest.NewRequest(http.MethodPost, "/credit/withdraw", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCreditHandler_ListTransactions(t *testing.T) {
	handler := NewCreditHandler(&creditServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.CreditTransaction, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*domain.CreditTransaction{{ID: "txn-1"}, {ID: "txn-2"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/credit/transactions?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	handler.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
}

func TestCreditHandler_GetTransaction_NotFound(t *testing.T) {
	handler := NewCreditHandler(&creditServiceStub{
		getByCodeFn: func(ctx context.Context, code string) (*domain.CreditTransaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/credit/transactions/DEP-20260115-00099", nil)
	req = setChiURLParam(req, "code", "DEP-20260115-00099")
	rec := httptest.NewRecorder()

	handler.GetTransaction(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreditHandler_NetActivity(t *testing.T) {
	handler := NewCreditHandler(&creditServiceStub{
		netFn: func(ctx context.Context) (decimal.Decimal, error) {
			return decimal.RequireFromString("350"), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/credit/net-activity", nil)
	rec := httptest.NewRecorder()

	handler.NetActivity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.NetActivityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.NetActivity.Equal(decimal.RequireFromString("350")) {
		t.Fatalf("expected net activity 350, got %s", resp.NetActivity)
	}
}
