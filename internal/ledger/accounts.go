package ledger

import (
	"context"
	"strconv"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
)

// ListAccounts retrieves all chart of accounts entries ordered by code.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	if err := s.guard.Require(ctx, rbac.PermAccountView); err != nil {
		return nil, err
	}
	return s.repo.ListAccounts(ctx)
}

// CreateAccount adds an account to the chart. Codes are unique; a duplicate
// code is rejected by the store's constraint.
func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (Account, error) {
	if err := s.guard.Require(ctx, rbac.PermAccountEdit); err != nil {
		return Account{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return Account{}, err
	}
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	var account Account
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var txErr error
		account, txErr = tx.InsertAccount(ctx, in)
		return txErr
	})
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		userID := principal.UserID
		_ = s.audit.Record(ctx, audit.Entry{
			At:       s.now(),
			Action:   "account.create",
			Entity:   "account",
			EntityID: strconv.FormatInt(account.ID, 10),
			UserID:   &userID,
			NewState: map[string]any{"code": account.Code, "type": string(account.Type)},
		})
	}
	return account, nil
}
