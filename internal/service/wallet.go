// Package service holds the wallet and onboarding orchestrators. They validate input,
// authenticate the actor and run every balance mutation together with its ledger entry
// as one unit of work.
package service

import (
	"context"
	"strings"
	"time"

	"demo_wallet/internal/cache"
	"demo_wallet/internal/domain"
	"demo_wallet/internal/metrics"
	"demo_wallet/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Verifier checks a supplied secret against a stored hash.
type Verifier interface {
	Verify(storedHash, secret string) bool
}

// WalletResult is returned by every committed money movement.
type WalletResult struct {
	TransactionID uint            `json:"transactionId"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// History is one page of ledger entries.
type History struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	Total        int64                `json:"total"`
	TotalPages   int                  `json:"total_pages"`
}

// WalletService orchestrates fund, withdraw and transfer.
type WalletService struct {
	store     *store.Store
	verifier  Verifier
	cache     cache.WalletCache
	metrics   metrics.Recorder
	log       logrus.FieldLogger
	txTimeout time.Duration
}

// WalletOption customizes a WalletService.
type WalletOption func(*WalletService)

// WithWalletCache sets the read cache. Defaults to cache.Nop.
func WithWalletCache(c cache.WalletCache) WalletOption {
	return func(s *WalletService) { s.cache = c }
}

// WithMetrics sets the metrics recorder. Defaults to metrics.Nop.
func WithMetrics(m metrics.Recorder) WalletOption {
	return func(s *WalletService) { s.metrics = m }
}

// NewWalletService wires the orchestrator. txTimeout bounds each unit of work.
func NewWalletService(st *store.Store, verifier Verifier, log logrus.FieldLogger, txTimeout time.Duration, opts ...WalletOption) *WalletService {
	s := &WalletService{
		store:     st,
		verifier:  verifier,
		cache:     cache.Nop{},
		metrics:   metrics.Nop{},
		log:       log,
		txTimeout: txTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fund credits the actor's own wallet.
func (s *WalletService) Fund(ctx context.Context, userID string, amount decimal.Decimal, password string) (res *WalletResult, err error) {
	defer s.observe("fund", amount, time.Now(), &err)
	if err := checkOperation(userID, amount, password); err != nil {
		return nil, err
	}
	_, wallet, err := s.authenticate(ctx, userID, password)
	if err != nil {
		return nil, err
	}

	res = &WalletResult{}
	err = s.store.Transaction(ctx, s.txTimeout, func(tx *store.Store) error {
		balance, err := tx.Wallets.Increment(ctx, wallet.ID, amount)
		if err != nil {
			return err
		}
		id, err := tx.Ledger.Record(ctx, "", wallet.ID, amount, domain.TxFund)
		if err != nil {
			return err
		}
		res.NewBalance, res.TransactionID = balance, id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, wallet.ID)

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"wallet_id":      wallet.ID,
		"amount":         amount.StringFixed(domain.AmountScale),
		"transaction_id": res.TransactionID,
		"type":           domain.TxFund,
	}).Info("Fund transaction")
	return res, nil
}

// Withdraw debits the actor's own wallet.
func (s *WalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, password string) (res *WalletResult, err error) {
	defer s.observe("withdraw", amount, time.Now(), &err)
	if err := checkOperation(userID, amount, password); err != nil {
		return nil, err
	}
	_, wallet, err := s.authenticate(ctx, userID, password)
	if err != nil {
		return nil, err
	}
	if !wallet.CanCover(amount) {
		return nil, domain.ErrInsufficientFunds
	}

	res = &WalletResult{}
	err = s.store.Transaction(ctx, s.txTimeout, func(tx *store.Store) error {
		balance, err := tx.Wallets.Decrement(ctx, wallet.ID, amount)
		if err != nil {
			return err
		}
		id, err := tx.Ledger.Record(ctx, wallet.ID, "", amount, domain.TxWithdraw)
		if err != nil {
			return err
		}
		res.NewBalance, res.TransactionID = balance, id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, wallet.ID)

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"wallet_id":      wallet.ID,
		"amount":         amount.StringFixed(domain.AmountScale),
		"transaction_id": res.TransactionID,
		"type":           domain.TxWithdraw,
	}).Info("Withdraw transaction")
	return res, nil
}

// Transfer moves amount from the actor's wallet to recipientWalletID. The debit, the
// credit and the ledger entry commit together or not at all.
func (s *WalletService) Transfer(ctx context.Context, userID, recipientWalletID string, amount decimal.Decimal, password string) (res *WalletResult, err error) {
	defer s.observe("transfer", amount, time.Now(), &err)
	problems := operationProblems(userID, amount, password)
	if !validID(recipientWalletID) {
		problems = append(problems, "valid recipient wallet ID is required")
	}
	if len(problems) > 0 {
		return nil, domain.Validation("invalid transfer request", problems...)
	}

	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sender, err := s.store.Wallets.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.store.Wallets.GetByID(ctx, recipientWalletID)
	if domain.IsKind(err, domain.KindNotFound) {
		return nil, domain.NotFound("recipient wallet")
	} else if err != nil {
		return nil, err
	}
	if sender.ID == recipient.ID {
		return nil, domain.ErrSelfTransfer
	}
	if !s.verifier.Verify(user.Password, password) {
		return nil, domain.ErrInvalidPassword
	}
	if !sender.CanCover(amount) {
		return nil, domain.ErrInsufficientFunds
	}

	res = &WalletResult{}
	err = s.store.Transaction(ctx, s.txTimeout, func(tx *store.Store) error {
		if _, err := tx.Wallets.Lock(ctx, sender.ID, recipient.ID); err != nil {
			return err
		}
		balance, err := tx.Wallets.Decrement(ctx, sender.ID, amount)
		if err != nil {
			return err
		}
		if _, err := tx.Wallets.Increment(ctx, recipient.ID, amount); err != nil {
			return err
		}
		id, err := tx.Ledger.Record(ctx, sender.ID, recipient.ID, amount, domain.TxTransfer)
		if err != nil {
			return err
		}
		res.NewBalance, res.TransactionID = balance, id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, sender.ID, recipient.ID)

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"from_wallet_id": sender.ID,
		"to_wallet_id":   recipient.ID,
		"amount":         amount.StringFixed(domain.AmountScale),
		"transaction_id": res.TransactionID,
		"type":           domain.TxTransfer,
	}).Info("Transfer transaction")
	return res, nil
}

// GetWallet returns a wallet snapshot, from the cache when present. A non-empty ownerID
// restricts the read to that user's wallet; anyone else's is reported as not found.
func (s *WalletService) GetWallet(ctx context.Context, walletID, ownerID string) (*domain.Wallet, error) {
	if !validID(walletID) {
		return nil, domain.Validation("invalid wallet id", "valid wallet ID is required")
	}
	wallet, ok := s.cache.Get(ctx, walletID)
	if !ok {
		var err error
		if wallet, err = s.store.Wallets.GetByID(ctx, walletID); err != nil {
			return nil, err
		}
		s.cache.Set(ctx, wallet)
	}
	if ownerID != "" && wallet.UserID != ownerID {
		return nil, domain.NotFound("wallet")
	}
	return wallet, nil
}

// History returns one page of the wallet's ledger, newest first. ownerID scopes the read
// as in GetWallet.
func (s *WalletService) History(ctx context.Context, walletID, ownerID string, page, pageSize int) (*History, error) {
	if _, err := s.GetWallet(ctx, walletID, ownerID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > store.MaxPageSize {
		pageSize = store.DefaultPageSize
	}
	txs, total, err := s.store.Ledger.ListByWallet(ctx, walletID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &History{
		Transactions: txs,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// authenticate resolves the actor and their wallet, then checks the password.
func (s *WalletService) authenticate(ctx context.Context, userID, password string) (*domain.User, *domain.Wallet, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	wallet, err := s.store.Wallets.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if !s.verifier.Verify(user.Password, password) {
		return nil, nil, domain.ErrInvalidPassword
	}
	return user, wallet, nil
}

func (s *WalletService) observe(op string, amount decimal.Decimal, start time.Time, errp *error) {
	outcome := metrics.OutcomeCommitted
	if err := *errp; err != nil {
		kind := domain.KindOf(err)
		outcome = kind.String()
		entry := s.log.WithFields(logrus.Fields{"op": op, "kind": outcome})
		if kind.Operational() {
			entry.WithError(err).Info("Wallet operation rejected")
		} else {
			entry.WithError(err).Error("Wallet operation failed")
		}
	}
	s.metrics.Observe(op, outcome, amount, time.Since(start))
}

func operationProblems(userID string, amount decimal.Decimal, password string) []string {
	var problems []string
	if !validID(userID) {
		problems = append(problems, "valid user ID is required")
	}
	if msg := domain.CheckAmount(amount); msg != "" {
		problems = append(problems, msg)
	}
	if strings.TrimSpace(password) == "" {
		problems = append(problems, "password is required")
	}
	return problems
}

func checkOperation(userID string, amount decimal.Decimal, password string) error {
	if problems := operationProblems(userID, amount, password); len(problems) > 0 {
		return domain.Validation("invalid wallet operation", problems...)
	}
	return nil
}

// validID accepts only the canonical hyphenated UUID form ids are stored in.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
