package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"demo_wallet/internal/blacklist"
	"demo_wallet/internal/db/dbtest"
	"demo_wallet/internal/domain"
	"demo_wallet/internal/service"
	"demo_wallet/internal/store"
	"demo_wallet/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testPassword = "Secret123"
	testSecret   = "test-jwt-secret"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *store.Store
	users   *service.UserService
	wallets *service.WalletService
	log     *test.Hook
	seq     atomic.Int64
}

func newFixture(t *testing.T, checker blacklist.Checker, opts ...service.WalletOption) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.Open(t), checker, opts...)
}

// newPooledFixture lets concurrent callers hold separate connections, so writers contend
// in the database rather than in the pool.
func newPooledFixture(t *testing.T, checker blacklist.Checker, opts ...service.WalletOption) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.OpenPool(t, 4), checker, opts...)
}

func newFixtureOn(t *testing.T, gdb *gorm.DB, checker blacklist.Checker, opts ...service.WalletOption) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	st := store.New(gdb)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	issue := func(userID string) (string, error) { return utils.GenerateJWT(userID, testSecret) }
	return &fixture{
		store:   st,
		users:   service.NewUserService(st, checker, hasher, issue, logger, 5*time.Second),
		wallets: service.NewWalletService(st, hasher, logger, 5*time.Second, opts...),
		log:     hook,
	}
}

func (f *fixture) registration() service.Registration {
	n := f.seq.Add(1)
	return service.Registration{
		Name:     "Ada Lovelace",
		Email:    fmt.Sprintf("ada%d@example.com", n),
		Phone:    fmt.Sprintf("+23480%08d", n),
		Password: testPassword,
	}
}

// onboard creates a user and funds their wallet with balance.
func (f *fixture) onboard(t *testing.T, balance string) *domain.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), f.registration())
	require.NoError(t, err)
	require.NotNil(t, user.WalletID)
	if b := dec(balance); b.IsPositive() {
		_, err := f.wallets.Fund(context.Background(), user.ID, b, testPassword)
		require.NoError(t, err)
	}
	return user
}

func (f *fixture) balance(t *testing.T, walletID string) decimal.Decimal {
	t.Helper()
	w, err := f.store.Wallets.GetByID(context.Background(), walletID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) ledgerSize(t *testing.T, walletID string) int64 {
	t.Helper()
	_, total, err := f.store.Ledger.ListByWallet(context.Background(), walletID, 1, 1)
	require.NoError(t, err)
	return total
}
