package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"demo_wallet/internal/domain"     // Error kinds
	"demo_wallet/internal/middleware" // Token identity
	"demo_wallet/internal/service"    // Wallet orchestrator
	"demo_wallet/internal/store"      // Page size defaults

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// AmountRequest is the body of fund and withdraw
type AmountRequest struct {
	UserID   string          `json:"userId"`   // Acting user, optional with a login token
	Amount   decimal.Decimal `json:"amount"`   // Positive, two decimal places at most
	Password string          `json:"password"` // Actor's password
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	UserID            string          `json:"userId"`              // Sending user
	RecipientWalletID string          `json:"recipient_wallet_id"` // Target wallet
	Amount            decimal.Decimal `json:"amount"`              // Transfer amount
	Password          string          `json:"password"`            // Sender's password
}

// actorID resolves who is acting. A login token wins over the body, and a body naming
// someone else is rejected.
func actorID(c *gin.Context, bodyUserID string) (string, error) {
	tokenID, ok := middleware.TokenUserID(c)
	if !ok {
		return bodyUserID, nil
	}
	if bodyUserID != "" && bodyUserID != tokenID {
		return "", &domain.Error{Kind: domain.KindAuthentication, Message: "userId does not match the authenticated user"}
	}
	return tokenID, nil
}

// FundHandler credits the caller's wallet
func FundHandler(wallets *service.WalletService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AmountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		userID, err := actorID(c, req.UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		res, err := wallets.Fund(c.Request.Context(), userID, req.Amount, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Wallet funded successfully", res)
	}
}

// WithdrawHandler debits the caller's wallet
func WithdrawHandler(wallets *service.WalletService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AmountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		userID, err := actorID(c, req.UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		res, err := wallets.Withdraw(c.Request.Context(), userID, req.Amount, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Withdrawal successful", res)
	}
}

// TransferHandler moves funds from the caller's wallet to another wallet
func TransferHandler(wallets *service.WalletService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		userID, err := actorID(c, req.UserID)
		if err != nil {
			fail(c, log, err)
			return
		}
		res, err := wallets.Transfer(c.Request.Context(), userID, req.RecipientWalletID, req.Amount, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Transfer successful", res)
	}
}

// GetWalletHandler returns a wallet snapshot. Login tokens only see their own wallet.
func GetWalletHandler(wallets *service.WalletService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := middleware.TokenUserID(c)
		wallet, err := wallets.GetWallet(c.Request.Context(), c.Param("walletId"), owner)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Wallet retrieved", wallet)
	}
}

// GetTransactionHistoryHandler returns one page of a wallet's transactions
func GetTransactionHistoryHandler(wallets *service.WalletService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1                         // Default page
		pageSize := store.DefaultPageSize // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= store.MaxPageSize {
				pageSize = v // Set page size if valid
			}
		}
		owner, _ := middleware.TokenUserID(c)
		history, err := wallets.History(c.Request.Context(), c.Param("walletId"), owner, page, pageSize)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Transactions retrieved", history)
	}
}
