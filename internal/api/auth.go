package api

import (
	"net/http" // HTTP status codes

	"demo_wallet/internal/service" // Onboarding orchestrator

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`    // Registered email
	Password string `json:"password"` // Plain password
}

// CreateAccountHandler onboards a user and provisions their wallet
func CreateAccountHandler(users *service.UserService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.Registration // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		user, err := users.CreateUser(c.Request.Context(), req)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusCreated, "User created successfully", user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *service.UserService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, log, err)
			return
		}
		ok(c, http.StatusOK, "Login successful", res)
	}
}
