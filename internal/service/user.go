package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"demo_wallet/internal/blacklist"
	"demo_wallet/internal/domain"
	"demo_wallet/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Verifier
	Hash(secret string) (string, error)
}

// TokenIssuer signs a session token for a user id.
type TokenIssuer func(userID string) (string, error)

// Registration is the onboarding input.
type Registration struct {
	Name     string `json:"name" validate:"name"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"phone"`
	Password string `json:"password" validate:"strongpassword"`
}

// LoginResult carries the authenticated user and their session token.
type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

var (
	phonePattern    = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z\d@$!%*?&]{8,}$`)
)

// validation messages keyed by struct field
var fieldMessages = map[string]string{
	"Name":     "Name must be at least 2 characters long",
	"Email":    "Valid email is required",
	"Phone":    "Valid phone number is required",
	"Password": "Password must be at least 8 characters with uppercase, lowercase, and number",
}

// registration rules beyond the validator's built-in tags
var customRules = map[string]validator.Func{
	"name": func(fl validator.FieldLevel) bool {
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= 2
	},
	"phone": func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	},
	"strongpassword": func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, customRules)
	return v
}

// mustRegister panics on a rule the validator refuses.
func mustRegister(v *validator.Validate, rules map[string]validator.Func) {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", tag, err))
		}
	}
}

// strongPassword requires a lowercase letter, an uppercase letter and a digit, drawn
// from letters, digits and @$!%*?&.
func strongPassword(p string) bool {
	if !passwordCharset.MatchString(p) {
		return false
	}
	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// UserService onboards users and logs them in.
type UserService struct {
	store     *store.Store
	blacklist blacklist.Checker
	hasher    Hasher
	issue     TokenIssuer
	validate  *validator.Validate
	log       logrus.FieldLogger
	txTimeout time.Duration
}

// NewUserService wires the onboarding orchestrator.
func NewUserService(st *store.Store, checker blacklist.Checker, hasher Hasher, issue TokenIssuer, log logrus.FieldLogger, txTimeout time.Duration) *UserService {
	return &UserService{
		store:     st,
		blacklist: checker,
		hasher:    hasher,
		issue:     issue,
		validate:  newValidator(),
		log:       log,
		txTimeout: txTimeout,
	}
}

// Validate reports every failing field of reg at once.
func (s *UserService) Validate(reg Registration) error {
	err := s.validate.Struct(reg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Validation("invalid registration", err.Error())
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fieldMessages[fe.StructField()])
	}
	return domain.Validation("invalid registration", details...)
}

// CreateUser validates reg, screens the email against the blacklist and creates the
// user with a zero-balance wallet in one unit of work.
func (s *UserService) CreateUser(ctx context.Context, reg Registration) (*domain.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.Phone = strings.TrimSpace(reg.Phone)
	if err := s.Validate(reg); err != nil {
		return nil, err
	}

	taken, err := s.store.Users.ExistsBy(ctx, "email", reg.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("User with this email already exists.")
	}
	taken, err = s.store.Users.ExistsBy(ctx, "phone", reg.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("User with this phone number already exists.")
	}

	status, err := s.blacklist.Check(ctx, reg.Email)
	if err != nil {
		s.log.WithError(err).Error("Blacklist lookup failed")
		return nil, domain.ExternalService("Unable to verify user against the blacklist", err)
	}
	if status == blacklist.StatusListed {
		return nil, domain.Blacklisted("User is in the blacklist. Cannot be onboarded!")
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, domain.Database("hash password", err)
	}

	user := &domain.User{
		ID:       uuid.NewString(),
		Name:     reg.Name,
		Email:    reg.Email,
		Phone:    reg.Phone,
		Password: hash,
	}
	err = s.store.Transaction(ctx, s.txTimeout, func(tx *store.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		wallet, err := tx.Wallets.Create(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := tx.Users.LinkWallet(ctx, user.ID, wallet.ID); err != nil {
			return err
		}
		user.WalletID = &wallet.ID
		return nil
	})
	if err != nil {
		if !domain.KindOf(err).Operational() {
			s.log.WithError(err).Error("Onboarding failed")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"wallet_id": *user.WalletID,
	}).Info("User onboarded")
	return user, nil
}

// Login checks the email and password and issues a session token. Unknown emails and
// wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("invalid login", "email and password are required")
	}
	user, err := s.store.Users.GetByEmail(ctx, email)
	if domain.IsKind(err, domain.KindNotFound) {
		return nil, domain.ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		return nil, domain.ErrInvalidCredentials
	}
	token, err := s.issue(user.ID)
	if err != nil {
		return nil, domain.Database("issue token", err)
	}
	return &LoginResult{User: user, Token: token}, nil
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if !validID(userID) {
		return nil, domain.Validation("invalid user id", "valid user ID is required")
	}
	return s.store.Users.GetByID(ctx, userID)
}
