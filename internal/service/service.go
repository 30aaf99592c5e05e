package service

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulse-finance/pulse/internal/advisor"
	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/config"
	"github.com/pulse-finance/pulse/internal/middleware"
	"github.com/pulse-finance/pulse/internal/models"
)

// Store defines the persistence operations the service depends on.
// Implemented by repository.Repository; tests substitute an in-memory fake.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)

	CreateIncome(entry *models.IncomeEntry) error
	ListIncomes(userID int64) ([]models.IncomeEntry, error)
	UpdateIncome(entry *models.IncomeEntry) error
	DeleteIncome(userID, id int64) error

	CreateBill(bill *models.BillEntry) error
	ListBills(userID int64) ([]models.BillEntry, error)
	UpdateBill(bill *models.BillEntry) error
	DeleteBill(userID, id int64) error

	GetBalance(userID int64) (*models.AccountBalance, error)
	UpsertBalance(userID int64, balance float64) (*models.AccountBalance, error)
}

// RateSource supplies the central-bank key rate. Optional; a nil source
// simply drops the rate from savings advice.
type RateSource interface {
	GetKeyRate() (float64, error)
}

// Notifier sends user-facing emails. Optional; failures are logged, never
// surfaced to the caller.
type Notifier interface {
	SendBalanceVerified(to, username string, balance float64) error
}

// Service handles business logic
type Service struct {
	store    Store
	log      *logrus.Logger
	config   *config.Config
	rates    RateSource
	notifier Notifier
}

// NewService initializes a new service. rates and notifier may be nil.
func NewService(store Store, log *logrus.Logger, cfg *config.Config, rates RateSource, notifier Notifier) *Service {
	return &Service{store: store, log: log, config: cfg, rates: rates, notifier: notifier}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.Validation("username must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validation("invalid email address")
	}
	if len(password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

func (s *Service) userFromContext(ctx context.Context) (int64, error) {
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

func validateIncome(source string, amount float64, frequency models.Frequency) error {
	if strings.TrimSpace(source) == "" {
		return apperrors.Validation("income source must not be empty")
	}
	if amount <= 0 {
		return apperrors.Validation("amount must be a positive number")
	}
	if !frequency.Valid() {
		return apperrors.Validation("unsupported income frequency %q", string(frequency))
	}
	return nil
}

// AddIncome creates an income entry for the authenticated user
func (s *Service) AddIncome(ctx context.Context, source string, amount float64, frequency models.Frequency) (*models.IncomeEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateIncome(source, amount, frequency); err != nil {
		return nil, err
	}

	entry := &models.IncomeEntry{
		UserID:    userID,
		Source:    source,
		Amount:    amount,
		Frequency: frequency,
	}
	if err := s.store.CreateIncome(entry); err != nil {
		return nil, err
	}

	s.log.Infof("Income entry %d created for user %d", entry.ID, userID)
	return entry, nil
}

// ListIncomes returns the authenticated user's income entries
func (s *Service) ListIncomes(ctx context.Context) ([]models.IncomeEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListIncomes(userID)
}

// UpdateIncome replaces an income entry owned by the authenticated user
func (s *Service) UpdateIncome(ctx context.Context, id int64, source string, amount float64, frequency models.Frequency) (*models.IncomeEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateIncome(source, amount, frequency); err != nil {
		return nil, err
	}

	entry := &models.IncomeEntry{
		ID:        id,
		UserID:    userID,
		Source:    source,
		Amount:    amount,
		Frequency: frequency,
	}
	if err := s.store.UpdateIncome(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteIncome removes an income entry owned by the authenticated user
func (s *Service) DeleteIncome(ctx context.Context, id int64) error {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteIncome(userID, id)
}

func validateBill(name string, amount float64, dueDate int) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Validation("bill name must not be empty")
	}
	if amount <= 0 {
		return apperrors.Validation("amount must be a positive number")
	}
	if dueDate < 1 || dueDate > 31 {
		return apperrors.Validation("due date must be a day of month between 1 and 31")
	}
	return nil
}

// AddBill creates a bill entry for the authenticated user
func (s *Service) AddBill(ctx context.Context, name string, amount float64, dueDate int) (*models.BillEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateBill(name, amount, dueDate); err != nil {
		return nil, err
	}

	bill := &models.BillEntry{
		UserID:  userID,
		Name:    name,
		Amount:  amount,
		DueDate: dueDate,
	}
	if err := s.store.CreateBill(bill); err != nil {
		return nil, err
	}

	s.log.Infof("Bill entry %d created for user %d", bill.ID, userID)
	return bill, nil
}

// ListBills returns the authenticated user's bill entries
func (s *Service) ListBills(ctx context.Context) ([]models.BillEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListBills(userID)
}

// UpdateBill replaces a bill entry owned by the authenticated user
func (s *Service) UpdateBill(ctx context.Context, id int64, name string, amount float64, dueDate int) (*models.BillEntry, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateBill(name, amount, dueDate); err != nil {
		return nil, err
	}

	bill := &models.BillEntry{
		ID:      id,
		UserID:  userID,
		Name:    name,
		Amount:  amount,
		DueDate: dueDate,
	}
	if err := s.store.UpdateBill(bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// DeleteBill removes a bill entry owned by the authenticated user
func (s *Service) DeleteBill(ctx context.Context, id int64) error {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return err
	}
	return s.store.DeleteBill(userID, id)
}

// GetBalance returns the authenticated user's stored balance
func (s *Service) GetBalance(ctx context.Context) (*models.AccountBalance, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetBalance(userID)
}

// VerifyBalance stores the user's explicitly verified balance and sends a
// best-effort notification email
func (s *Service) VerifyBalance(ctx context.Context, balance float64) (*models.AccountBalance, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.UpsertBalance(userID, balance)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Balance verified for user %d", userID)

	if s.notifier != nil {
		if user, err := s.store.FindUserByID(userID); err == nil {
			if err := s.notifier.SendBalanceVerified(user.Email, user.Username, balance); err != nil {
				s.log.Warnf("Balance notification failed for user %d: %v", userID, err)
			}
		}
	}
	return stored, nil
}

// Summary returns the derived monthly income/bill picture for the
// authenticated user
func (s *Service) Summary(ctx context.Context) (*models.MonthlySummary, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	incomes, err := s.store.ListIncomes(userID)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBills(userID)
	if err != nil {
		return nil, err
	}
	summary, err := advisor.Summarize(incomes, bills)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SpendingAdvice answers "can I spend this much?" for the authenticated user.
// The amount arrives as a decimal string per the API contract.
func (s *Service) SpendingAdvice(ctx context.Context, amountStr string) (advisor.SpendingAdvice, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return advisor.SpendingAdvice{}, err
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(amountStr), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return advisor.SpendingAdvice{}, apperrors.Validation("amount must be a decimal number")
	}
	if amount <= 0 {
		return advisor.SpendingAdvice{}, apperrors.Validation("amount must be a positive number")
	}

	balance, err := s.store.GetBalance(userID)
	if err != nil {
		return advisor.SpendingAdvice{}, err
	}
	if !balance.Set() {
		return advisor.SpendingAdvice{}, apperrors.Validation("verify your account balance before asking the spending advisor")
	}

	bills, err := s.store.ListBills(userID)
	if err != nil {
		return advisor.SpendingAdvice{}, err
	}

	advice, err := advisor.DecideSpending(amount, *balance.Balance, bills, time.Now().Day())
	if err != nil {
		return advisor.SpendingAdvice{}, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"outcome": advice.Outcome,
	}).Info("Spending advice issued")
	return advice, nil
}

// FinancialAdvice answers a free-text question for the authenticated user
func (s *Service) FinancialAdvice(ctx context.Context, query string) (string, error) {
	userID, err := s.userFromContext(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(query) == "" {
		return "", apperrors.Validation("query must not be empty")
	}

	incomes, err := s.store.ListIncomes(userID)
	if err != nil {
		return "", err
	}
	bills, err := s.store.ListBills(userID)
	if err != nil {
		return "", err
	}
	balance, err := s.store.GetBalance(userID)
	if err != nil {
		return "", err
	}

	in := advisor.QueryInput{
		Incomes: incomes,
		Bills:   bills,
		Today:   time.Now().Day(),
	}
	if balance.Set() {
		in.Balance = balance.Balance
	}
	// Only the savings branch cites the key rate; skip the upstream call
	// for everything else.
	if s.rates != nil && advisor.WantsSavings(query) {
		if rate, err := s.rates.GetKeyRate(); err == nil {
			in.KeyRate = &rate
		} else {
			s.log.Warnf("Key rate unavailable: %v", err)
		}
	}

	return advisor.AnswerQuery(query, in)
}
