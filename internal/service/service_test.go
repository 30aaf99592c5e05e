package service

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-finance/pulse/internal/advisor"
	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/config"
	"github.com/pulse-finance/pulse/internal/middleware"
	"github.com/pulse-finance/pulse/internal/models"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	nextID   int64
	users    map[int64]*models.User
	incomes  map[int64]*models.IncomeEntry
	bills    map[int64]*models.BillEntry
	balances map[int64]*models.AccountBalance
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		users:    make(map[int64]*models.User),
		incomes:  make(map[int64]*models.IncomeEntry),
		bills:    make(map[int64]*models.BillEntry),
		balances: make(map[int64]*models.AccountBalance),
	}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) CreateUser(user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.Validation("email already registered")
		}
	}
	user.ID = f.id()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeStore) FindUserByID(id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeStore) CreateIncome(entry *models.IncomeEntry) error {
	entry.ID = f.id()
	f.incomes[entry.ID] = entry
	return nil
}

func (f *fakeStore) ListIncomes(userID int64) ([]models.IncomeEntry, error) {
	var entries []models.IncomeEntry
	for _, e := range f.incomes {
		if e.UserID == userID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (f *fakeStore) UpdateIncome(entry *models.IncomeEntry) error {
	existing, ok := f.incomes[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return apperrors.NotFound("income entry not found")
	}
	f.incomes[entry.ID] = entry
	return nil
}

func (f *fakeStore) DeleteIncome(userID, id int64) error {
	existing, ok := f.incomes[id]
	if !ok || existing.UserID != userID {
		return apperrors.NotFound("income entry not found")
	}
	delete(f.incomes, id)
	return nil
}

func (f *fakeStore) CreateBill(bill *models.BillEntry) error {
	bill.ID = f.id()
	f.bills[bill.ID] = bill
	return nil
}

func (f *fakeStore) ListBills(userID int64) ([]models.BillEntry, error) {
	var bills []models.BillEntry
	for _, b := range f.bills {
		if b.UserID == userID {
			bills = append(bills, *b)
		}
	}
	return bills, nil
}

func (f *fakeStore) UpdateBill(bill *models.BillEntry) error {
	existing, ok := f.bills[bill.ID]
	if !ok || existing.UserID != bill.UserID {
		return apperrors.NotFound("bill entry not found")
	}
	f.bills[bill.ID] = bill
	return nil
}

func (f *fakeStore) DeleteBill(userID, id int64) error {
	existing, ok := f.bills[id]
	if !ok || existing.UserID != userID {
		return apperrors.NotFound("bill entry not found")
	}
	delete(f.bills, id)
	return nil
}

func (f *fakeStore) GetBalance(userID int64) (*models.AccountBalance, error) {
	if b, ok := f.balances[userID]; ok {
		return b, nil
	}
	return &models.AccountBalance{UserID: userID}, nil
}

func (f *fakeStore) UpsertBalance(userID int64, balance float64) (*models.AccountBalance, error) {
	b := &models.AccountBalance{UserID: userID, Balance: &balance, UpdatedAt: "now"}
	f.balances[userID] = b
	return b, nil
}

// fakeRates always returns a fixed key rate.
type fakeRates struct {
	rate float64
}

func (f *fakeRates) GetKeyRate() (float64, error) { return f.rate, nil }

func newTestService(store Store, rates RateSource) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret"}
	return NewService(store, log, cfg, rates, nil)
}

func userCtx(id int64) context.Context {
	return middleware.WithUserID(context.Background(), id)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)

	_, err := svc.Register("", "alice@example.com", "supersecret")
	assert.True(t, apperrors.IsValidation(err), "empty username should fail")

	_, err = svc.Register("alice", "not-an-email", "supersecret")
	assert.True(t, apperrors.IsValidation(err), "bad email should fail")

	_, err = svc.Register("alice", "alice@example.com", "short")
	assert.True(t, apperrors.IsValidation(err), "weak password should fail")

	user, err := svc.Register("alice", "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	_, err := svc.Register("alice", "alice@example.com", "supersecret")
	require.NoError(t, err)

	token, err := svc.Login("alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login("alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestIncomeCRUD(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := userCtx(1)

	_, err := svc.AddIncome(ctx, "Salary", -10, models.FrequencyMonthly)
	assert.True(t, apperrors.IsValidation(err), "negative amount should fail")

	_, err = svc.AddIncome(ctx, "Salary", 100, models.Frequency("Hourly"))
	assert.True(t, apperrors.IsValidation(err), "bad frequency should fail")

	entry, err := svc.AddIncome(ctx, "Salary", 2500, models.FrequencyMonthly)
	require.NoError(t, err)

	entries, err := svc.ListIncomes(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Salary", entries[0].Source)

	_, err = svc.UpdateIncome(ctx, entry.ID, "Salary", 2600, models.FrequencyMonthly)
	require.NoError(t, err)

	_, err = svc.UpdateIncome(ctx, 999, "Salary", 2600, models.FrequencyMonthly)
	assert.True(t, apperrors.IsNotFound(err))

	// Another user must not see or touch the entry.
	otherCtx := userCtx(2)
	otherEntries, err := svc.ListIncomes(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, otherEntries)
	err = svc.DeleteIncome(otherCtx, entry.ID)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.DeleteIncome(ctx, entry.ID))
}

func TestBillValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	ctx := userCtx(1)

	_, err := svc.AddBill(ctx, "Rent", 900, 0)
	assert.True(t, apperrors.IsValidation(err), "due date 0 should fail")

	_, err = svc.AddBill(ctx, "Rent", 900, 32)
	assert.True(t, apperrors.IsValidation(err), "due date 32 should fail")

	_, err = svc.AddBill(ctx, "", 900, 10)
	assert.True(t, apperrors.IsValidation(err), "empty name should fail")

	bill, err := svc.AddBill(ctx, "Rent", 900, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, bill.DueDate)
}

func TestSummary(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := userCtx(1)

	_, err := svc.AddIncome(ctx, "Job", 500, models.FrequencyWeekly)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2000, summary.TotalMonthlyIncome, 0.001)
	assert.InDelta(t, 0, summary.TotalMonthlyBills, 0.001)
	assert.InDelta(t, 2000, summary.AvailableToSpend, 0.001)
}

func TestSpendingAdvice(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	ctx := userCtx(1)

	// Balance not verified yet.
	_, err := svc.SpendingAdvice(ctx, "50.00")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.VerifyBalance(ctx, 100.00)
	require.NoError(t, err)

	_, err = svc.SpendingAdvice(ctx, "abc")
	assert.True(t, apperrors.IsValidation(err), "non-numeric amount should fail")

	_, err = svc.SpendingAdvice(ctx, "-5")
	assert.True(t, apperrors.IsValidation(err), "negative amount should fail")

	// ParseFloat accepts these spellings, but they are not valid amounts.
	_, err = svc.SpendingAdvice(ctx, "NaN")
	assert.True(t, apperrors.IsValidation(err), "NaN amount should fail")

	_, err = svc.SpendingAdvice(ctx, "+Inf")
	assert.True(t, apperrors.IsValidation(err), "+Inf amount should fail")

	advice, err := svc.SpendingAdvice(ctx, "150.00")
	require.NoError(t, err)
	assert.False(t, advice.CanSpend)
	assert.Equal(t, advisor.OutcomeRejected, advice.Outcome)
	assert.Contains(t, advice.Message, "$100.00")

	advice, err = svc.SpendingAdvice(ctx, "50.00")
	require.NoError(t, err)
	assert.True(t, advice.CanSpend)
	assert.Equal(t, advisor.OutcomeApprovedNoBills, advice.Outcome)
}

func TestFinancialAdvice(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeRates{rate: 7.25})
	ctx := userCtx(1)

	_, err := svc.FinancialAdvice(ctx, "  ")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.AddIncome(ctx, "Salary", 300, models.FrequencyMonthly)
	require.NoError(t, err)
	_, err = svc.AddIncome(ctx, "Tutoring", 100, models.FrequencyWeekly)
	require.NoError(t, err)

	msg, err := svc.FinancialAdvice(ctx, "How much income do I have?")
	require.NoError(t, err)
	assert.Contains(t, msg, "$700.00")

	msg, err = svc.FinancialAdvice(ctx, "how much should I be saving?")
	require.NoError(t, err)
	assert.Contains(t, msg, "7.25%")
}
