package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pulse-finance/pulse/internal/apperrors"
	"github.com/pulse-finance/pulse/internal/models"
	"github.com/pulse-finance/pulse/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is logged and reported as a generic failure; internals never
// reach the client.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case apperrors.IsNotFound(err):
		h.respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		h.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		h.log.Errorf("Internal error: %v", err)
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something went wrong. Please try again."})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id")
	}
	return id, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

type incomeRequest struct {
	Source    string  `json:"source"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

// ListIncome returns the user's income entries
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListIncomes(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.IncomeEntry{}
	}
	h.respondJSON(w, http.StatusOK, entries)
}

// CreateIncome adds an income entry
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.svc.AddIncome(r.Context(), req.Source, req.Amount, models.Frequency(req.Frequency))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, entry)
}

// UpdateIncome replaces an income entry
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req incomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.svc.UpdateIncome(r.Context(), id, req.Source, req.Amount, models.Frequency(req.Frequency))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, entry)
}

// DeleteIncome removes an income entry
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.svc.DeleteIncome(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type billRequest struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	DueDate int     `json:"due_date"`
}

// ListBills returns the user's bill entries
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.ListBills(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if bills == nil {
		bills = []models.BillEntry{}
	}
	h.respondJSON(w, http.StatusOK, bills)
}

// CreateBill adds a bill entry
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !h.decode(w, r, &req) {
		return
	}
	bill, err := h.svc.AddBill(r.Context(), req.Name, req.Amount, req.DueDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, bill)
}

// UpdateBill replaces a bill entry
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req billRequest
	if !h.decode(w, r, &req) {
		return
	}
	bill, err := h.svc.UpdateBill(r.Context(), id, req.Name, req.Amount, req.DueDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, bill)
}

// DeleteBill removes a bill entry
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.svc.DeleteBill(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balanceResponse struct {
	Balance   *float64 `json:"balance"`
	Set       bool     `json:"set"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// GetBalance returns the stored account balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.GetBalance(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, balanceResponse{
		Balance:   bal.Balance,
		Set:       bal.Set(),
		UpdatedAt: bal.UpdatedAt,
	})
}

type verifyBalanceRequest struct {
	Balance *float64 `json:"balance"`
}

// VerifyBalance stores the user-verified account balance
func (h *Handler) VerifyBalance(w http.ResponseWriter, r *http.Request) {
	var req verifyBalanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Balance == nil {
		h.respondError(w, apperrors.Validation("balance is required"))
		return
	}
	bal, err := h.svc.VerifyBalance(r.Context(), *req.Balance)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, balanceResponse{
		Balance:   bal.Balance,
		Set:       bal.Set(),
		UpdatedAt: bal.UpdatedAt,
	})
}

// GetSummary returns the derived monthly income/bill picture
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}

type spendingRequest struct {
	Amount string `json:"amount"`
}

// SpendingAdvisor answers "can I spend this much?"
func (h *Handler) SpendingAdvisor(w http.ResponseWriter, r *http.Request) {
	var req spendingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Amount == "" {
		h.respondError(w, apperrors.Validation("amount is required"))
		return
	}
	advice, err := h.svc.SpendingAdvice(r.Context(), req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, advice)
}

type queryRequest struct {
	Query string `json:"query"`
}

// FinancialAdvisor answers a free-text financial question
func (h *Handler) FinancialAdvisor(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !h.decode(w, r, &req) {
		return
	}
	message, err := h.svc.FinancialAdvice(r.Context(), req.Query)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": message})
}
