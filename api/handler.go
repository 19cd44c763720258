package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"corebank/models"
	"corebank/service"

	log "github.com/sirupsen/logrus"
)

// Handler exposes the banking operations over HTTP
type Handler struct {
	accounts   service.AccountService
	transfers  service.TransferService
	interest   service.InterestService
	adminToken string
}

// NewHandler creates the HTTP handler. An empty adminToken disables the admin
// endpoints.
func NewHandler(accounts service.AccountService, transfers service.TransferService, interest service.InterestService, adminToken string) *Handler {
	return &Handler{
		accounts:   accounts,
		transfers:  transfers,
		interest:   interest,
		adminToken: adminToken,
	}
}

// Register attaches all routes to the mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /rates", h.GetRates)
	mux.HandleFunc("POST /customers", h.CreateCustomer)
	mux.HandleFunc("POST /accounts", h.OpenAccount)
	mux.HandleFunc("GET /accounts/{id}", h.GetAccount)
	mux.HandleFunc("POST /transfers", h.Transfer)
	mux.HandleFunc("POST /admin/interest/runs", h.requireAdmin(h.TriggerInterestRun))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	entries, err := h.interest.GetRateSchedule(r.Context())
	if err != nil {
		log.WithField("error", err).Error("Failed to load rate schedule")
		h.respondError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	type rateResponse struct {
		Tier          models.AccountTier `json:"tier"`
		RateBps       int64              `json:"rate_bps"`
		EffectiveFrom string             `json:"effective_from"`
	}
	rates := make([]rateResponse, 0, len(entries))
	for _, entry := range entries {
		rates = append(rates, rateResponse{
			Tier:          entry.Tier,
			RateBps:       entry.RateBps,
			EffectiveFrom: entry.EffectiveFrom.Format("2006-01-02"),
		})
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	customer, err := h.accounts.CreateCustomer(r.Context(), req.Name, req.Email)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, customerResponse(customer))
}

func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID     int64  `json:"customer_id"`
		Tier           string `json:"tier"`
		OpeningDeposit int64  `json:"opening_deposit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), req.CustomerID, models.AccountTier(req.Tier), req.OpeningDeposit)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, accountResponse(account))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_account_id")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.WithField("error", err).Error("Failed to get account")
		h.respondError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	h.respondJSON(w, http.StatusOK, accountResponse(account))
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccountID int64 `json:"from_account_id"`
		ToAccountID   int64 `json:"to_account_id"`
		Amount        int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	result, err := h.transfers.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			h.respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientFunds):
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// TriggerInterestRun runs interest accrual for a period. The body may name an
// explicit period; with no body or an empty one the most recent completed
// calendar month is used.
func (h *Handler) TriggerInterestRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_json")
			return
		}
	}

	period := h.interest.CurrentPeriod()
	if req.PeriodStart != "" || req.PeriodEnd != "" {
		start, err := time.ParseInLocation("2006-01-02", req.PeriodStart, time.UTC)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_period_start")
			return
		}
		end, err := time.ParseInLocation("2006-01-02", req.PeriodEnd, time.UTC)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_period_end")
			return
		}
		period = models.AccrualPeriod{Start: start, End: end}
	}

	summary, err := h.interest.Run(r.Context(), period, nil)
	if err != nil {
		var rateErr *service.RateNotFoundError
		if errors.As(err, &rateErr) {
			h.respondError(w, http.StatusConflict, rateErr.Error())
			return
		}
		log.WithFields(log.Fields{
			"period": period.String(),
			"error":  err,
		}).Error("Interest run failed")
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}

// requireAdmin guards an endpoint behind a bearer token
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken == "" {
			h.respondError(w, http.StatusForbidden, "admin_endpoints_disabled")
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			h.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func customerResponse(c *models.Customer) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"created_at": c.CreatedAt,
	}
}

func accountResponse(a *models.Account) map[string]any {
	resp := map[string]any{
		"id":          a.ID,
		"customer_id": a.CustomerID,
		"tier":        a.Tier,
		"balance":     a.Balance,
		"created_at":  a.CreatedAt,
	}
	if a.LastInterestCredited != nil {
		resp["last_interest_credited"] = a.LastInterestCredited.Format("2006-01-02")
	}
	return resp
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
