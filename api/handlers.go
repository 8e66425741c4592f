package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"layledger/models"
	"layledger/service"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Services groups the ledger operations exposed over HTTP
type Services struct {
	Bets     service.BetService
	Deposits service.DepositService
	Withdraw service.WithdrawService
	Rollover service.RolloverService
	Accounts service.AccountService
}

// Handler serves the ledger HTTP API
type Handler struct {
	services Services
	now      service.Clock
}

// NewHandler initializes handlers over the given services
func NewHandler(services Services, clock service.Clock) *Handler {
	if clock == nil {
		clock = service.SystemClock
	}
	return &Handler{services: services, now: clock}
}

// decodeAndValidate reads a JSON body into dst and validates its tags. An empty body
// decodes as an empty object.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Malformed JSON body", service.ReasonInvalidInput)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		reason := service.ReasonInvalidInput
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Tag() == moneyTag {
					reason = service.ReasonInvalidAmount
					break
				}
			}
		}
		writeError(w, http.StatusBadRequest, err.Error(), reason)
		return false
	}
	return true
}

func (h *Handler) HandleAccountInfo(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	info, err := h.services.Accounts.GetAccountInfo(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountInfoResponse{
		Balance:        info.Balance,
		WeeklyCashback: info.WeeklyCashback,
		ActiveLay:      newLayResponses(info.PendingLays),
		History:        newLayResponses(info.History),
	})
}

func (h *Handler) HandleCreateLay(w http.ResponseWriter, r *http.Request) {
	var req createLayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := claimsFromContext(r.Context())
	bet, err := h.services.Bets.CreateBet(r.Context(), service.CreateBetParams{
		UserID:      claims.UserID,
		TotalOdds:   decimal.RequireFromString(req.TotalOdds),
		StakeAmount: decimal.RequireFromString(req.StakeAmount),
		WinPayout:   decimal.RequireFromString(req.WinPayout),
		LossPayout:  decimal.RequireFromString(req.LossPayout),
		Match:       req.Match,
		Tip:         req.Tip,
		FileName:    req.FileName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newLayResponse(bet))
}

func (h *Handler) HandleGetLay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lay id", service.ReasonInvalidInput)
		return
	}

	bet, err := h.services.Bets.GetBet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Other users' lays are reported as missing
	claims := claimsFromContext(r.Context())
	if bet.UserID != claims.UserID && !claims.IsStaff {
		writeError(w, http.StatusNotFound, "Lay not found", service.ReasonBetNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newLayResponse(bet))
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims := claimsFromContext(r.Context())
	request, err := h.services.Withdraw.RequestWithdraw(r.Context(), claims.UserID, decimal.RequireFromString(req.Amount), req.Address)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, withdrawResponse{
		ID:        request.ID,
		Amount:    request.Amount,
		Address:   request.Address,
		CreatedAt: request.CreatedAt,
	})
}

func (h *Handler) HandleGenerateDeposit(w http.ResponseWriter, r *http.Request) {
	address, err := h.services.Deposits.NextAddress(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, depositResponse{DepositAddress: address.Address})
}

func (h *Handler) HandleTransitionLay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lay id", service.ReasonInvalidInput)
		return
	}

	var req transitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	bet, err := h.services.Bets.TransitionBet(r.Context(), id, models.BetStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLayResponse(bet))
}

func (h *Handler) HandleRollover(w http.ResponseWriter, r *http.Request) {
	var req rolloverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	week := service.PreviousWeek(h.now())
	if req.Week != "" {
		parsed, err := time.Parse(time.DateOnly, req.Week)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week", service.ReasonInvalidInput)
			return
		}
		week = parsed
	}

	paid, err := h.services.Rollover.RolloverWeek(r.Context(), week)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	weekStart, _ := models.WeekRange(week)
	writeJSON(w, http.StatusOK, rolloverResponse{
		WeekStart: weekStart.Format(time.DateOnly),
		UsersPaid: paid,
	})
}

func (h *Handler) HandleSeedDeposits(w http.ResponseWriter, r *http.Request) {
	var req seedDepositsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	addresses := req.Addresses
	if len(addresses) == 0 {
		count := req.Count
		if count == 0 {
			count = DefaultSeedCount
		}
		addresses = service.DefaultDepositAddresses(count)
	}

	if err := h.services.Deposits.SeedAddresses(r.Context(), addresses); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, seedDepositsResponse{Seeded: len(addresses)})
}
