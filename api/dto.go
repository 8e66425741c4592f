package api

import (
	"time"

	"layledger/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// moneyTag accepts decimal strings that a NUMERIC(18, 6) column stores exactly
const moneyTag = "money"

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(moneyTag, func(fl validator.FieldLevel) bool {
		amount, err := decimal.NewFromString(fl.Field().String())
		return err == nil && models.IsStorableAmount(amount)
	})
	return v
}

// DefaultSeedCount is the pool size seeded when no addresses are supplied
const DefaultSeedCount = 10

type createLayRequest struct {
	TotalOdds   string `json:"total_odds" validate:"required,numeric,money"`
	StakeAmount string `json:"stake_amount" validate:"required,numeric,money"`
	WinPayout   string `json:"win_payout" validate:"required,numeric,money"`
	LossPayout  string `json:"loss_payout" validate:"required,numeric,money"`
	Match       string `json:"match" validate:"max=255"`
	Tip         string `json:"tip" validate:"max=255"`
	FileName    string `json:"file_name" validate:"max=255"`
}

type withdrawRequest struct {
	Amount  string `json:"amount" validate:"required,numeric,money"`
	Address string `json:"address" validate:"required,max=128"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved declined"`
}

type rolloverRequest struct {
	Week string `json:"week" validate:"omitempty,datetime=2006-01-02"`
}

type seedDepositsRequest struct {
	Addresses []string `json:"addresses" validate:"omitempty,dive,required,max=128"`
	Count     int      `json:"count" validate:"omitempty,min=1,max=1000"`
}

type layResponse struct {
	ID          uuid.UUID        `json:"id"`
	Status      models.BetStatus `json:"status"`
	TotalOdds   decimal.Decimal  `json:"total_odds"`
	StakeAmount decimal.Decimal  `json:"stake_amount"`
	WinPayout   decimal.Decimal  `json:"win_payout"`
	LossPayout  decimal.Decimal  `json:"loss_payout"`
	Match       string           `json:"match"`
	Tip         string           `json:"tip"`
	FileName    string           `json:"file_name"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type accountInfoResponse struct {
	Balance        decimal.Decimal `json:"balance"`
	WeeklyCashback decimal.Decimal `json:"weekly_cashback"`
	ActiveLay      []layResponse   `json:"active_lay"`
	History        []layResponse   `json:"history"`
}

type withdrawResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Address   string          `json:"address"`
	CreatedAt time.Time       `json:"created_at"`
}

type depositResponse struct {
	DepositAddress string `json:"deposit_address"`
}

type rolloverResponse struct {
	WeekStart string `json:"week_start"`
	UsersPaid int    `json:"users_paid"`
}

type seedDepositsResponse struct {
	Seeded int `json:"seeded"`
}

func newLayResponse(bet *models.Bet) layResponse {
	return layResponse{
		ID:          bet.ID,
		Status:      bet.Status,
		TotalOdds:   bet.TotalOdds,
		StakeAmount: bet.StakeAmount,
		WinPayout:   bet.WinPayout,
		LossPayout:  bet.LossPayout,
		Match:       bet.Match,
		Tip:         bet.Tip,
		FileName:    bet.FileName,
		CreatedAt:   bet.CreatedAt,
		UpdatedAt:   bet.UpdatedAt,
	}
}

func newLayResponses(bets []*models.Bet) []layResponse {
	out := make([]layResponse, 0, len(bets))
	for _, bet := range bets {
		out = append(out, newLayResponse(bet))
	}
	return out
}
