package types

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success  bool            `json:"success"`
	Token    string          `json:"token" validate:"required"`
	Username string          `json:"username" validate:"required"`
	Balance  decimal.Decimal `json:"balance" validate:"gte=0"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=6,max=32"`
	Password string `json:"password" validate:"required,min=6,max=32"`
}

type RegisterResponse struct {
	Success bool `json:"success"`
}
