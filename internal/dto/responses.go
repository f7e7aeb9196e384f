package dto

import (
	"github.com/evseenkov/swapwear-backend/internal/models"
)

// ErrorResponse представляет стандартный ответ с ошибкой.
// Code — машинно-стабильный код, Message — человекочитаемое сообщение.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse представляет стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SwapResponse представляет обмен с подгруженными вещами.
type SwapResponse struct {
	Swap *models.Swap `json:"swap"`
}

// SwapListResponse представляет список обменов пользователя.
type SwapListResponse struct {
	Swaps []models.Swap `json:"swaps"`
}

// ItemResponse представляет одну вещь.
type ItemResponse struct {
	Item *models.Item `json:"item"`
}

// ItemListResponse представляет список вещей с метаданными пагинации.
type ItemListResponse struct {
	Items   []models.Item `json:"items"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// AuthResponse представляет результат регистрации или входа.
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// StatsResponse представляет агрегированную статистику пользователя.
type StatsResponse struct {
	Items        map[string]int `json:"items"`
	Swaps        map[string]int `json:"swaps"`
	ItemsSwapped int            `json:"items_swapped"`
	TotalSwaps   int            `json:"total_swaps"`
}
