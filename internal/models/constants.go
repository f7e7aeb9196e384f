package models

// ItemStatus константы статусов вещей
const (
	ItemStatusPending     = "pending"
	ItemStatusApproved    = "approved"
	ItemStatusRejected    = "rejected"
	ItemStatusFlagged     = "flagged"
	ItemStatusAvailable   = "available"
	ItemStatusPendingSwap = "pending_swap"
	ItemStatusSwapped     = "swapped"
	ItemStatusRemoved     = "removed"
)

// SwapStatus константы статусов обменов
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
	SwapStatusCancelled = "cancelled"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidItemStatuses список валидных статусов вещей
var ValidItemStatuses = map[string]struct{}{
	ItemStatusPending:     {},
	ItemStatusApproved:    {},
	ItemStatusRejected:    {},
	ItemStatusFlagged:     {},
	ItemStatusAvailable:   {},
	ItemStatusPendingSwap: {},
	ItemStatusSwapped:     {},
	ItemStatusRemoved:     {},
}

// ValidSwapStatuses список валидных статусов обменов
var ValidSwapStatuses = map[string]struct{}{
	SwapStatusPending:   {},
	SwapStatusAccepted:  {},
	SwapStatusRejected:  {},
	SwapStatusCompleted: {},
	SwapStatusCancelled: {},
}

// OfferableItemStatuses статусы, из которых вещь можно предлагать к обмену.
var OfferableItemStatuses = []string{ItemStatusApproved, ItemStatusAvailable}

// SoftDeletableItemStatuses статусы, из которых владелец может удалить вещь.
// Зарезервированная вещь (pending_swap) сюда не входит.
var SoftDeletableItemStatuses = []string{
	ItemStatusPending,
	ItemStatusApproved,
	ItemStatusAvailable,
	ItemStatusRejected,
	ItemStatusFlagged,
}

// IsTerminalSwapStatus сообщает, является ли статус обмена терминальным.
func IsTerminalSwapStatus(status string) bool {
	switch status {
	case SwapStatusRejected, SwapStatusCompleted, SwapStatusCancelled:
		return true
	}
	return false
}
