package models

import (
	"time"

	"github.com/google/uuid"
)

// Swap представляет предложение об обмене двумя вещами между двумя пользователями.
// Пока обмен в статусе pending, вещи не зарезервированы; резервирование
// происходит в момент принятия и снимается любым терминальным переходом.
type Swap struct {
	ID              uuid.UUID `db:"id" json:"id"`
	InitiatorID     uuid.UUID `db:"initiator_id" json:"initiator_id"`
	RecipientID     uuid.UUID `db:"recipient_id" json:"recipient_id"`
	InitiatorItemID uuid.UUID `db:"initiator_item_id" json:"initiator_item_id"`
	RecipientItemID uuid.UUID `db:"recipient_item_id" json:"recipient_item_id"`
	Status          string    `db:"status" json:"status"`

	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledBy  *uuid.UUID `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`

	// Аудит модерации обмена.
	ApprovedBy   *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedBy   *uuid.UUID `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt   *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectReason *string    `db:"reject_reason" json:"reject_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Связанные вещи для ответов API.
	InitiatorItem *Item `db:"-" json:"initiator_item,omitempty"`
	RecipientItem *Item `db:"-" json:"recipient_item,omitempty"`
}

// IsParticipant проверяет, является ли пользователь стороной обмена.
func (s *Swap) IsParticipant(userID uuid.UUID) bool {
	return s.InitiatorID == userID || s.RecipientID == userID
}

// IsTerminal сообщает, находится ли обмен в терминальном статусе.
func (s *Swap) IsTerminal() bool {
	return IsTerminalSwapStatus(s.Status)
}

// References проверяет, участвует ли вещь в обмене с любой стороны.
func (s *Swap) References(itemID uuid.UUID) bool {
	return s.InitiatorItemID == itemID || s.RecipientItemID == itemID
}

// SwapMessage хранит сообщение в переписке по обмену (append-only).
type SwapMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SwapID    uuid.UUID `db:"swap_id" json:"swap_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
