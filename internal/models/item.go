package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Item описывает вещь, выставленную пользователем на обмен.
// Поле Status меняется только через условное обновление в репозитории.
type Item struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	OwnerID     uuid.UUID      `db:"owner_id" json:"owner_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Category    string         `db:"category" json:"category"`
	Size        string         `db:"size" json:"size"`
	Condition   string         `db:"condition" json:"condition"`
	ImageRefs   pq.StringArray `db:"image_refs" json:"image_refs"`
	Status      string         `db:"status" json:"status"`
	IsActive    bool           `db:"is_active" json:"is_active"`

	// Аудит модерации.
	ApprovedBy   *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedBy   *uuid.UUID `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt   *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectReason *string    `db:"reject_reason" json:"reject_reason,omitempty"`
	FlaggedBy    *uuid.UUID `db:"flagged_by" json:"flagged_by,omitempty"`
	FlaggedAt    *time.Time `db:"flagged_at" json:"flagged_at,omitempty"`
	FlagReason   *string    `db:"flag_reason" json:"flag_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsOwnedBy проверяет принадлежность вещи пользователю.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}

// IsOfferable сообщает, можно ли предлагать вещь к обмену.
func (i *Item) IsOfferable() bool {
	if !i.IsActive {
		return false
	}
	return i.Status == ItemStatusApproved || i.Status == ItemStatusAvailable
}
