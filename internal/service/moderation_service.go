package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/evseenkov/swapwear-backend/internal/logger"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/repository"
	"github.com/evseenkov/swapwear-backend/internal/validation"
)

// Notifier пишет уведомления побочным эффектом, не блокируя операцию.
type Notifier interface {
	NotifyAsync(userID uuid.UUID, event string, payload map[string]interface{})
}

// ModerationSwapRepo описывает операции над обменами, нужные модерации.
type ModerationSwapRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error)
	Approve(ctx context.Context, swapID, adminID uuid.UUID) (*models.Swap, error)
	Transition(ctx context.Context, p repository.SwapTransitionParams) (*models.Swap, error)
}

// ModerationService отвечает за действия администратора над вещами и обменами.
// Любое решение — условный переход статуса: одновременные решения двух
// администраторов не затираются, выигрывает первый.
type ModerationService struct {
	items    ItemRepo
	swaps    ModerationSwapRepo
	notifier Notifier
}

// NewModerationService создаёт новый экземпляр.
func NewModerationService(items ItemRepo, swaps ModerationSwapRepo, notifier Notifier) *ModerationService {
	return &ModerationService{items: items, swaps: swaps, notifier: notifier}
}

// ListItemQueue возвращает вещи, ожидающие решения модератора.
func (s *ModerationService) ListItemQueue(ctx context.Context, limit, offset int) (*repository.ItemListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	result, err := s.items.List(ctx, repository.ItemListParams{
		Statuses: []string{models.ItemStatusPending, models.ItemStatusFlagged},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить очередь модерации")
	}
	return result, nil
}

// ApproveItem одобряет вещь: pending|flagged -> approved.
func (s *ModerationService) ApproveItem(ctx context.Context, itemID, adminID uuid.UUID) (*models.Item, error) {
	item, err := s.items.Transition(ctx, repository.TransitionParams{
		ItemID:  itemID,
		From:    []string{models.ItemStatusPending, models.ItemStatusFlagged},
		To:      models.ItemStatusApproved,
		ActorID: adminID,
	})
	if err != nil {
		return nil, s.translateItemErr(err, "вещь уже рассмотрена либо участвует в обмене")
	}

	logger.Log.WithField("item_id", itemID).WithField("admin_id", adminID).Info("moderation: item approved")
	s.notifier.NotifyAsync(item.OwnerID, "item_approved", map[string]interface{}{"item_id": item.ID})

	return item, nil
}

// RejectItem отклоняет вещь с обязательной причиной: pending|flagged -> rejected.
func (s *ModerationService) RejectItem(ctx context.Context, itemID, adminID uuid.UUID, reason string) (*models.Item, error) {
	if err := validation.ValidateReason(reason, true); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	item, err := s.items.Transition(ctx, repository.TransitionParams{
		ItemID:  itemID,
		From:    []string{models.ItemStatusPending, models.ItemStatusFlagged},
		To:      models.ItemStatusRejected,
		ActorID: adminID,
		Reason:  &reason,
	})
	if err != nil {
		return nil, s.translateItemErr(err, "вещь уже рассмотрена либо участвует в обмене")
	}

	logger.Log.WithField("item_id", itemID).WithField("admin_id", adminID).Info("moderation: item rejected")
	s.notifier.NotifyAsync(item.OwnerID, "item_rejected", map[string]interface{}{
		"item_id": item.ID,
		"reason":  reason,
	})

	return item, nil
}

// FlagItem снимает одобренную вещь с каталога до повторного рассмотрения.
// Зарезервированную вещь (pending_swap) пометить нельзя.
func (s *ModerationService) FlagItem(ctx context.Context, itemID, adminID uuid.UUID, reason string) (*models.Item, error) {
	if err := validation.ValidateReason(reason, true); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	item, err := s.items.Transition(ctx, repository.TransitionParams{
		ItemID:  itemID,
		From:    models.OfferableItemStatuses,
		To:      models.ItemStatusFlagged,
		ActorID: adminID,
		Reason:  &reason,
	})
	if err != nil {
		return nil, s.translateItemErr(err, "вещь нельзя пометить в текущем статусе")
	}

	logger.Log.WithField("item_id", itemID).WithField("admin_id", adminID).Info("moderation: item flagged")
	s.notifier.NotifyAsync(item.OwnerID, "item_flagged", map[string]interface{}{
		"item_id": item.ID,
		"reason":  reason,
	})

	return item, nil
}

// ApproveSwap ставит отметку модерации на ожидающем обмене.
// Отметка не обязательна для принятия: это право вето, а не благословение.
func (s *ModerationService) ApproveSwap(ctx context.Context, swapID, adminID uuid.UUID) (*models.Swap, error) {
	swap, err := s.swaps.Approve(ctx, swapID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapNotFound):
			return nil, apperror.ErrSwapNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "обмен уже обработан")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось одобрить обмен")
	}

	logger.Log.WithField("swap_id", swapID).WithField("admin_id", adminID).Info("moderation: swap approved")

	return swap, nil
}

// RejectSwap отклоняет ожидающий обмен решением администратора.
// Вещи pending-обмена не зарезервированы, откатывать нечего.
func (s *ModerationService) RejectSwap(ctx context.Context, swapID, adminID uuid.UUID, reason string) (*models.Swap, error) {
	if err := validation.ValidateReason(reason, true); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	swap, err := s.swaps.Transition(ctx, repository.SwapTransitionParams{
		SwapID:  swapID,
		From:    []string{models.SwapStatusPending},
		To:      models.SwapStatusRejected,
		ActorID: adminID,
		Reason:  &reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapNotFound):
			return nil, apperror.ErrSwapNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "обмен уже обработан")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить обмен")
	}

	logger.Log.WithField("swap_id", swapID).WithField("admin_id", adminID).Info("moderation: swap rejected")
	payload := map[string]interface{}{"swap_id": swap.ID, "reason": reason}
	s.notifier.NotifyAsync(swap.InitiatorID, "swap_rejected_by_moderation", payload)
	s.notifier.NotifyAsync(swap.RecipientID, "swap_rejected_by_moderation", payload)

	return swap, nil
}

func (s *ModerationService) translateItemErr(err error, conflictMessage string) error {
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		return apperror.ErrItemNotFound
	case errors.Is(err, repository.ErrStatusConflict):
		return apperror.New(apperror.ErrCodeInvalidState, conflictMessage)
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить вещь")
}
