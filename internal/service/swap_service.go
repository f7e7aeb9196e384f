package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/logger"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/repository"
	"github.com/evseenkov/swapwear-backend/internal/validation"
)

// SwapRepo описывает хранилище обменов, необходимое сервису.
type SwapRepo interface {
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error)
	FindActiveByItemPair(ctx context.Context, itemA, itemB uuid.UUID) (*models.Swap, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Swap, error)
	Transition(ctx context.Context, p repository.SwapTransitionParams) (*models.Swap, error)
	Accept(ctx context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error)
	Complete(ctx context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error)
	CountByStatusForUser(ctx context.Context, userID uuid.UUID) (map[string]int, error)
	AddMessage(ctx context.Context, msg *models.SwapMessage) error
	ListMessages(ctx context.Context, swapID uuid.UUID) ([]models.SwapMessage, error)
}

// SwapItemRepo описывает операции над вещами, нужные движку обменов.
type SwapItemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Release(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error)
}

// SwapService реализует переговоры об обмене: предложение, принятие,
// отклонение, отмена и завершение. Все переходы статусов условные,
// при одновременных операциях выигрывает первая записавшая сторона.
type SwapService struct {
	swaps    SwapRepo
	items    SwapItemRepo
	notifier Notifier
}

// NewSwapService создаёт новый экземпляр.
func NewSwapService(swaps SwapRepo, items SwapItemRepo, notifier Notifier) *SwapService {
	return &SwapService{swaps: swaps, items: items, notifier: notifier}
}

// Propose создаёт предложение обмена. Вещи не резервируются:
// до принятия обе стороны свободны получать другие предложения.
//
// Проверки идут в фиксированном порядке: доступность вещи получателя,
// затем запрет обмена с собой, затем валидность встречной вещи,
// затем отсутствие активного дубля той же пары.
func (s *SwapService) Propose(ctx context.Context, initiatorID uuid.UUID, req dto.CreateSwapRequest) (*models.Swap, error) {
	recipientItemID, err := uuid.Parse(req.RecipientItemID)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор вещи получателя")
	}
	initiatorItemID, err := uuid.Parse(req.InitiatorItemID)
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор встречной вещи")
	}

	recipientItem, err := s.items.GetByID(ctx, recipientItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemUnavailable
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещь")
	}
	if !recipientItem.IsOfferable() {
		return nil, apperror.ErrItemUnavailable
	}

	if req.RecipientUserID != "" {
		recipientUserID, err := uuid.Parse(req.RecipientUserID)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "некорректный идентификатор получателя")
		}
		if recipientUserID != recipientItem.OwnerID {
			return nil, apperror.New(apperror.ErrCodeValidation, "вещь не принадлежит указанному получателю")
		}
	}

	if recipientItem.OwnerID == initiatorID {
		return nil, apperror.ErrSelfSwap
	}

	initiatorItem, err := s.items.GetByID(ctx, initiatorItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrInvalidOffer
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещь")
	}
	if !initiatorItem.IsOwnedBy(initiatorID) || !initiatorItem.IsOfferable() {
		return nil, apperror.ErrInvalidOffer
	}

	if _, err := s.swaps.FindActiveByItemPair(ctx, initiatorItemID, recipientItemID); err == nil {
		return nil, apperror.ErrDuplicateRequest
	} else if !errors.Is(err, repository.ErrSwapNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить дубликаты")
	}

	swap := &models.Swap{
		InitiatorID:     initiatorID,
		RecipientID:     recipientItem.OwnerID,
		InitiatorItemID: initiatorItemID,
		RecipientItemID: recipientItemID,
	}
	if err := s.swaps.Create(ctx, swap); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать обмен")
	}

	logger.Log.WithField("swap_id", swap.ID).WithField("initiator_id", initiatorID).Info("swap: proposed")
	s.notifier.NotifyAsync(swap.RecipientID, "swap_proposed", map[string]interface{}{
		"swap_id":           swap.ID,
		"initiator_item_id": initiatorItemID,
		"recipient_item_id": recipientItemID,
	})

	swap.InitiatorItem = initiatorItem
	swap.RecipientItem = recipientItem
	return swap, nil
}

// Accept принимает предложение. Только получатель может принять, и только
// пока обмен в статусе pending. Обмен и обе вещи переводятся атомарно:
// если любая из вещей уже ушла в другой обмен, ничего не меняется.
func (s *SwapService) Accept(ctx context.Context, swapID, actorID uuid.UUID) (*models.Swap, error) {
	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RecipientID != actorID {
		return nil, apperror.ErrForbidden
	}
	if swap.Status != models.SwapStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "принять можно только ожидающий обмен")
	}

	accepted, err := s.swaps.Accept(ctx, swap, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemConflict):
			// Вещь успел зарезервировать другой обмен: проигранная гонка.
			return nil, apperror.ErrConflict
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "обмен уже обработан другой стороной")
		case errors.Is(err, repository.ErrSwapNotFound):
			return nil, apperror.ErrSwapNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять обмен")
	}

	logger.Log.WithField("swap_id", swapID).WithField("actor_id", actorID).Info("swap: accepted")
	s.notifier.NotifyAsync(accepted.InitiatorID, "swap_accepted", map[string]interface{}{"swap_id": accepted.ID})

	return accepted, nil
}

// Reject отклоняет ожидающее предложение. Доступно только получателю.
// Вещи pending-обмена не зарезервированы, откатывать нечего.
func (s *SwapService) Reject(ctx context.Context, swapID, actorID uuid.UUID, reason string) (*models.Swap, error) {
	if err := validation.ValidateReason(reason, false); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RecipientID != actorID {
		return nil, apperror.ErrForbidden
	}

	rejected, err := s.swaps.Transition(ctx, repository.SwapTransitionParams{
		SwapID:  swapID,
		From:    []string{models.SwapStatusPending},
		To:      models.SwapStatusRejected,
		ActorID: actorID,
		Reason:  optionalReason(reason),
	})
	if err != nil {
		return nil, s.translateSwapErr(err, "отклонить можно только ожидающий обмен")
	}

	logger.Log.WithField("swap_id", swapID).WithField("actor_id", actorID).Info("swap: rejected")
	s.notifier.NotifyAsync(rejected.InitiatorID, "swap_rejected", map[string]interface{}{"swap_id": rejected.ID})

	return rejected, nil
}

// Cancel отменяет обмен. Доступно любой из сторон в статусах pending и accepted.
//
// Сначала пробуем перевести accepted -> cancelled, затем pending -> cancelled:
// решение принимается по фактическому статусу в момент записи, а не по
// прочитанному ранее снимку. Если отменён принятый обмен, обе вещи
// возвращаются в каталог независимыми переходами: неудача отката одной вещи
// (например, её успели удалить) логируется и не отменяет сам откат обмена.
func (s *SwapService) Cancel(ctx context.Context, swapID, actorID uuid.UUID, reason string) (*models.Swap, error) {
	if err := validation.ValidateReason(reason, false); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}

	wasAccepted := true
	cancelled, err := s.swaps.Transition(ctx, repository.SwapTransitionParams{
		SwapID:  swapID,
		From:    []string{models.SwapStatusAccepted},
		To:      models.SwapStatusCancelled,
		ActorID: actorID,
		Reason:  optionalReason(reason),
	})
	if errors.Is(err, repository.ErrStatusConflict) {
		wasAccepted = false
		cancelled, err = s.swaps.Transition(ctx, repository.SwapTransitionParams{
			SwapID:  swapID,
			From:    []string{models.SwapStatusPending},
			To:      models.SwapStatusCancelled,
			ActorID: actorID,
			Reason:  optionalReason(reason),
		})
	}
	if err != nil {
		return nil, s.translateSwapErr(err, "обмен уже находится в конечном статусе")
	}

	if wasAccepted {
		s.releaseItems(ctx, cancelled)
	}

	logger.Log.WithField("swap_id", swapID).WithField("actor_id", actorID).Info("swap: cancelled")

	other := cancelled.InitiatorID
	if actorID == cancelled.InitiatorID {
		other = cancelled.RecipientID
	}
	s.notifier.NotifyAsync(other, "swap_cancelled", map[string]interface{}{"swap_id": cancelled.ID})

	return cancelled, nil
}

// releaseItems возвращает вещи отменённого принятого обмена в каталог.
// Каждый откат независим: вещь могла быть удалена или уже возвращена.
func (s *SwapService) releaseItems(ctx context.Context, swap *models.Swap) {
	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		if _, err := s.items.Release(ctx, itemID); err != nil {
			logger.Log.WithError(err).
				WithField("swap_id", swap.ID).
				WithField("item_id", itemID).
				Error("swap: failed to release item after cancel")
		}
	}
}

// Complete фиксирует состоявшийся обмен. Доступно любой из сторон
// в статусе accepted. Обмен, обе вещи и счётчики сторон обновляются атомарно.
func (s *SwapService) Complete(ctx context.Context, swapID, actorID uuid.UUID) (*models.Swap, error) {
	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}
	if swap.Status != models.SwapStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "завершить можно только принятый обмен")
	}

	completed, err := s.swaps.Complete(ctx, swap, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrItemConflict):
			return nil, apperror.ErrConflict
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "обмен уже обработан другой стороной")
		case errors.Is(err, repository.ErrSwapNotFound):
			return nil, apperror.ErrSwapNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось завершить обмен")
	}

	logger.Log.WithField("swap_id", swapID).WithField("actor_id", actorID).Info("swap: completed")

	other := completed.InitiatorID
	if actorID == completed.InitiatorID {
		other = completed.RecipientID
	}
	s.notifier.NotifyAsync(other, "swap_completed", map[string]interface{}{"swap_id": completed.ID})

	return completed, nil
}

// GetByID возвращает обмен с подгруженными вещами.
// Доступно сторонам обмена и администратору.
func (s *SwapService) GetByID(ctx context.Context, swapID, viewerID uuid.UUID, viewerRole string) (*models.Swap, error) {
	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(viewerID) && viewerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	return s.loadSwapItems(ctx, swap)
}

// ListMine возвращает все обмены пользователя с подгруженными вещами.
func (s *SwapService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Swap, error) {
	swaps, err := s.swaps.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить обмены")
	}

	if err := s.attachItems(ctx, swaps); err != nil {
		return nil, err
	}
	return swaps, nil
}

// SendMessage добавляет сообщение в переписку активного обмена.
func (s *SwapService) SendMessage(ctx context.Context, swapID, authorID uuid.UUID, content string) (*models.SwapMessage, error) {
	if err := validation.ValidateLength("сообщение", content, validation.MinMessageLength, validation.MaxMessageLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(authorID) {
		return nil, apperror.ErrForbidden
	}
	if swap.IsTerminal() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "переписка по завершённому обмену закрыта")
	}

	msg := &models.SwapMessage{
		SwapID:   swapID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.swaps.AddMessage(ctx, msg); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отправить сообщение")
	}

	other := swap.InitiatorID
	if authorID == swap.InitiatorID {
		other = swap.RecipientID
	}
	s.notifier.NotifyAsync(other, "swap_message", map[string]interface{}{"swap_id": swapID})

	return msg, nil
}

// ListMessages возвращает переписку обмена. Доступно сторонам и администратору.
func (s *SwapService) ListMessages(ctx context.Context, swapID, viewerID uuid.UUID, viewerRole string) ([]models.SwapMessage, error) {
	swap, err := s.loadSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(viewerID) && viewerRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	messages, err := s.swaps.ListMessages(ctx, swapID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить сообщения")
	}
	return messages, nil
}

func (s *SwapService) loadSwap(ctx context.Context, swapID uuid.UUID) (*models.Swap, error) {
	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return nil, apperror.ErrSwapNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить обмен")
	}
	return swap, nil
}

func (s *SwapService) loadSwapItems(ctx context.Context, swap *models.Swap) (*models.Swap, error) {
	byID, err := s.items.ListByIDs(ctx, []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещи обмена")
	}
	swap.InitiatorItem = byID[swap.InitiatorItemID]
	swap.RecipientItem = byID[swap.RecipientItemID]
	return swap, nil
}

func (s *SwapService) attachItems(ctx context.Context, swaps []models.Swap) error {
	if len(swaps) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(swaps)*2)
	for i := range swaps {
		ids = append(ids, swaps[i].InitiatorItemID, swaps[i].RecipientItemID)
	}

	byID, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещи обменов")
	}

	for i := range swaps {
		swaps[i].InitiatorItem = byID[swaps[i].InitiatorItemID]
		swaps[i].RecipientItem = byID[swaps[i].RecipientItemID]
	}
	return nil
}

func (s *SwapService) translateSwapErr(err error, conflictMessage string) error {
	switch {
	case errors.Is(err, repository.ErrSwapNotFound):
		return apperror.ErrSwapNotFound
	case errors.Is(err, repository.ErrStatusConflict):
		return apperror.New(apperror.ErrCodeInvalidState, conflictMessage)
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить обмен")
}

func optionalReason(reason string) *string {
	if reason == "" {
		return nil
	}
	return &reason
}
