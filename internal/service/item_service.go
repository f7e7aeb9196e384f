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

// ItemRepo описывает хранилище вещей, необходимое сервису.
type ItemRepo interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Transition(ctx context.Context, p repository.TransitionParams) (*models.Item, error)
	UpdateDetails(ctx context.Context, item *models.Item) error
	List(ctx context.Context, params repository.ItemListParams) (*repository.ItemListResult, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
	CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
}

// ItemService отвечает за жизненный цикл вещей со стороны владельца:
// создание, каталог, редактирование и снятие с обмена.
type ItemService struct {
	items ItemRepo
}

// NewItemService создаёт новый экземпляр.
func NewItemService(items ItemRepo) *ItemService {
	return &ItemService{items: items}
}

// Create публикует новую вещь. Вещь попадает в очередь модерации
// и становится доступной для обмена только после одобрения.
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateItemRequest) (*models.Item, error) {
	if err := validation.ValidateItemFields(req.Title, req.Description, req.Category, req.Size, req.Condition, req.ImageRefs); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		ImageRefs:   req.ImageRefs,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать вещь")
	}

	logger.Log.WithField("item_id", item.ID).WithField("owner_id", ownerID).Info("item: created")

	return item, nil
}

// GetByID возвращает вещь. Не прошедшие модерацию и снятые вещи
// видны только владельцу и администратору.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID, viewerRole string) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещь")
	}

	if !s.isVisible(item, viewerID, viewerRole) {
		return nil, apperror.ErrItemNotFound
	}

	return item, nil
}

func (s *ItemService) isVisible(item *models.Item, viewerID uuid.UUID, viewerRole string) bool {
	if item.IsOwnedBy(viewerID) || viewerRole == models.RoleAdmin {
		return true
	}
	switch item.Status {
	case models.ItemStatusApproved, models.ItemStatusAvailable,
		models.ItemStatusPendingSwap, models.ItemStatusSwapped:
		return item.IsActive
	}
	return false
}

// CatalogueParams параметры публичного каталога.
type CatalogueParams struct {
	Category  string
	Size      string
	Condition string
	Search    string
	Limit     int
	Offset    int
}

// List возвращает публичный каталог: только вещи, доступные для обмена.
func (s *ItemService) List(ctx context.Context, params CatalogueParams) (*dto.ItemListResponse, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.items.List(ctx, repository.ItemListParams{
		Statuses:  models.OfferableItemStatuses,
		Category:  params.Category,
		Size:      params.Size,
		Condition: params.Condition,
		Search:    params.Search,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить каталог")
	}

	return &dto.ItemListResponse{
		Items:   result.Items,
		Total:   result.Total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+len(result.Items) < result.Total,
	}, nil
}

// ListMine возвращает все вещи владельца, включая непрошедшие модерацию.
func (s *ItemService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещи")
	}
	return items, nil
}

// Update изменяет описательные поля вещи. Редактирование зарезервированной
// (pending_swap) или обменённой вещи запрещено.
func (s *ItemService) Update(ctx context.Context, itemID, ownerID uuid.UUID, req dto.UpdateItemRequest) (*models.Item, error) {
	if err := validation.ValidateItemFields(req.Title, req.Description, req.Category, req.Size, req.Condition, req.ImageRefs); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	current, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещь")
	}
	if !current.IsOwnedBy(ownerID) {
		return nil, apperror.ErrForbidden
	}

	item := &models.Item{
		ID:          itemID,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		ImageRefs:   req.ImageRefs,
	}
	if err := s.items.UpdateDetails(ctx, item); err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return nil, apperror.ErrItemNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "вещь участвует в обмене и не может быть изменена")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить вещь")
	}

	return item, nil
}

// Delete снимает вещь с платформы (мягкое удаление).
// Вещь, зарезервированную активным обменом, удалить нельзя.
func (s *ItemService) Delete(ctx context.Context, itemID, ownerID uuid.UUID) error {
	current, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return apperror.ErrItemNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить вещь")
	}
	if !current.IsOwnedBy(ownerID) {
		return apperror.ErrForbidden
	}

	if _, err := s.items.Transition(ctx, repository.TransitionParams{
		ItemID:  itemID,
		From:    models.SoftDeletableItemStatuses,
		To:      models.ItemStatusRemoved,
		ActorID: ownerID,
	}); err != nil {
		switch {
		case errors.Is(err, repository.ErrItemNotFound):
			return apperror.ErrItemNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return apperror.New(apperror.ErrCodeInvalidState, "вещь участвует в обмене и не может быть удалена")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить вещь")
	}

	logger.Log.WithField("item_id", itemID).WithField("owner_id", ownerID).Info("item: removed by owner")

	return nil
}
