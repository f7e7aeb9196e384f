package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
)

func newItemService() (*ItemService, *state) {
	s := newState()
	return NewItemService(&fakeItemRepo{s: s}), s
}

func validItemRequest() dto.CreateItemRequest {
	return dto.CreateItemRequest{
		Title:       "Джинсовая куртка",
		Description: "Классическая куртка, почти не носилась",
		Category:    "куртки",
		Size:        "M",
		Condition:   "отличное",
		ImageRefs:   []string{"items/jacket.jpg"},
	}
}

func TestItemCreate_StartsPending(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()

	item, err := svc.Create(context.Background(), owner, validItemRequest())
	require.NoError(t, err)

	assert.Equal(t, models.ItemStatusPending, item.Status)
	assert.Equal(t, owner, item.OwnerID)
	assert.Equal(t, models.ItemStatusPending, s.itemStatus(item.ID))
}

func TestItemCreate_RequiresImage(t *testing.T) {
	svc, _ := newItemService()

	req := validItemRequest()
	req.ImageRefs = nil

	_, err := svc.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
}

func TestItemGet_Visibility(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	pending := s.addItem(owner, models.ItemStatusPending)

	// Владелец видит свою вещь до модерации.
	_, err := svc.GetByID(context.Background(), pending.ID, owner, models.RoleUser)
	assert.NoError(t, err)

	// Администратор тоже.
	_, err = svc.GetByID(context.Background(), pending.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)

	// Для всех остальных вещи как будто нет.
	_, err = svc.GetByID(context.Background(), pending.ID, uuid.New(), models.RoleUser)
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeNotFound, apperror.CodeOf(err))
}

func TestItemList_OnlyOfferable(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	s.addItem(owner, models.ItemStatusApproved)
	s.addItem(owner, models.ItemStatusPending)
	s.addItem(owner, models.ItemStatusRejected)
	s.addItem(owner, models.ItemStatusPendingSwap)

	resp, err := svc.List(context.Background(), CatalogueParams{})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, models.ItemStatusApproved, resp.Items[0].Status)
}

func TestItemUpdate_OwnerOnly(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	item := s.addItem(owner, models.ItemStatusApproved)

	req := dto.UpdateItemRequest(validItemRequest())
	_, err := svc.Update(context.Background(), item.ID, uuid.New(), req)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeForbidden, apperror.CodeOf(err))
}

func TestItemUpdate_ReservedItemLocked(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	item := s.addItem(owner, models.ItemStatusPendingSwap)

	req := dto.UpdateItemRequest(validItemRequest())
	_, err := svc.Update(context.Background(), item.ID, owner, req)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
}

func TestItemDelete_Success(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	item := s.addItem(owner, models.ItemStatusApproved)

	require.NoError(t, svc.Delete(context.Background(), item.ID, owner))
	assert.Equal(t, models.ItemStatusRemoved, s.itemStatus(item.ID))
}

func TestItemDelete_ReservedItemLocked(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	item := s.addItem(owner, models.ItemStatusPendingSwap)

	err := svc.Delete(context.Background(), item.ID, owner)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
	assert.Equal(t, models.ItemStatusPendingSwap, s.itemStatus(item.ID))
}

func TestItemDelete_SwappedItemLocked(t *testing.T) {
	svc, s := newItemService()
	owner := uuid.New()
	item := s.addItem(owner, models.ItemStatusSwapped)

	err := svc.Delete(context.Background(), item.ID, owner)

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
}
