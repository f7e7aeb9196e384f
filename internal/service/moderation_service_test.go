package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
)

type moderationFixture struct {
	s        *state
	service  *ModerationService
	notifier *fakeNotifier

	admin uuid.UUID
	owner uuid.UUID
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()

	s := newState()
	items := &fakeItemRepo{s: s}
	swaps := &fakeSwapRepo{s: s, items: items}
	notifier := &fakeNotifier{}

	return &moderationFixture{
		s:        s,
		service:  NewModerationService(items, swaps, notifier),
		notifier: notifier,
		admin:    uuid.New(),
		owner:    uuid.New(),
	}
}

func TestApproveItem_Success(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusPending)

	approved, err := f.service.ApproveItem(context.Background(), item.ID, f.admin)
	require.NoError(t, err)

	assert.Equal(t, models.ItemStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.admin, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.True(t, f.notifier.has("item_approved"))
}

func TestApproveItem_FlaggedReturnsToCatalogue(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusFlagged)

	approved, err := f.service.ApproveItem(context.Background(), item.ID, f.admin)
	require.NoError(t, err)

	assert.Equal(t, models.ItemStatusApproved, approved.Status)
}

// Два администратора рассматривают одну вещь: побеждает первый,
// второе решение не перезаписывает первое.
func TestApproveItem_AlreadyDecided(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusPending)

	_, err := f.service.ApproveItem(context.Background(), item.ID, f.admin)
	require.NoError(t, err)

	_, err = f.service.RejectItem(context.Background(), item.ID, uuid.New(), "спорное описание")
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
	assert.Equal(t, models.ItemStatusApproved, f.s.itemStatus(item.ID))
}

func TestRejectItem_RequiresReason(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusPending)

	_, err := f.service.RejectItem(context.Background(), item.ID, f.admin, "")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeValidation, apperror.CodeOf(err))
	assert.Equal(t, models.ItemStatusPending, f.s.itemStatus(item.ID))
}

func TestRejectItem_Success(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusPending)

	rejected, err := f.service.RejectItem(context.Background(), item.ID, f.admin, "фото не соответствует описанию")
	require.NoError(t, err)

	assert.Equal(t, models.ItemStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectReason)
	assert.Equal(t, "фото не соответствует описанию", *rejected.RejectReason)
	assert.True(t, f.notifier.has("item_rejected"))
}

func TestFlagItem_Success(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusApproved)

	flagged, err := f.service.FlagItem(context.Background(), item.ID, f.admin, "жалоба пользователя")
	require.NoError(t, err)

	assert.Equal(t, models.ItemStatusFlagged, flagged.Status)
	require.NotNil(t, flagged.FlaggedBy)
	assert.Equal(t, f.admin, *flagged.FlaggedBy)
	assert.True(t, f.notifier.has("item_flagged"))
}

// Зарезервированную вещь пометить нельзя: она уже в принятом обмене.
func TestFlagItem_ReservedItem(t *testing.T) {
	f := newModerationFixture(t)
	item := f.s.addItem(f.owner, models.ItemStatusPendingSwap)

	_, err := f.service.FlagItem(context.Background(), item.ID, f.admin, "жалоба")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
}

func TestApproveSwap_StampsAudit(t *testing.T) {
	f := newModerationFixture(t)
	initiator, recipient := uuid.New(), uuid.New()
	itemA := f.s.addItem(initiator, models.ItemStatusApproved)
	itemB := f.s.addItem(recipient, models.ItemStatusApproved)
	swap := f.s.addSwap(initiator, recipient, itemA.ID, itemB.ID, models.SwapStatusPending)

	approved, err := f.service.ApproveSwap(context.Background(), swap.ID, f.admin)
	require.NoError(t, err)

	// Отметка не меняет статус: обмен остаётся ожидающим решения сторон.
	assert.Equal(t, models.SwapStatusPending, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.admin, *approved.ApprovedBy)
}

func TestRejectSwap_Success(t *testing.T) {
	f := newModerationFixture(t)
	initiator, recipient := uuid.New(), uuid.New()
	itemA := f.s.addItem(initiator, models.ItemStatusApproved)
	itemB := f.s.addItem(recipient, models.ItemStatusApproved)
	swap := f.s.addSwap(initiator, recipient, itemA.ID, itemB.ID, models.SwapStatusPending)

	rejected, err := f.service.RejectSwap(context.Background(), swap.ID, f.admin, "подозрение на мошенничество")
	require.NoError(t, err)

	assert.Equal(t, models.SwapStatusRejected, rejected.Status)
	// Вещи не были зарезервированы и остаются в каталоге.
	assert.Equal(t, models.ItemStatusApproved, f.s.itemStatus(itemA.ID))
	assert.Equal(t, models.ItemStatusApproved, f.s.itemStatus(itemB.ID))
	assert.True(t, f.notifier.has("swap_rejected_by_moderation"))
}

func TestRejectSwap_AcceptedSwapUntouchable(t *testing.T) {
	f := newModerationFixture(t)
	initiator, recipient := uuid.New(), uuid.New()
	itemA := f.s.addItem(initiator, models.ItemStatusPendingSwap)
	itemB := f.s.addItem(recipient, models.ItemStatusPendingSwap)
	swap := f.s.addSwap(initiator, recipient, itemA.ID, itemB.ID, models.SwapStatusAccepted)

	_, err := f.service.RejectSwap(context.Background(), swap.ID, f.admin, "причина")

	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeInvalidState, apperror.CodeOf(err))
	assert.Equal(t, models.SwapStatusAccepted, f.s.swapStatus(swap.ID))
}

func TestModeration_NotFound(t *testing.T) {
	f := newModerationFixture(t)

	_, err := f.service.ApproveItem(context.Background(), uuid.New(), f.admin)
	assert.Equal(t, apperror.ErrCodeNotFound, apperror.CodeOf(err))

	_, err = f.service.ApproveSwap(context.Background(), uuid.New(), f.admin)
	assert.Equal(t, apperror.ErrCodeNotFound, apperror.CodeOf(err))
}
