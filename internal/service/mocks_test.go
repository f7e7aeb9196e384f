package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/repository"
)

// state общее in-memory хранилище для моков. Переходы статусов повторяют
// условную семантику репозиториев: обновление проходит только из
// ожидаемого статуса, всё остальное — конфликт.
type state struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*models.Item
	swaps    map[uuid.UUID]*models.Swap
	messages map[uuid.UUID][]models.SwapMessage
}

func newState() *state {
	return &state{
		items:    make(map[uuid.UUID]*models.Item),
		swaps:    make(map[uuid.UUID]*models.Swap),
		messages: make(map[uuid.UUID][]models.SwapMessage),
	}
}

func (s *state) addItem(ownerID uuid.UUID, status string) *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       "Тестовая вещь",
		Description: "Описание тестовой вещи",
		Category:    "куртки",
		Size:        "M",
		Condition:   "хорошее",
		ImageRefs:   []string{"test/item.jpg"},
		Status:      status,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.items[item.ID] = item
	return copyItem(item)
}

func (s *state) addSwap(initiatorID, recipientID, initiatorItemID, recipientItemID uuid.UUID, status string) *models.Swap {
	s.mu.Lock()
	defer s.mu.Unlock()

	swap := &models.Swap{
		ID:              uuid.New(),
		InitiatorID:     initiatorID,
		RecipientID:     recipientID,
		InitiatorItemID: initiatorItemID,
		RecipientItemID: recipientItemID,
		Status:          status,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	s.swaps[swap.ID] = swap
	return copySwap(swap)
}

func (s *state) itemStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[id]; ok {
		return item.Status
	}
	return ""
}

func (s *state) swapStatus(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if swap, ok := s.swaps[id]; ok {
		return swap.Status
	}
	return ""
}

func copyItem(item *models.Item) *models.Item {
	c := *item
	return &c
}

func copySwap(swap *models.Swap) *models.Swap {
	c := *swap
	return &c
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// fakeItemRepo реализует ItemRepo и SwapItemRepo поверх state.
type fakeItemRepo struct {
	s *state
}

func (f *fakeItemRepo) Create(_ context.Context, item *models.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	item.ID = uuid.New()
	item.Status = models.ItemStatusPending
	item.IsActive = true
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	f.s.items[item.ID] = copyItem(item)
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	item, ok := f.s.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return copyItem(item), nil
}

func (f *fakeItemRepo) Transition(_ context.Context, p repository.TransitionParams) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.transitionLocked(p)
}

func (f *fakeItemRepo) transitionLocked(p repository.TransitionParams) (*models.Item, error) {
	item, ok := f.s.items[p.ItemID]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	if !statusIn(item.Status, p.From) {
		return nil, repository.ErrStatusConflict
	}

	item.Status = p.To
	item.UpdatedAt = time.Now()
	now := time.Now()
	switch p.To {
	case models.ItemStatusApproved:
		item.ApprovedBy = &p.ActorID
		item.ApprovedAt = &now
	case models.ItemStatusRejected:
		item.RejectedBy = &p.ActorID
		item.RejectedAt = &now
		item.RejectReason = p.Reason
	case models.ItemStatusFlagged:
		item.FlaggedBy = &p.ActorID
		item.FlaggedAt = &now
		item.FlagReason = p.Reason
	case models.ItemStatusRemoved:
		item.IsActive = false
	}

	return copyItem(item), nil
}

func (f *fakeItemRepo) UpdateDetails(_ context.Context, item *models.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	stored, ok := f.s.items[item.ID]
	if !ok {
		return repository.ErrItemNotFound
	}
	if stored.OwnerID != item.OwnerID || !statusIn(stored.Status, models.SoftDeletableItemStatuses) {
		return repository.ErrStatusConflict
	}

	stored.Title = item.Title
	stored.Description = item.Description
	stored.Category = item.Category
	stored.Size = item.Size
	stored.Condition = item.Condition
	stored.ImageRefs = item.ImageRefs
	stored.UpdatedAt = time.Now()
	*item = *copyItem(stored)
	return nil
}

func (f *fakeItemRepo) Release(_ context.Context, itemID uuid.UUID) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	item, ok := f.s.items[itemID]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	if item.Status != models.ItemStatusPendingSwap {
		return nil, repository.ErrStatusConflict
	}
	item.Status = models.ItemStatusApproved
	item.UpdatedAt = time.Now()
	return copyItem(item), nil
}

func (f *fakeItemRepo) ListByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	byID := make(map[uuid.UUID]*models.Item, len(ids))
	for _, id := range ids {
		if item, ok := f.s.items[id]; ok {
			byID[id] = copyItem(item)
		}
	}
	return byID, nil
}

func (f *fakeItemRepo) List(_ context.Context, params repository.ItemListParams) (*repository.ItemListResult, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Item
	for _, item := range f.s.items {
		if len(params.Statuses) > 0 && !statusIn(item.Status, params.Statuses) {
			continue
		}
		if params.Category != "" && item.Category != params.Category {
			continue
		}
		if params.Search != "" && !strings.Contains(item.Title, params.Search) {
			continue
		}
		items = append(items, *copyItem(item))
	}
	return &repository.ItemListResult{Items: items, Total: len(items)}, nil
}

func (f *fakeItemRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Item
	for _, item := range f.s.items {
		if item.OwnerID == ownerID {
			items = append(items, *copyItem(item))
		}
	}
	return items, nil
}

func (f *fakeItemRepo) CountByStatusForOwner(_ context.Context, ownerID uuid.UUID) (map[string]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	counts := make(map[string]int)
	for _, item := range f.s.items {
		if item.OwnerID == ownerID {
			counts[item.Status]++
		}
	}
	return counts, nil
}

// fakeSwapRepo реализует SwapRepo и ModerationSwapRepo поверх state.
// Многошаговые операции выполняются под общим мьютексом целиком,
// как репозиторий выполняет их в одной транзакции.
type fakeSwapRepo struct {
	s     *state
	items *fakeItemRepo
}

func (f *fakeSwapRepo) Create(_ context.Context, swap *models.Swap) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	swap.ID = uuid.New()
	swap.Status = models.SwapStatusPending
	swap.CreatedAt = time.Now()
	swap.UpdatedAt = time.Now()
	stored := copySwap(swap)
	stored.InitiatorItem = nil
	stored.RecipientItem = nil
	f.s.swaps[swap.ID] = stored
	return nil
}

func (f *fakeSwapRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	swap, ok := f.s.swaps[id]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	return copySwap(swap), nil
}

func (f *fakeSwapRepo) FindActiveByItemPair(_ context.Context, itemA, itemB uuid.UUID) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, swap := range f.s.swaps {
		if swap.Status != models.SwapStatusPending && swap.Status != models.SwapStatusAccepted {
			continue
		}
		direct := swap.InitiatorItemID == itemA && swap.RecipientItemID == itemB
		reverse := swap.InitiatorItemID == itemB && swap.RecipientItemID == itemA
		if direct || reverse {
			return copySwap(swap), nil
		}
	}
	return nil, repository.ErrSwapNotFound
}

func (f *fakeSwapRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var swaps []models.Swap
	for _, swap := range f.s.swaps {
		if swap.InitiatorID == userID || swap.RecipientID == userID {
			swaps = append(swaps, *copySwap(swap))
		}
	}
	return swaps, nil
}

func (f *fakeSwapRepo) Transition(_ context.Context, p repository.SwapTransitionParams) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.transitionLocked(p)
}

func (f *fakeSwapRepo) transitionLocked(p repository.SwapTransitionParams) (*models.Swap, error) {
	swap, ok := f.s.swaps[p.SwapID]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	if !statusIn(swap.Status, p.From) {
		return nil, repository.ErrStatusConflict
	}

	swap.Status = p.To
	swap.UpdatedAt = time.Now()
	now := time.Now()
	switch p.To {
	case models.SwapStatusCompleted:
		swap.CompletedAt = &now
	case models.SwapStatusCancelled:
		swap.CancelledBy = &p.ActorID
		swap.CancelledAt = &now
		swap.CancelReason = p.Reason
	case models.SwapStatusRejected:
		swap.RejectedBy = &p.ActorID
		swap.RejectedAt = &now
		swap.RejectReason = p.Reason
	}

	return copySwap(swap), nil
}

func (f *fakeSwapRepo) Accept(_ context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	stored, ok := f.s.swaps[swap.ID]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	if stored.Status != models.SwapStatusPending {
		return nil, repository.ErrStatusConflict
	}
	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		item, ok := f.s.items[itemID]
		if !ok {
			return nil, repository.ErrItemNotFound
		}
		if !statusIn(item.Status, models.OfferableItemStatuses) {
			return nil, fmt.Errorf("fake accept: %w", repository.ErrItemConflict)
		}
	}

	stored.Status = models.SwapStatusAccepted
	stored.UpdatedAt = time.Now()
	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		f.s.items[itemID].Status = models.ItemStatusPendingSwap
	}

	return copySwap(stored), nil
}

func (f *fakeSwapRepo) Complete(_ context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	stored, ok := f.s.swaps[swap.ID]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	if stored.Status != models.SwapStatusAccepted {
		return nil, repository.ErrStatusConflict
	}
	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		item, ok := f.s.items[itemID]
		if !ok {
			return nil, repository.ErrItemNotFound
		}
		if item.Status != models.ItemStatusPendingSwap {
			return nil, fmt.Errorf("fake complete: %w", repository.ErrItemConflict)
		}
	}

	now := time.Now()
	stored.Status = models.SwapStatusCompleted
	stored.CompletedAt = &now
	stored.UpdatedAt = now
	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		f.s.items[itemID].Status = models.ItemStatusSwapped
	}

	return copySwap(stored), nil
}

func (f *fakeSwapRepo) Approve(_ context.Context, swapID, adminID uuid.UUID) (*models.Swap, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	swap, ok := f.s.swaps[swapID]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	if swap.Status != models.SwapStatusPending {
		return nil, repository.ErrStatusConflict
	}

	now := time.Now()
	swap.ApprovedBy = &adminID
	swap.ApprovedAt = &now
	swap.UpdatedAt = now
	return copySwap(swap), nil
}

func (f *fakeSwapRepo) CountByStatusForUser(_ context.Context, userID uuid.UUID) (map[string]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	counts := make(map[string]int)
	for _, swap := range f.s.swaps {
		if swap.InitiatorID == userID || swap.RecipientID == userID {
			counts[swap.Status]++
		}
	}
	return counts, nil
}

func (f *fakeSwapRepo) AddMessage(_ context.Context, msg *models.SwapMessage) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	f.s.messages[msg.SwapID] = append(f.s.messages[msg.SwapID], *msg)
	return nil
}

func (f *fakeSwapRepo) ListMessages(_ context.Context, swapID uuid.UUID) ([]models.SwapMessage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]models.SwapMessage(nil), f.s.messages[swapID]...), nil
}

// fakeNotifier накапливает события синхронно, чтобы тесты могли их проверить.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) NotifyAsync(userID uuid.UUID, event string, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) has(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == event {
			return true
		}
	}
	return false
}
