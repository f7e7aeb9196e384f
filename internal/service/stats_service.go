package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/evseenkov/swapwear-backend/internal/dto"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/repository"
)

// StatsUserRepo описывает хранилище пользователей, нужное статистике.
type StatsUserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// StatsSwapRepo описывает хранилище обменов, нужное статистике.
type StatsSwapRepo interface {
	CountByStatusForUser(ctx context.Context, userID uuid.UUID) (map[string]int, error)
}

// StatsItemRepo описывает хранилище вещей, нужное статистике.
type StatsItemRepo interface {
	CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]int, error)
}

// StatsService собирает агрегированную статистику пользователя.
type StatsService struct {
	users StatsUserRepo
	items StatsItemRepo
	swaps StatsSwapRepo
}

// NewStatsService создаёт новый экземпляр.
func NewStatsService(users StatsUserRepo, items StatsItemRepo, swaps StatsSwapRepo) *StatsService {
	return &StatsService{users: users, items: items, swaps: swaps}
}

// ForUser возвращает сводку по вещам и обменам пользователя.
func (s *StatsService) ForUser(ctx context.Context, userID uuid.UUID) (*dto.StatsResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить пользователя")
	}

	itemCounts, err := s.items.CountByStatusForOwner(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать вещи")
	}

	swapCounts, err := s.swaps.CountByStatusForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать обмены")
	}

	return &dto.StatsResponse{
		Items:        itemCounts,
		Swaps:        swapCounts,
		ItemsSwapped: user.ItemsSwapped,
		TotalSwaps:   user.TotalSwaps,
	}, nil
}
