package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/evseenkov/swapwear-backend/internal/logger"
	"github.com/evseenkov/swapwear-backend/internal/models"
	"github.com/evseenkov/swapwear-backend/internal/pkg/apperror"
	"github.com/evseenkov/swapwear-backend/internal/repository"
)

// SeedService наполняет базу тестовыми данными. Доступен только в development.
type SeedService struct {
	users AuthUserRepository
	items ItemRepo
}

// NewSeedService создаёт новый экземпляр.
func NewSeedService(users AuthUserRepository, items ItemRepo) *SeedService {
	return &SeedService{users: users, items: items}
}

type seedUser struct {
	email    string
	username string
	role     string
	items    []seedItem
}

type seedItem struct {
	title       string
	description string
	category    string
	size        string
	condition   string
	approve     bool
}

// Run создаёт фиксированный набор пользователей и вещей.
// Пароль у всех одинаковый: password123.
func (s *SeedService) Run(ctx context.Context) error {
	fixtures := []seedUser{
		{
			email: "admin@swapwear.local", username: "admin", role: models.RoleAdmin,
		},
		{
			email: "alice@swapwear.local", username: "alice", role: models.RoleUser,
			items: []seedItem{
				{"Джинсовая куртка Levi's", "Классическая джинсовая куртка, почти не носилась", "куртки", "M", "отличное", true},
				{"Платье в горошек", "Летнее платье, требуется мелкий ремонт молнии", "платья", "S", "хорошее", false},
			},
		},
		{
			email: "bob@swapwear.local", username: "bob", role: models.RoleUser,
			items: []seedItem{
				{"Кожаные ботинки", "Осенние ботинки, один сезон носки", "обувь", "43", "хорошее", true},
			},
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подготовить пароль")
	}

	for _, fu := range fixtures {
		exists, err := s.users.ExistsByEmailOrUsername(ctx, fu.email, fu.username)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить пользователя")
		}
		if exists {
			continue
		}

		user := &models.User{
			Email:        fu.email,
			Username:     fu.username,
			PasswordHash: string(hash),
			Role:         fu.role,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, fmt.Sprintf("не удалось создать пользователя %s", fu.username))
		}

		for _, fi := range fu.items {
			item := &models.Item{
				OwnerID:     user.ID,
				Title:       fi.title,
				Description: fi.description,
				Category:    fi.category,
				Size:        fi.size,
				Condition:   fi.condition,
				ImageRefs:   []string{fmt.Sprintf("seed/%s.jpg", fu.username)},
			}
			if err := s.items.Create(ctx, item); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать вещь")
			}
			if fi.approve {
				if _, err := s.items.Transition(ctx, repository.TransitionParams{
					ItemID:  item.ID,
					From:    []string{models.ItemStatusPending},
					To:      models.ItemStatusApproved,
					ActorID: user.ID,
				}); err != nil {
					return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось одобрить вещь")
				}
			}
		}

		logger.Log.WithField("username", fu.username).Info("seed: user created")
	}

	return nil
}
