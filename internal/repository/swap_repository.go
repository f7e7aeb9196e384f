package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/evseenkov/swapwear-backend/internal/models"
)

const swapColumns = `id, initiator_id, recipient_id, initiator_item_id, recipient_item_id, status,
	completed_at, cancelled_by, cancelled_at, cancel_reason,
	approved_by, approved_at, rejected_by, rejected_at, reject_reason,
	created_at, updated_at`

// SwapRepository отвечает за работу с обменами и их сообщениями.
// Многошаговые операции (принятие, завершение) выполняются в одной
// транзакции: либо применяются все условные обновления, либо ни одно.
type SwapRepository struct {
	db *sqlx.DB
}

// NewSwapRepository создаёт новый экземпляр.
func NewSwapRepository(db *sqlx.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

// Create сохраняет новое предложение обмена в статусе pending.
// Вещи при этом не затрагиваются: резервирование происходит при принятии.
func (r *SwapRepository) Create(ctx context.Context, swap *models.Swap) error {
	query := `
		INSERT INTO swaps (initiator_id, recipient_id, initiator_item_id, recipient_item_id, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + swapColumns

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		swap.InitiatorID,
		swap.RecipientID,
		swap.InitiatorItemID,
		swap.RecipientItemID,
	).StructScan(swap); err != nil {
		return fmt.Errorf("swap repository: create %w", err)
	}

	return nil
}

// GetByID возвращает обмен по идентификатору.
func (r *SwapRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	var swap models.Swap
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE id = $1`
	if err := r.db.GetContext(ctx, &swap, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("swap repository: get by id %w", err)
	}
	return &swap, nil
}

// FindActiveByItemPair ищет нетерминальный обмен той же пары вещей
// в любом направлении. Возвращает ErrSwapNotFound, если пары нет.
func (r *SwapRepository) FindActiveByItemPair(ctx context.Context, itemA, itemB uuid.UUID) (*models.Swap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swaps
		WHERE status IN ('pending', 'accepted')
		  AND ((initiator_item_id = $1 AND recipient_item_id = $2)
		    OR (initiator_item_id = $2 AND recipient_item_id = $1))
		LIMIT 1
	`

	var swap models.Swap
	if err := r.db.GetContext(ctx, &swap, query, itemA, itemB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSwapNotFound
		}
		return nil, fmt.Errorf("swap repository: find by item pair %w", err)
	}

	return &swap, nil
}

// CountActiveByItem возвращает число нетерминальных обменов с участием вещи.
func (r *SwapRepository) CountActiveByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM swaps
		WHERE status IN ('pending', 'accepted')
		  AND (initiator_item_id = $1 OR recipient_item_id = $1)
	`
	if err := r.db.GetContext(ctx, &count, query, itemID); err != nil {
		return 0, fmt.Errorf("swap repository: count active by item %w", err)
	}
	return count, nil
}

// ListByUser возвращает все обмены, где пользователь выступает любой стороной.
func (r *SwapRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Swap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swaps
		WHERE initiator_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
	`

	var swaps []models.Swap
	if err := r.db.SelectContext(ctx, &swaps, query, userID); err != nil {
		return nil, fmt.Errorf("swap repository: list by user %w", err)
	}

	return swaps, nil
}

// SwapTransitionParams описывает условный переход статуса обмена.
type SwapTransitionParams struct {
	SwapID  uuid.UUID
	From    []string
	To      string
	ActorID uuid.UUID
	Reason  *string
}

// Transition выполняет условное обновление статуса обмена (compare-and-swap).
// При несовпадении исходного статуса возвращает ErrStatusConflict.
func (r *SwapRepository) Transition(ctx context.Context, p SwapTransitionParams) (*models.Swap, error) {
	return transitionSwap(ctx, r.db, p)
}

func transitionSwap(ctx context.Context, ext sqlx.ExtContext, p SwapTransitionParams) (*models.Swap, error) {
	set := `status = $1::swap_status, updated_at = NOW()`
	args := []interface{}{p.To}
	argIndex := 2

	switch p.To {
	case models.SwapStatusCompleted:
		set += `, completed_at = NOW()`
	case models.SwapStatusCancelled:
		set += fmt.Sprintf(`, cancelled_by = $%d, cancelled_at = NOW(), cancel_reason = $%d`, argIndex, argIndex+1)
		args = append(args, p.ActorID, p.Reason)
		argIndex += 2
	case models.SwapStatusRejected:
		set += fmt.Sprintf(`, rejected_by = $%d, rejected_at = NOW(), reject_reason = $%d`, argIndex, argIndex+1)
		args = append(args, p.ActorID, p.Reason)
		argIndex += 2
	}

	query := fmt.Sprintf(`UPDATE swaps SET %s WHERE id = $%d AND status = ANY($%d) RETURNING %s`,
		set, argIndex, argIndex+1, swapColumns)
	args = append(args, p.SwapID, pq.Array(p.From))

	var swap models.Swap
	if err := sqlx.GetContext(ctx, ext, &swap, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifySwapMiss(ctx, ext, p.SwapID)
		}
		return nil, fmt.Errorf("swap repository: transition %w", err)
	}

	return &swap, nil
}

func classifySwapMiss(ctx context.Context, ext sqlx.ExtContext, swapID uuid.UUID) error {
	var exists bool
	if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS (SELECT 1 FROM swaps WHERE id = $1)`, swapID); err != nil {
		return fmt.Errorf("swap repository: classify miss %w", err)
	}
	if !exists {
		return ErrSwapNotFound
	}
	return ErrStatusConflict
}

// Accept атомарно переводит обмен pending -> accepted и резервирует обе вещи
// ({approved,available} -> pending_swap). Все три условных обновления идут в
// одной транзакции: проигрыш любой гонки откатывает всё, обмен остаётся
// pending, частичного резервирования не остаётся.
func (r *SwapRepository) Accept(ctx context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("swap repository: begin tx %w", err)
	}
	defer tx.Rollback()

	accepted, err := transitionSwap(ctx, tx, SwapTransitionParams{
		SwapID:  swap.ID,
		From:    []string{models.SwapStatusPending},
		To:      models.SwapStatusAccepted,
		ActorID: actorID,
	})
	if err != nil {
		return nil, err
	}

	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		if _, err := transitionItem(ctx, tx, TransitionParams{
			ItemID:  itemID,
			From:    models.OfferableItemStatuses,
			To:      models.ItemStatusPendingSwap,
			ActorID: actorID,
		}); err != nil {
			if errors.Is(err, ErrStatusConflict) {
				return nil, fmt.Errorf("swap repository: reserve item %s: %w", itemID, ErrItemConflict)
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("swap repository: accept commit %w", err)
	}

	return accepted, nil
}

// Complete атомарно переводит обмен accepted -> completed, обе вещи
// pending_swap -> swapped и увеличивает счётчики обеих сторон.
func (r *SwapRepository) Complete(ctx context.Context, swap *models.Swap, actorID uuid.UUID) (*models.Swap, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("swap repository: begin tx %w", err)
	}
	defer tx.Rollback()

	completed, err := transitionSwap(ctx, tx, SwapTransitionParams{
		SwapID:  swap.ID,
		From:    []string{models.SwapStatusAccepted},
		To:      models.SwapStatusCompleted,
		ActorID: actorID,
	})
	if err != nil {
		return nil, err
	}

	for _, itemID := range []uuid.UUID{swap.InitiatorItemID, swap.RecipientItemID} {
		if _, err := transitionItem(ctx, tx, TransitionParams{
			ItemID:  itemID,
			From:    []string{models.ItemStatusPendingSwap},
			To:      models.ItemStatusSwapped,
			ActorID: actorID,
		}); err != nil {
			if errors.Is(err, ErrStatusConflict) {
				return nil, fmt.Errorf("swap repository: finalize item %s: %w", itemID, ErrItemConflict)
			}
			return nil, err
		}
	}

	statsQuery := `
		UPDATE users
		SET items_swapped = items_swapped + 1,
		    total_swaps = total_swaps + 1,
		    updated_at = NOW()
		WHERE id = ANY($1)
	`
	if _, err := tx.ExecContext(ctx, statsQuery, pq.Array([]uuid.UUID{swap.InitiatorID, swap.RecipientID})); err != nil {
		return nil, fmt.Errorf("swap repository: update user stats %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("swap repository: complete commit %w", err)
	}

	return completed, nil
}

// Approve ставит отметку модерации на ожидающем обмене.
func (r *SwapRepository) Approve(ctx context.Context, swapID, adminID uuid.UUID) (*models.Swap, error) {
	query := `
		UPDATE swaps
		SET approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + swapColumns

	var swap models.Swap
	if err := r.db.QueryRowxContext(ctx, query, swapID, adminID).StructScan(&swap); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifySwapMiss(ctx, r.db, swapID)
		}
		return nil, fmt.Errorf("swap repository: approve %w", err)
	}

	return &swap, nil
}

// CountByStatusForUser возвращает количество обменов пользователя по статусам.
func (r *SwapRepository) CountByStatusForUser(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT status::text AS status, COUNT(*) AS count
		FROM swaps
		WHERE initiator_id = $1 OR recipient_id = $1
		GROUP BY status
	`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("swap repository: count by status %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("swap repository: scan count %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("swap repository: count rows %w", err)
	}

	return counts, nil
}

// AddMessage добавляет сообщение в переписку по обмену.
func (r *SwapRepository) AddMessage(ctx context.Context, msg *models.SwapMessage) error {
	query := `
		INSERT INTO swap_messages (swap_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		msg.SwapID,
		msg.AuthorID,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("swap repository: add message %w", err)
	}

	return nil
}

// ListMessages возвращает сообщения обмена в хронологическом порядке.
func (r *SwapRepository) ListMessages(ctx context.Context, swapID uuid.UUID) ([]models.SwapMessage, error) {
	query := `
		SELECT * FROM swap_messages
		WHERE swap_id = $1
		ORDER BY created_at ASC
	`

	var messages []models.SwapMessage
	if err := r.db.SelectContext(ctx, &messages, query, swapID); err != nil {
		return nil, fmt.Errorf("swap repository: list messages %w", err)
	}

	return messages, nil
}
