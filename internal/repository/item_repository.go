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

// Ошибки уровня репозитория.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrSwapNotFound = errors.New("swap not found")

	// ErrStatusConflict возвращается, когда условное обновление не прошло:
	// текущий статус записи не входит в ожидаемое множество (проигранная
	// гонка либо устаревшее представление вызывающей стороны).
	ErrStatusConflict = errors.New("status conflict")

	// ErrItemConflict возвращается из многошаговых операций над обменом,
	// когда конфликт случился на вещи, а не на самом обмене.
	ErrItemConflict = errors.New("item status conflict")
)

const itemColumns = `id, owner_id, title, description, category, size, condition, image_refs,
	status, is_active, approved_by, approved_at, rejected_by, rejected_at, reject_reason,
	flagged_by, flagged_at, flag_reason, created_at, updated_at`

// ItemRepository отвечает за работу с вещами.
// Статус вещи меняется исключительно через Transition.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository создаёт новый экземпляр.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create сохраняет новую вещь. Статус всегда pending, is_active всегда TRUE.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (owner_id, title, description, category, size, condition, image_refs, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', TRUE)
		RETURNING ` + itemColumns

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Category,
		item.Size,
		item.Condition,
		pq.Array([]string(item.ImageRefs)),
	).StructScan(item); err != nil {
		return fmt.Errorf("item repository: create %w", err)
	}

	return nil
}

// GetByID возвращает вещь по идентификатору.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item repository: get by id %w", err)
	}
	return &item, nil
}

// TransitionParams описывает условный переход статуса вещи.
type TransitionParams struct {
	ItemID  uuid.UUID
	From    []string
	To      string
	ActorID uuid.UUID
	Reason  *string
}

// Transition выполняет условное обновление статуса (compare-and-swap):
// запись меняется только если её текущий статус входит в From.
// Это единственный примитив, которым меняется статус вещи; при проигранной
// гонке возвращается ErrStatusConflict, и вызывающая сторона обязана
// перечитать актуальное состояние.
func (r *ItemRepository) Transition(ctx context.Context, p TransitionParams) (*models.Item, error) {
	return transitionItem(ctx, r.db, p)
}

// transitionItem — общая реализация CAS перехода, работает и на *sqlx.DB,
// и внутри транзакции (sqlx.ExtContext).
func transitionItem(ctx context.Context, ext sqlx.ExtContext, p TransitionParams) (*models.Item, error) {
	set := `status = $1::item_status, updated_at = NOW()`
	args := []interface{}{p.To}
	argIndex := 2

	// Целевой статус определяет, какие поля аудита заполняются.
	switch p.To {
	case models.ItemStatusApproved:
		set += fmt.Sprintf(`, approved_by = $%d, approved_at = NOW()`, argIndex)
		args = append(args, p.ActorID)
		argIndex++
	case models.ItemStatusRejected:
		set += fmt.Sprintf(`, rejected_by = $%d, rejected_at = NOW(), reject_reason = $%d`, argIndex, argIndex+1)
		args = append(args, p.ActorID, p.Reason)
		argIndex += 2
	case models.ItemStatusFlagged:
		set += fmt.Sprintf(`, flagged_by = $%d, flagged_at = NOW(), flag_reason = $%d`, argIndex, argIndex+1)
		args = append(args, p.ActorID, p.Reason)
		argIndex += 2
	case models.ItemStatusRemoved:
		set += `, is_active = FALSE`
	}

	query := fmt.Sprintf(`UPDATE items SET %s WHERE id = $%d AND status = ANY($%d) RETURNING %s`,
		set, argIndex, argIndex+1, itemColumns)
	args = append(args, p.ItemID, pq.Array(p.From))

	var item models.Item
	if err := sqlx.GetContext(ctx, ext, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifyItemMiss(ctx, ext, p.ItemID)
		}
		return nil, fmt.Errorf("item repository: transition %w", err)
	}

	return &item, nil
}

// classifyItemMiss различает отсутствие записи и проигранную гонку.
func classifyItemMiss(ctx context.Context, ext sqlx.ExtContext, itemID uuid.UUID) error {
	var exists bool
	if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID); err != nil {
		return fmt.Errorf("item repository: classify miss %w", err)
	}
	if !exists {
		return ErrItemNotFound
	}
	return ErrStatusConflict
}

// UpdateDetails изменяет описательные поля вещи владельцем.
// Разрешено только пока вещь не зарезервирована и не в терминальном статусе.
func (r *ItemRepository) UpdateDetails(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET title = $1,
		    description = $2,
		    category = $3,
		    size = $4,
		    condition = $5,
		    image_refs = $6,
		    updated_at = NOW()
		WHERE id = $7 AND owner_id = $8 AND status = ANY($9)
		RETURNING ` + itemColumns

	err := r.db.QueryRowxContext(
		ctx,
		query,
		item.Title,
		item.Description,
		item.Category,
		item.Size,
		item.Condition,
		pq.Array([]string(item.ImageRefs)),
		item.ID,
		item.OwnerID,
		pq.Array(models.SoftDeletableItemStatuses),
	).StructScan(item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return classifyItemMiss(ctx, r.db, item.ID)
		}
		return fmt.Errorf("item repository: update details %w", err)
	}

	return nil
}

// Release возвращает зарезервированную вещь в каталог: pending_swap -> approved.
// Отметки модерации не трогаются, вещь уже была одобрена ранее.
func (r *ItemRepository) Release(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	query := `
		UPDATE items
		SET status = 'approved', updated_at = NOW()
		WHERE id = $1 AND status = 'pending_swap'
		RETURNING ` + itemColumns

	var item models.Item
	if err := r.db.QueryRowxContext(ctx, query, itemID).StructScan(&item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, classifyItemMiss(ctx, r.db, itemID)
		}
		return nil, fmt.Errorf("item repository: release %w", err)
	}

	return &item, nil
}

// ListByIDs возвращает вещи по списку идентификаторов.
func (r *ItemRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Item{}, nil
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ANY($1)`
	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("item repository: list by ids %w", err)
	}

	byID := make(map[uuid.UUID]*models.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID, nil
}

// ItemListParams содержит параметры фильтрации и пагинации списка вещей.
type ItemListParams struct {
	Statuses  []string
	Category  string
	Size      string
	Condition string
	Search    string
	Limit     int
	Offset    int
}

// ItemListResult содержит список вещей и метаданные пагинации.
type ItemListResult struct {
	Items   []models.Item
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// List возвращает активные вещи с фильтрацией и пагинацией.
func (r *ItemRepository) List(ctx context.Context, params ItemListParams) (*ItemListResult, error) {
	countQuery := `SELECT COUNT(*) FROM items WHERE is_active = TRUE`
	query := `SELECT ` + itemColumns + ` FROM items WHERE is_active = TRUE`

	args := []interface{}{}
	argIndex := 1

	statuses := params.Statuses
	if len(statuses) == 0 {
		statuses = models.OfferableItemStatuses
	}
	clause := fmt.Sprintf(" AND status = ANY($%d)", argIndex)
	query += clause
	countQuery += clause
	args = append(args, pq.Array(statuses))
	argIndex++

	if params.Category != "" {
		clause := fmt.Sprintf(" AND category = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Category)
		argIndex++
	}

	if params.Size != "" {
		clause := fmt.Sprintf(" AND size = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Size)
		argIndex++
	}

	if params.Condition != "" {
		clause := fmt.Sprintf(" AND condition = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Condition)
		argIndex++
	}

	if params.Search != "" {
		clause := fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("item repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("item repository: list %w", err)
	}

	return &ItemListResult{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}, nil
}

// ListByOwner возвращает все вещи пользователя, включая удалённые из выдачи.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC`

	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("item repository: list by owner %w", err)
	}

	return items, nil
}

// CountByStatusForOwner возвращает количество вещей владельца по статусам.
func (r *ItemRepository) CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT status::text AS status, COUNT(*) AS count
		FROM items
		WHERE owner_id = $1
		GROUP BY status
	`

	rows, err := r.db.QueryxContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("item repository: count by status %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("item repository: scan count %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("item repository: count rows %w", err)
	}

	return counts, nil
}
