package itemrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *ItemRequest) error
	GetByID(ctx context.Context, id int64) (*ItemRequest, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, offset, limit int) ([]*ItemRequest, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
	psql squirrel.StatementBuilderType
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *pgxRepository) Create(ctx context.Context, req *ItemRequest) error {
	query, args, err := r.psql.Insert("item_requests").
		Columns("description", "requestor_id", "created_at").
		Values(req.Description, req.RequestorID, req.CreatedAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create item request query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*ItemRequest, error) {
	query, args, err := r.psql.Select("id", "requestor_id", "description", "created_at").
		From("item_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item request query failed: %w", err)
	}

	var req ItemRequest
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&req.ID, &req.RequestorID, &req.Description, &req.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item request failed: %w", err)
	}
	return &req, nil
}

func (r *pgxRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("item_requests").
		Where(squirrel.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build item request exists query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("item request exists query failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error) {
	query, args, err := r.psql.Select("id", "requestor_id", "description", "created_at").
		From("item_requests").
		Where(squirrel.Eq{"requestor_id": requestorID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list own item requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list own item requests failed: %w", err)
	}
	defer rows.Close()

	var result []*ItemRequest
	for rows.Next() {
		var req ItemRequest
		if err := rows.Scan(&req.ID, &req.RequestorID, &req.Description, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item request failed: %w", err)
		}
		result = append(result, &req)
	}
	return result, rows.Err()
}

func (r *pgxRepository) ListOthers(ctx context.Context, userID int64, offset, limit int) ([]*ItemRequest, int, error) {
	query, args, err := r.psql.Select("id", "requestor_id", "description", "created_at", "count(*) OVER() AS total_count").
		From("item_requests").
		Where(squirrel.NotEq{"requestor_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list item requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list item requests failed: %w", err)
	}
	defer rows.Close()

	var result []*ItemRequest
	var total int
	for rows.Next() {
		var req ItemRequest
		if err := rows.Scan(&req.ID, &req.RequestorID, &req.Description, &req.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan item request failed: %w", err)
		}
		result = append(result, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate item requests failed: %w", err)
	}

	return result, total, nil
}
