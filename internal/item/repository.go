package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, it *Item) error
	SetPhoto(ctx context.Context, id int64, fileID string) error
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Item, int, error)
	SearchAvailable(ctx context.Context, text string, offset, limit int) ([]*Item, int, error)
	ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error)
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, itemIDs []int64) (map[int64][]*Comment, error)
}

var itemColumns = []string{"id", "owner_id", "name", "description", "available", "request_id", "photo_id", "created_at"}

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

func (r *pgxRepository) Create(ctx context.Context, it *Item) error {
	query, args, err := r.psql.Insert("items").
		Columns("owner_id", "name", "description", "available", "request_id").
		Values(it.OwnerID, it.Name, it.Description, it.Available, it.RequestID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create item query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.ID, &it.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			switch pgErr.ConstraintName {
			case "items_request_id_fkey":
				return ErrRequestNotFound
			case "items_owner_id_fkey":
				return ErrOwnerNotFound
			}
		}
		return fmt.Errorf("create item failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query, args, err := r.psql.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item query failed: %w", err)
	}

	it, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	return it, nil
}

func (r *pgxRepository) Update(ctx context.Context, it *Item) error {
	query, args, err := r.psql.Update("items").
		Set("name", it.Name).
		Set("description", it.Description).
		Set("available", it.Available).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetPhoto(ctx context.Context, id int64, fileID string) error {
	query, args, err := r.psql.Update("items").
		Set("photo_id", fileID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set item photo query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set item photo failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Item, int, error) {
	query := r.psql.Select(append(itemColumns, "count(*) OVER() AS total_count")...).
		From("items").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return r.listPage(ctx, query)
}

func (r *pgxRepository) SearchAvailable(ctx context.Context, text string, offset, limit int) ([]*Item, int, error) {
	pattern := "%" + escapeLike(text) + "%"
	query := r.psql.Select(append(itemColumns, "count(*) OVER() AS total_count")...).
		From("items").
		Where(squirrel.Eq{"available": true}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return r.listPage(ctx, query)
}

func (r *pgxRepository) listPage(ctx context.Context, query squirrel.SelectBuilder) ([]*Item, int, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items failed: %w", err)
	}
	defer rows.Close()

	var result []*Item
	var total int
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available,
			&it.RequestID, &it.PhotoID, &it.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan item failed: %w", err)
		}
		result = append(result, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate items failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]*Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.psql.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"request_id": requestIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items by request query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list items by request failed: %w", err)
	}
	defer rows.Close()

	var result []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item failed: %w", err)
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// The author's name is read back in the same statement so the comment can be returned whole.
const insertCommentSQL = `
	WITH inserted AS (
		INSERT INTO comments (text, item_id, author_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, author_id, created_at
	)
	SELECT inserted.id, inserted.created_at, u.name
	FROM inserted
	JOIN users u ON u.id = inserted.author_id
`

func (r *pgxRepository) CreateComment(ctx context.Context, c *Comment) error {
	err := r.pool.QueryRow(ctx, insertCommentSQL, c.Text, c.ItemID, c.AuthorID, c.CreatedAt).
		Scan(&c.ID, &c.CreatedAt, &c.AuthorName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("create comment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListComments(ctx context.Context, itemIDs []int64) (map[int64][]*Comment, error) {
	result := make(map[int64][]*Comment, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.psql.Select("c.id", "c.item_id", "c.author_id", "u.name", "c.text", "c.created_at").
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.item_id": itemIDs}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}
		result[c.ItemID] = append(result[c.ItemID], &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments failed: %w", err)
	}

	return result, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	if err := row.Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available,
		&it.RequestID, &it.PhotoID, &it.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

// escapeLike neutralises LIKE wildcards in user supplied search text.
func escapeLike(s string) string {
	var out []rune
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
