package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusChange is a compare-and-set on a booking's status.
// With ExclusiveApproval the store also refuses to approve over another approved booking of the item.
type StatusChange struct {
	Booking           *Booking
	To                Status
	ExclusiveApproval bool
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// UpdateStatus applies the change only if the stored status still equals Booking.Status.
	// A lost race returns ErrAlreadyDecided.
	UpdateStatus(ctx context.Context, change StatusChange) error

	List(ctx context.Context, q Query) ([]*Booking, int, error)

	FindPastCompleted(ctx context.Context, bookerID, itemID int64, now time.Time) ([]*Booking, error)
	FindLastApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error)
	FindNextApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error)
}

var bookingColumns = []string{
	"b.id", "b.item_id", "b.booker_id", "b.start_time", "b.end_time", "b.status",
	"i.name", "i.description", "i.owner_id",
	"u.name", "u.email",
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

func (r *pgxRepository) selectBookings(extra ...string) squirrel.SelectBuilder {
	cols := make([]string, 0, len(bookingColumns)+len(extra))
	cols = append(cols, bookingColumns...)
	cols = append(cols, extra...)

	return r.psql.Select(cols...).
		From("bookings b").
		Join("items i ON i.id = b.item_id").
		Join("users u ON u.id = b.booker_id")
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := r.psql.Insert("bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.Start, b.End, b.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query, args, err := r.selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, change StatusChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status update failed: %w", err)
	}
	defer tx.Rollback(ctx)

	b := change.Booking

	if change.ExclusiveApproval && change.To == StatusApproved {
		// Serialises approvals per item: concurrent deciders queue on the item row.
		if _, err := tx.Exec(ctx, "SELECT 1 FROM items WHERE id = $1 FOR UPDATE", b.ItemID); err != nil {
			return fmt.Errorf("lock item failed: %w", err)
		}

		taken, err := r.hasApprovedOverlap(ctx, tx, b)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
	}

	query, args, err := r.psql.Update("bookings").
		Set("status", change.To).
		Where(squirrel.Eq{"id": b.ID, "status": b.Status}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit status update failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) hasApprovedOverlap(ctx context.Context, tx pgx.Tx, b *Booking) (bool, error) {
	query, args, err := r.psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("bookings").
		Where(squirrel.Eq{"item_id": b.ItemID, "status": StatusApproved}).
		Where(squirrel.NotEq{"id": b.ID}).
		Where(squirrel.Lt{"start_time": b.End}).
		Where(squirrel.Gt{"end_time": b.Start}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query failed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("overlap query failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) List(ctx context.Context, q Query) ([]*Booking, int, error) {
	query := applyQuery(r.selectBookings("count(*) OVER() AS total_count"), q)

	if q.Order == OrderIDAsc {
		query = query.OrderBy("b.id ASC")
	} else {
		query = query.OrderBy("b.id DESC")
	}

	query = query.Limit(uint64(q.Page.Limit)).Offset(uint64(q.Page.Offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status,
			&b.Item.Name, &b.Item.Description, &b.Item.OwnerID,
			&b.Booker.Name, &b.Booker.Email, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		fillRefs(&b)
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	// An offset past the end yields no rows and therefore no window count.
	if len(bookings) == 0 && q.Page.Offset > 0 {
		total, err = r.count(ctx, q)
		if err != nil {
			return nil, 0, err
		}
	}

	return bookings, total, nil
}

func (r *pgxRepository) count(ctx context.Context, q Query) (int, error) {
	query := applyQuery(r.psql.Select("count(*)").
		From("bookings b").
		Join("items i ON i.id = b.item_id"), q)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return total, nil
}

// applyQuery adds the role scope and the filter predicate. It is the SQL form of Query.Matches
// and expects bookings aliased as b and items as i.
func applyQuery(sb squirrel.SelectBuilder, q Query) squirrel.SelectBuilder {
	switch q.Role {
	case RoleOwner:
		sb = sb.Where(squirrel.Eq{"i.owner_id": q.UserID})
	default:
		sb = sb.Where(squirrel.Eq{"b.booker_id": q.UserID})
	}

	if q.Status != "" {
		sb = sb.Where(squirrel.Eq{"b.status": q.Status})
	}

	switch q.Temporal {
	case Ongoing:
		sb = sb.Where(squirrel.LtOrEq{"b.start_time": q.Now}).
			Where(squirrel.GtOrEq{"b.end_time": q.Now})
	case Ended:
		sb = sb.Where(squirrel.Lt{"b.end_time": q.Now})
	case Upcoming:
		sb = sb.Where(squirrel.Gt{"b.start_time": q.Now})
	}
	return sb
}

func (r *pgxRepository) FindPastCompleted(ctx context.Context, bookerID, itemID int64, now time.Time) ([]*Booking, error) {
	sql, args, err := r.selectBookings().
		Where(squirrel.Eq{"b.booker_id": bookerID, "b.item_id": itemID, "b.status": StatusApproved}).
		Where(squirrel.Lt{"b.end_time": now}).
		OrderBy("b.end_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build past completed query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find past completed bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *pgxRepository) FindLastApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	return r.findOne(ctx, r.selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID, "b.status": StatusApproved}).
		Where(squirrel.Lt{"b.start_time": now}).
		OrderBy("b.end_time DESC").
		Limit(1))
}

func (r *pgxRepository) FindNextApproved(ctx context.Context, itemID int64, now time.Time) (*Booking, error) {
	return r.findOne(ctx, r.selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID, "b.status": StatusApproved}).
		Where(squirrel.Gt{"b.start_time": now}).
		OrderBy("b.start_time ASC").
		Limit(1))
}

// findOne returns nil, nil when nothing matches.
func (r *pgxRepository) findOne(ctx context.Context, query squirrel.SelectBuilder) (*Booking, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find booking failed: %w", err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status,
		&b.Item.Name, &b.Item.Description, &b.Item.OwnerID,
		&b.Booker.Name, &b.Booker.Email,
	); err != nil {
		return nil, err
	}
	fillRefs(&b)
	return &b, nil
}

func fillRefs(b *Booking) {
	b.Item.ID = b.ItemID
	b.Booker.ID = b.BookerID
}
