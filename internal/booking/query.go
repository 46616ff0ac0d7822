package booking

import (
	"time"
)

// Temporal is the time predicate of a list query, evaluated against a single "now".
type Temporal int

const (
	AnyTime  Temporal = iota
	Ongoing           // start <= now AND end >= now
	Ended             // end < now
	Upcoming          // start > now
)

// Order of a list query. Ties cannot happen because ids are unique.
type Order int

const (
	OrderIDDesc Order = iota
	OrderIDAsc
)

type plan struct {
	temporal Temporal
	status   Status // empty means any status
	order    Order
}

// filterPlans is the single source of list semantics. Both roles share it,
// so the booker and owner views cannot drift apart.
var filterPlans = map[StateFilter]plan{
	StateAll:      {temporal: AnyTime, order: OrderIDDesc},
	StateCurrent:  {temporal: Ongoing, order: OrderIDAsc},
	StatePast:     {temporal: Ended, status: StatusApproved, order: OrderIDDesc},
	StateFuture:   {temporal: Upcoming, order: OrderIDDesc},
	StateWaiting:  {temporal: AnyTime, status: StatusWaiting, order: OrderIDAsc},
	StateRejected: {temporal: AnyTime, status: StatusRejected, order: OrderIDAsc},
}

// Query is a resolved list request: whose bookings, which bucket, what window.
type Query struct {
	Role     Role
	UserID   int64
	Temporal Temporal
	Status   Status
	Order    Order
	Now      time.Time
	Page     Page
}

// NewQuery resolves a filter for a role. now is captured once and reused for every row.
func NewQuery(role Role, userID int64, filter StateFilter, now time.Time, page Page) (Query, error) {
	p, ok := filterPlans[filter]
	if !ok {
		return Query{}, ErrUnknownState
	}
	if err := page.Validate(); err != nil {
		return Query{}, err
	}

	return Query{
		Role:     role,
		UserID:   userID,
		Temporal: p.temporal,
		Status:   p.status,
		Order:    p.order,
		Now:      now,
		Page:     page,
	}, nil
}

// Matches evaluates the query predicate in memory. The SQL store must agree with it.
func (q Query) Matches(b *Booking) bool {
	switch q.Role {
	case RoleOwner:
		if b.Item.OwnerID != q.UserID {
			return false
		}
	default:
		if b.BookerID != q.UserID {
			return false
		}
	}

	if q.Status != "" && b.Status != q.Status {
		return false
	}

	switch q.Temporal {
	case Ongoing:
		return !b.Start.After(q.Now) && !b.End.Before(q.Now)
	case Ended:
		return b.End.Before(q.Now)
	case Upcoming:
		return b.Start.After(q.Now)
	default:
		return true
	}
}

// Less reports whether a sorts before b under the query order.
func (q Query) Less(a, b *Booking) bool {
	if q.Order == OrderIDAsc {
		return a.ID < b.ID
	}
	return a.ID > b.ID
}
