package item

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
)

type Service interface {
	Create(ctx context.Context, ownerID int64, req CreateRequest) (*Item, error)
	Update(ctx context.Context, actingUserID, itemID int64, req UpdateRequest) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetDetail(ctx context.Context, actingUserID, itemID int64) (*Detail, error)
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Detail, int, error)
	Search(ctx context.Context, text string, offset, limit int) ([]*Item, int, error)
	ListByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*Comment, error)
	AuthorizeOwner(ctx context.Context, actingUserID, itemID int64) error
	SetPhoto(ctx context.Context, actingUserID, itemID int64, fileID string) error
}

type service struct {
	repo     Repository
	users    UserDirectory
	requests RequestLookup
	history  RentalHistory
	clock    clock.Clock
	log      *zap.Logger
}

func NewService(
	repo Repository,
	users UserDirectory,
	requests RequestLookup,
	history RentalHistory,
	clk clock.Clock,
	log *zap.Logger,
) Service {
	return &service{
		repo:     repo,
		users:    users,
		requests: requests,
		history:  history,
		clock:    clk,
		log:      logger.OrNop(log).Named("item"),
	}
}

func (s *service) Create(ctx context.Context, ownerID int64, req CreateRequest) (*Item, error) {
	if err := s.requireUser(ctx, ownerID, ErrOwnerNotFound); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if req.Available == nil {
		return nil, ErrAvailableRequired
	}

	if req.RequestID != nil {
		ok, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("check item request %d: %w", *req.RequestID, err)
		}
		if !ok {
			return nil, ErrRequestNotFound
		}
	}

	it := &Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Available:   *req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.log.Info("item created", zap.Int64("item_id", it.ID), zap.Int64("owner_id", ownerID))
	return it, nil
}

func (s *service) Update(ctx context.Context, actingUserID, itemID int64, req UpdateRequest) (*Item, error) {
	if err := s.requireUser(ctx, actingUserID, ErrUserNotFound); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != actingUserID {
		return nil, ErrNotOwner
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		it.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetDetail(ctx context.Context, actingUserID, itemID int64) (*Detail, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	details, err := s.decorate(ctx, []*Item{it}, it.OwnerID == actingUserID)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Detail, int, error) {
	if err := s.requireUser(ctx, ownerID, ErrUserNotFound); err != nil {
		return nil, 0, err
	}

	items, total, err := s.repo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	details, err := s.decorate(ctx, items, true)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// Search matches available items by name or description. Blank text matches nothing.
func (s *service) Search(ctx context.Context, text string, offset, limit int) ([]*Item, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*Item{}, 0, nil
	}
	return s.repo.SearchAvailable(ctx, text, offset, limit)
}

func (s *service) ListByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*Item, error) {
	items, err := s.repo.ListByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]*Item, len(requestIDs))
	for _, it := range items {
		if it.RequestID != nil {
			grouped[*it.RequestID] = append(grouped[*it.RequestID], it)
		}
	}
	return grouped, nil
}

// AddComment lets a user review an item they have rented and returned.
func (s *service) AddComment(ctx context.Context, authorID, itemID int64, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}
	if err := s.requireUser(ctx, authorID, ErrUserNotFound); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	rented, err := s.history.HasCompletedRental(ctx, authorID, itemID)
	if err != nil {
		return nil, fmt.Errorf("check rental history: %w", err)
	}
	if !rented {
		s.log.Debug("comment rejected without completed rental",
			zap.Int64("author_id", authorID), zap.Int64("item_id", itemID))
		return nil, ErrNoCompletedRental
	}

	c := &Comment{
		ItemID:    itemID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) AuthorizeOwner(ctx context.Context, actingUserID, itemID int64) error {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if it.OwnerID != actingUserID {
		return ErrNotOwner
	}
	return nil
}

func (s *service) SetPhoto(ctx context.Context, actingUserID, itemID int64, fileID string) error {
	if err := s.AuthorizeOwner(ctx, actingUserID, itemID); err != nil {
		return err
	}
	return s.repo.SetPhoto(ctx, itemID, fileID)
}

func (s *service) requireUser(ctx context.Context, id int64, missing error) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %d: %w", id, err)
	}
	if !ok {
		return missing
	}
	return nil
}

// decorate attaches comments, and booking briefs when withBookings is set.
func (s *service) decorate(ctx context.Context, items []*Item, withBookings bool) ([]*Detail, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	comments, err := s.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]*Detail, len(items))
	for i, it := range items {
		d := &Detail{Item: *it, Comments: comments[it.ID]}
		if d.Comments == nil {
			d.Comments = []*Comment{}
		}
		if withBookings {
			d.LastBooking, d.NextBooking, err = s.history.LastAndNext(ctx, it.ID)
			if err != nil {
				return nil, fmt.Errorf("load bookings of item %d: %w", it.ID, err)
			}
		}
		details[i] = d
	}
	return details, nil
}
