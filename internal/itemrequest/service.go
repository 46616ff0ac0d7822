package itemrequest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
)

type Service interface {
	Create(ctx context.Context, requestorID int64, description string) (*ItemRequest, error)
	ListOwn(ctx context.Context, requestorID int64) ([]*ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, offset, limit int) ([]*ItemRequest, int, error)
	Get(ctx context.Context, userID, requestID int64) (*ItemRequest, error)
}

type service struct {
	repo    Repository
	users   UserDirectory
	answers AnswerSource
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(repo Repository, users UserDirectory, answers AnswerSource, clk clock.Clock, log *zap.Logger) Service {
	return &service{
		repo:    repo,
		users:   users,
		answers: answers,
		clock:   clk,
		log:     logger.OrNop(log).Named("item_request"),
	}
}

func (s *service) Create(ctx context.Context, requestorID int64, description string) (*ItemRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := s.requireUser(ctx, requestorID); err != nil {
		return nil, err
	}

	req := &ItemRequest{
		RequestorID: requestorID,
		Description: description,
		CreatedAt:   s.clock.Now(),
		Items:       []*item.Item{},
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("item request created", zap.Int64("request_id", req.ID), zap.Int64("requestor_id", requestorID))
	return req, nil
}

func (s *service) ListOwn(ctx context.Context, requestorID int64) ([]*ItemRequest, error) {
	if err := s.requireUser(ctx, requestorID); err != nil {
		return nil, err
	}

	list, err := s.repo.ListByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *service) ListOthers(ctx context.Context, userID int64, offset, limit int) ([]*ItemRequest, int, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.ListOthers(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachAnswers(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *service) Get(ctx context.Context, userID, requestID int64) (*ItemRequest, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, []*ItemRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) requireUser(ctx context.Context, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %d: %w", id, err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) attachAnswers(ctx context.Context, list []*ItemRequest) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}

	grouped, err := s.answers.ListByRequestIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load answering items: %w", err)
	}

	for _, r := range list {
		r.Items = grouped[r.ID]
		if r.Items == nil {
			r.Items = []*item.Item{}
		}
	}
	return nil
}
