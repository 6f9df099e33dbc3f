package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPendingCall: {
		StatusVerified:  true,
		StatusCancelled: true,
	},
	StatusVerified: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

var ErrInvalidTransition = errors.New("invalid order status transition")

type Service interface {
	ActiveOrders(ctx context.Context, statuses []Status, todayOnly bool) ([]Order, error)
	RecentOrders(ctx context.Context, limit int) ([]Summary, error)
	OrderByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, newStatus Status) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ActiveOrders lists orders matching the given status filters. An empty
// status list lists orders of every status; callers that want only the
// actionable subset pass ActionableStatuses explicitly.
func (s *service) ActiveOrders(ctx context.Context, statuses []Status, todayOnly bool) ([]Order, error) {
	orders, err := s.repo.ListActive(ctx, statuses, todayOnly)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch active orders in repository")
		return nil, fmt.Errorf("service: failed to fetch active orders: %w", err)
	}

	return orders, nil
}

func (s *service) RecentOrders(ctx context.Context, limit int) ([]Summary, error) {
	summaries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch recent orders in repository")
		return nil, fmt.Errorf("service: failed to fetch recent orders: %w", err)
	}

	return summaries, nil
}

func (s *service) OrderByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("order_id", id).Msg("service: order not found by id")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, newStatus Status) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("order_id", id).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Int64("order_id", id).Stringer("status", newStatus).Msg("service: order status already set, no update needed")
		return nil
	}

	if !allowedTransitions[current.Status][newStatus] {
		log.Warn().
			Int64("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("service: %w from %s to %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Int64("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}
