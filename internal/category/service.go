package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Category, error) {
	verr := newValidationError()
	checkStruct(in, verr)
	if !verr.empty() {
		log.Warn().Interface("fields", verr.Fields).Msg("service: category create rejected by validation")
		return nil, verr
	}

	c := &Category{
		Name:        in.Name,
		Description: normalizeOptional(in.Description),
		ImageURL:    normalizeOptional(in.ImageURL),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			log.Warn().Str("name", in.Name).Msg("service: duplicate category name")
			return nil, ErrDuplicateName
		}
		log.Error().Err(err).Msg("service: failed to create category in repository")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	log.Info().Int64("category_id", c.ID).Str("name", c.Name).Msg("service: category created")
	return c, nil
}

func (s *service) List(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories in repository")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}

	return categories, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*Category, error) {
	verr := newValidationError()
	checkStruct(in, verr)
	if in.Name != nil && *in.Name == "" {
		verr.add("name", "name is required")
	}
	if !verr.empty() {
		log.Warn().Int64("category_id", id).Interface("fields", verr.Fields).Msg("service: category update rejected by validation")
		return nil, verr
	}

	// Existence probe before applying the partial patch.
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("category_id", id).Msg("service: failed to fetch category for update")
		return nil, fmt.Errorf("service: failed to fetch category for update: %w", err)
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Description != nil {
		existing.Description = normalizeOptional(in.Description)
	}
	if in.ImageURL != nil {
		existing.ImageURL = normalizeOptional(in.ImageURL)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, ErrDuplicateName):
			log.Warn().Int64("category_id", id).Str("name", existing.Name).Msg("service: duplicate category name on update")
			return nil, ErrDuplicateName
		}
		log.Error().Err(err).Int64("category_id", id).Msg("service: failed to update category in repository")
		return nil, fmt.Errorf("service: failed to update category: %w", err)
	}

	log.Info().Int64("category_id", id).Msg("service: category updated")
	return existing, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Int64("category_id", id).Msg("service: failed to fetch category for delete")
		return fmt.Errorf("service: failed to fetch category for delete: %w", err)
	}

	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("category_id", id).Msg("service: failed to count products for delete")
		return fmt.Errorf("service: failed to count products: %w", err)
	}
	if count > 0 {
		log.Warn().Int64("category_id", id).Int64("products", count).Msg("service: category delete blocked by referencing products")
		return &ReferencedError{Name: existing.Name, Products: count}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		// A product can appear between the count and the delete; the FK
		// violation is the same conflict, counted again for the message.
		if errors.Is(err, ErrReferenced) {
			count, cerr := s.repo.CountProducts(ctx, id)
			if cerr != nil || count == 0 {
				count = 1
			}
			log.Warn().Int64("category_id", id).Int64("products", count).Msg("service: category delete blocked by referencing products")
			return &ReferencedError{Name: existing.Name, Products: count}
		}
		log.Error().Err(err).Int64("category_id", id).Msg("service: failed to delete category in repository")
		return fmt.Errorf("service: failed to delete category: %w", err)
	}

	log.Info().Int64("category_id", id).Str("name", existing.Name).Msg("service: category deleted")
	return nil
}

// normalizeOptional maps absent or empty optional strings to NULL before
// persistence.
func normalizeOptional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
