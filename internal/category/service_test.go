package category_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/northmart/storefront/internal/category"
)

type mockRepository struct {
	createFunc        func(ctx context.Context, c *category.Category) error
	listFunc          func(ctx context.Context) ([]category.Category, error)
	getByIDFunc       func(ctx context.Context, id int64) (*category.Category, error)
	updateFunc        func(ctx context.Context, c *category.Category) error
	deleteFunc        func(ctx context.Context, id int64) error
	countProductsFunc func(ctx context.Context, categoryID int64) (int64, error)
}

func (m *mockRepository) Create(ctx context.Context, c *category.Category) error {
	return m.createFunc(ctx, c)
}

func (m *mockRepository) List(ctx context.Context) ([]category.Category, error) {
	return m.listFunc(ctx)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) Update(ctx context.Context, c *category.Category) error {
	return m.updateFunc(ctx, c)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRepository) CountProducts(ctx context.Context, categoryID int64) (int64, error) {
	return m.countProductsFunc(ctx, categoryID)
}

func strPtr(s string) *string {
	return &s
}

func TestCategoryService_Create(t *testing.T) {
	tests := []struct {
		name           string
		input          category.CreateInput
		createFunc     func(ctx context.Context, c *category.Category) error
		wantErr        bool
		wantErrIs      error
		wantFieldErrOn string
	}{
		{
			name:  "valid_input",
			input: category.CreateInput{Name: "Electronics", Description: strPtr("Gadgets"), ImageURL: strPtr("https://example.com/e.png")},
			createFunc: func(ctx context.Context, c *category.Category) error {
				c.ID = 1
				return nil
			},
		},
		{
			name:  "empty_optionals_normalized_to_null",
			input: category.CreateInput{Name: "Books", Description: strPtr(""), ImageURL: strPtr("")},
			createFunc: func(ctx context.Context, c *category.Category) error {
				assert.Nil(t, c.Description)
				assert.Nil(t, c.ImageURL)
				c.ID = 2
				return nil
			},
		},
		{
			name:           "missing_name",
			input:          category.CreateInput{Description: strPtr("no name")},
			createFunc:     func(ctx context.Context, c *category.Category) error { return nil },
			wantErr:        true,
			wantFieldErrOn: "name",
		},
		{
			name:           "name_too_long",
			input:          category.CreateInput{Name: strings.Repeat("x", 101)},
			createFunc:     func(ctx context.Context, c *category.Category) error { return nil },
			wantErr:        true,
			wantFieldErrOn: "name",
		},
		{
			name:           "malformed_image_url",
			input:          category.CreateInput{Name: "Toys", ImageURL: strPtr("not a url")},
			createFunc:     func(ctx context.Context, c *category.Category) error { return nil },
			wantErr:        true,
			wantFieldErrOn: "imageUrl",
		},
		{
			name:       "duplicate_name",
			input:      category.CreateInput{Name: "Electronics"},
			createFunc: func(ctx context.Context, c *category.Category) error { return category.ErrDuplicateName },
			wantErr:    true,
			wantErrIs:  category.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockRepository{createFunc: tt.createFunc}
			svc := category.NewService(mockRepo)

			created, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
				if tt.wantFieldErrOn != "" {
					var verr *category.ValidationError
					assert.True(t, errors.As(err, &verr))
					assert.Contains(t, verr.Fields, tt.wantFieldErrOn)
				}
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, created.ID)
				assert.Equal(t, tt.input.Name, created.Name)
			}
		})
	}
}

func TestCategoryService_Update(t *testing.T) {
	existing := func() *category.Category {
		return &category.Category{
			ID:          7,
			Name:        "Outdoor",
			Description: strPtr("Camping gear"),
			ImageURL:    strPtr("https://example.com/o.png"),
		}
	}

	tests := []struct {
		name        string
		input       category.UpdateInput
		getByIDFunc func(ctx context.Context, id int64) (*category.Category, error)
		updateFunc  func(ctx context.Context, c *category.Category) error
		wantErr     bool
		wantErrIs   error
		check       func(t *testing.T, updated *category.Category)
	}{
		{
			name:  "unknown_id",
			input: category.UpdateInput{Name: strPtr("New")},
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return nil, category.ErrNotFound
			},
			updateFunc: func(ctx context.Context, c *category.Category) error {
				t.Fatal("update must not be called for unknown id")
				return nil
			},
			wantErr:   true,
			wantErrIs: category.ErrNotFound,
		},
		{
			name:  "omitted_description_is_kept",
			input: category.UpdateInput{Name: strPtr("Outdoor & Garden")},
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return existing(), nil
			},
			updateFunc: func(ctx context.Context, c *category.Category) error { return nil },
			check: func(t *testing.T, updated *category.Category) {
				assert.Equal(t, "Outdoor & Garden", updated.Name)
				if assert.NotNil(t, updated.Description) {
					assert.Equal(t, "Camping gear", *updated.Description)
				}
			},
		},
		{
			name:  "explicit_empty_description_clears_to_null",
			input: category.UpdateInput{Description: strPtr("")},
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return existing(), nil
			},
			updateFunc: func(ctx context.Context, c *category.Category) error { return nil },
			check: func(t *testing.T, updated *category.Category) {
				assert.Nil(t, updated.Description)
				assert.Equal(t, "Outdoor", updated.Name)
			},
		},
		{
			name:  "empty_name_rejected",
			input: category.UpdateInput{Name: strPtr("")},
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				t.Fatal("existence probe must not run for invalid input")
				return nil, nil
			},
			updateFunc: func(ctx context.Context, c *category.Category) error { return nil },
			wantErr:    true,
		},
		{
			name:  "duplicate_name",
			input: category.UpdateInput{Name: strPtr("Electronics")},
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return existing(), nil
			},
			updateFunc: func(ctx context.Context, c *category.Category) error {
				return category.ErrDuplicateName
			},
			wantErr:   true,
			wantErrIs: category.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockRepository{
				getByIDFunc: tt.getByIDFunc,
				updateFunc:  tt.updateFunc,
			}
			svc := category.NewService(mockRepo)

			updated, err := svc.Update(context.Background(), 7, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
			} else {
				assert.NoError(t, err)
				if tt.check != nil {
					tt.check(t, updated)
				}
			}
		})
	}
}

func TestCategoryService_Delete(t *testing.T) {
	tests := []struct {
		name              string
		getByIDFunc       func(ctx context.Context, id int64) (*category.Category, error)
		countProductsFunc func(ctx context.Context, categoryID int64) (int64, error)
		deleteFunc        func(ctx context.Context, id int64) error
		wantErr           bool
		wantErrIs         error
		wantProducts      int64
	}{
		{
			name: "unreferenced_category_deleted",
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return &category.Category{ID: id, Name: "Books"}, nil
			},
			countProductsFunc: func(ctx context.Context, categoryID int64) (int64, error) { return 0, nil },
			deleteFunc:        func(ctx context.Context, id int64) error { return nil },
		},
		{
			name: "referenced_category_blocked",
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return &category.Category{ID: id, Name: "Books"}, nil
			},
			countProductsFunc: func(ctx context.Context, categoryID int64) (int64, error) { return 3, nil },
			deleteFunc: func(ctx context.Context, id int64) error {
				t.Fatal("delete must not be called for a referenced category")
				return nil
			},
			wantErr:      true,
			wantProducts: 3,
		},
		{
			name: "unknown_id",
			getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
				return nil, category.ErrNotFound
			},
			countProductsFunc: func(ctx context.Context, categoryID int64) (int64, error) { return 0, nil },
			deleteFunc:        func(ctx context.Context, id int64) error { return nil },
			wantErr:           true,
			wantErrIs:         category.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockRepository{
				getByIDFunc:       tt.getByIDFunc,
				countProductsFunc: tt.countProductsFunc,
				deleteFunc:        tt.deleteFunc,
			}
			svc := category.NewService(mockRepo)

			err := svc.Delete(context.Background(), 4)
			checkDeleteResult(t, err, tt.wantErr, tt.wantErrIs, tt.wantProducts)
		})
	}
}

func checkDeleteResult(t *testing.T, err error, wantErr bool, wantErrIs error, wantProducts int64) {
	t.Helper()

	if !wantErr {
		assert.NoError(t, err)
		return
	}

	assert.Error(t, err)
	if wantErrIs != nil {
		assert.True(t, errors.Is(err, wantErrIs))
	}
	if wantProducts > 0 {
		var refErr *category.ReferencedError
		if assert.True(t, errors.As(err, &refErr)) {
			assert.Equal(t, wantProducts, refErr.Products)
			assert.Contains(t, refErr.Error(), fmt.Sprintf("%d associated products", wantProducts))
		}
	}
}

func TestCategoryService_Delete_RaceWithProductInsert(t *testing.T) {
	// The count sees nothing, but a product is inserted before the delete
	// runs, so the delete itself fails on the foreign key. The conflict
	// must surface the same way as the up-front check.
	countCalls := 0
	mockRepo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id int64) (*category.Category, error) {
			return &category.Category{ID: id, Name: "Books"}, nil
		},
		countProductsFunc: func(ctx context.Context, categoryID int64) (int64, error) {
			countCalls++
			if countCalls == 1 {
				return 0, nil
			}
			return 2, nil
		},
		deleteFunc: func(ctx context.Context, id int64) error {
			return category.ErrReferenced
		},
	}
	svc := category.NewService(mockRepo)

	err := svc.Delete(context.Background(), 4)
	checkDeleteResult(t, err, true, nil, 2)
	assert.Equal(t, 2, countCalls)
}
