package category

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput is the payload for creating a category. Optional fields
// left empty are stored as NULL.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateInput is a partial patch: a nil field is left unchanged, a
// pointer to an empty string clears the stored value to NULL.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}
