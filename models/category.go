package models

import "time"

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	IsSavings bool      `json:"is_savings"`
	IsDefault bool      `json:"is_default"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultColor is used when a category is created without one.
const DefaultColor = "#6366f1"

type DefaultCategory struct {
	Name      string
	Color     string
	IsSavings bool
	SortOrder int
}

// DefaultCategories is the onboarding seed set. Savings must stay first:
// it is the one category per user that can never be renamed or deleted.
var DefaultCategories = []DefaultCategory{
	{Name: "Savings", Color: "#6366f1", IsSavings: true, SortOrder: 0},
	{Name: "Transport & Food", Color: "#f59e0b", SortOrder: 1},
	{Name: "Utilities", Color: "#10b981", SortOrder: 2},
	{Name: "Partner & Child Support", Color: "#ec4899", SortOrder: 3},
	{Name: "Subscriptions", Color: "#8b5cf6", SortOrder: 4},
	{Name: "Fun", Color: "#06b6d4", SortOrder: 5},
	{Name: "Remittance", Color: "#f97316", SortOrder: 6},
}

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type ReorderCategoriesRequest struct {
	CategoryIDs []string `json:"category_ids" binding:"required"`
}
