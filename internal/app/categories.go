package app

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/finwell/finance-service/internal/domain"
)

// Display fallbacks for categories created without explicit styling.
const (
	defaultCategoryColor = "#3f51b5"
	defaultCategoryIcon  = "category"
)

// defaultCategories is the starter set seeded for new users.
var defaultCategories = []struct {
	Name  string
	Color string
	Icon  string
}{
	{"Food & Dining", "#FF6B6B", "restaurant"},
	{"Transportation", "#4ECDC4", "directions_car"},
	{"Shopping", "#45B7D1", "shopping_cart"},
	{"Entertainment", "#96CEB4", "movie"},
	{"Bills & Utilities", "#FFEAA7", "receipt"},
	{"Healthcare", "#DDA0DD", "local_hospital"},
	{"Salary", "#98D8C8", "work"},
	{"Investment", "#F7DC6F", "trending_up"},
}

// CreateCategory creates a new category with display defaults for any
// omitted styling.
func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, name, color, icon string) (*domain.Category, error) {
	if name == "" {
		return nil, &InvalidInputError{Field: "name", Reason: "name is required"}
	}
	if color == "" {
		color = defaultCategoryColor
	}
	if icon == "" {
		icon = defaultCategoryIcon
	}

	category := &domain.Category{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Color:  color,
		Icon:   icon,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all of the user's categories.
func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID) ([]domain.Category, error) {
	return s.repo.FindCategoriesByUserID(ctx, userID)
}

// GetCategory returns one category owned by the user.
func (s *Service) GetCategory(ctx context.Context, categoryID, userID uuid.UUID) (*domain.Category, error) {
	return s.repo.FindCategoryByID(ctx, categoryID, userID)
}

// UpdateCategory applies a partial change set to a category.
func (s *Service) UpdateCategory(ctx context.Context, categoryID, userID uuid.UUID, changes domain.CategoryChanges) (*domain.Category, error) {
	return s.repo.UpdateCategory(ctx, categoryID, userID, changes)
}

// DeleteCategory removes a category. Transactions that referenced it keep
// their rows with the category cleared.
func (s *Service) DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, categoryID, userID)
}

// SeedDefaultCategories creates the starter categories the user does not
// already have, matched by name. It returns how many were created.
func (s *Service) SeedDefaultCategories(ctx context.Context, userID uuid.UUID) (int, error) {
	existing, err := s.repo.FindCategoriesByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c.Name] = true
	}

	created := 0
	for _, d := range defaultCategories {
		if taken[d.Name] {
			continue
		}
		category := &domain.Category{
			ID:     uuid.New(),
			UserID: userID,
			Name:   d.Name,
			Color:  d.Color,
			Icon:   d.Icon,
		}
		if err := s.repo.CreateCategory(ctx, category); err != nil {
			return created, err
		}
		created++
	}

	log.Printf("level=info component=categories msg=\"default categories seeded\" user_id=%s created=%d", userID, created)
	return created, nil
}
