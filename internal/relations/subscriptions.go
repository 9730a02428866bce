package relations

import (
	"context"
	"fmt"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	ID           uint                  `json:"id"`
	Email        string                `json:"email"`
	Username     string                `json:"username"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	IsSubscribed bool                  `json:"is_subscribed"`
	Recipes      []recipes.ShortRecipe `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// Subscriptions lists one page of the authors the viewer follows, ordered by
// username. recipesLimit caps each preview; a negative value means no cap.
func (m *Manager) Subscriptions(ctx context.Context, viewer users.Viewer, offset, limit, recipesLimit int) ([]Subscription, int64, error) {
	if !viewer.Authenticated() {
		return nil, 0, apperr.Unauthenticated()
	}

	followed := m.db.WithContext(ctx).Model(&users.Follow{}).
		Select("author_id").
		Where("user_id = ?", viewer.ID)

	var total int64
	if err := m.db.WithContext(ctx).Model(&users.User{}).
		Where("id IN (?)", followed).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	var authors []users.User
	if err := m.db.WithContext(ctx).
		Where("id IN (?)", followed).
		Order("username ASC").
		Offset(offset).Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]Subscription, len(authors))
	for i := range authors {
		sub, err := m.describe(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out[i] = sub
	}
	return out, total, nil
}

// Describe renders one followed author; used after Follow succeeds.
func (m *Manager) Describe(ctx context.Context, author *users.User, recipesLimit int) (Subscription, error) {
	return m.describe(ctx, author, recipesLimit)
}

func (m *Manager) describe(ctx context.Context, author *users.User, recipesLimit int) (Subscription, error) {
	var count int64
	if err := m.db.WithContext(ctx).Model(&recipes.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&count).Error; err != nil {
		return Subscription{}, fmt.Errorf("count author recipes: %w", err)
	}

	q := m.db.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("pub_date DESC, id DESC")
	var list []recipes.Recipe
	if recipesLimit != 0 {
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		if err := q.Find(&list).Error; err != nil {
			return Subscription{}, fmt.Errorf("load author recipes: %w", err)
		}
	}

	short := make([]recipes.ShortRecipe, len(list))
	for i := range list {
		short[i] = recipes.ToShort(&list[i])
	}
	return Subscription{
		ID:           author.ID,
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
		Recipes:      short,
		RecipesCount: count,
	}, nil
}
