package recipes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
)

func TestLoadIngredientsIsIdempotent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	csv := "абрикосовое варенье,г\nFlour,g\n\"Salt, coarse\",g\nFlour,g\n"

	first, err := LoadIngredients(ctx, db, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.Read != 4 || first.Inserted != 3 || first.Skipped != 1 {
		t.Errorf("first stats = %+v, want read 4 inserted 3 skipped 1", first)
	}

	second, err := LoadIngredients(ctx, db, strings.NewReader(csv))
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 4 {
		t.Errorf("second stats = %+v, want nothing inserted", second)
	}

	var salt Ingredient
	if err := db.Where("name = ?", "Salt, coarse").First(&salt).Error; err != nil {
		t.Fatalf("quoted name not stored: %v", err)
	}
	if n := countRows(t, db, "ingredients", "1 = 1"); n != 3 {
		t.Errorf("ingredients = %d, want 3", n)
	}
}

func TestLoadIngredientsRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"single column", "Flour\n"},
		{"empty unit", "Flour, \n"},
		{"unterminated quote", "\"Flour,g\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			_, err := LoadIngredients(context.Background(), db, strings.NewReader("Sugar,g\n"+tt.csv))
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			if n := countRows(t, db, "ingredients", "1 = 1"); n != 0 {
				t.Errorf("partial import left %d rows", n)
			}
		})
	}
}
