package relations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database/dbtest"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

func setup(t *testing.T) (*gorm.DB, *Manager) {
	t.Helper()
	db := dbtest.Open(t, recipes.AllModels()...)
	return db, NewManager(db)
}

func mkUser(t *testing.T, db *gorm.DB, name string) users.Viewer {
	t.Helper()
	u := users.User{Email: name + "@example.com", Username: name, PasswordHash: "x", Role: users.RoleUser}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return users.ViewerOf(&u)
}

var seq int

func mkRecipe(t *testing.T, db *gorm.DB, author users.Viewer, name string) *recipes.Recipe {
	t.Helper()
	seq++
	ing := recipes.Ingredient{Name: fmt.Sprintf("ing-%d", seq), MeasurementUnit: "g"}
	tag := recipes.Tag{Name: fmt.Sprintf("tag-%d", seq), Color: fmt.Sprintf("#%06X", seq), Slug: fmt.Sprintf("tag-%d", seq)}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}
	r, err := recipes.Create(context.Background(), db, author, recipes.RecipeInput{
		Name:        name,
		Text:        "text",
		Image:       "http://localhost/media/recipes/" + name + ".jpg",
		CookingTime: 5,
		Tags:        []uint{tag.ID},
		Ingredients: []recipes.IngredientLine{{ID: ing.ID, Amount: 1}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return r
}

func TestAddRemoveRecipe(t *testing.T) {
	for _, kind := range []Kind{KindFavorite, KindShoppingCart} {
		t.Run(kind.String(), func(t *testing.T) {
			db, m := setup(t)
			ctx := context.Background()
			author := mkUser(t, db, "chef")
			fan := mkUser(t, db, "fan")
			r := mkRecipe(t, db, author, "Pie")

			got, err := m.AddRecipe(ctx, fan, kind, r.ID)
			if err != nil {
				t.Fatalf("first add: %v", err)
			}
			if got.ID != r.ID || got.Name != "Pie" {
				t.Errorf("returned recipe = %+v", got)
			}

			if _, err := m.AddRecipe(ctx, fan, kind, r.ID); !errors.Is(err, apperr.ErrAlreadyExists) {
				t.Errorf("second add: err = %v, want already exists", err)
			}

			var n int64
			db.Table(kind.Table()).Where("user_id = ? AND recipe_id = ?", fan.ID, r.ID).Count(&n)
			if n != 1 {
				t.Errorf("rows = %d, want exactly 1", n)
			}

			if err := m.RemoveRecipe(ctx, fan, kind, r.ID); err != nil {
				t.Fatalf("first remove: %v", err)
			}
			if err := m.RemoveRecipe(ctx, fan, kind, r.ID); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("second remove: err = %v, want not found", err)
			}
		})
	}
}

func TestKindsAreIndependent(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	author := mkUser(t, db, "chef")
	fan := mkUser(t, db, "fan")
	r := mkRecipe(t, db, author, "Pie")

	if _, err := m.AddFavorite(ctx, fan, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddToCart(ctx, fan, r.ID); err != nil {
		t.Fatalf("cart add after favorite: %v", err)
	}
	if err := m.RemoveFromCart(ctx, fan, r.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveFavorite(ctx, fan, r.ID); err != nil {
		t.Fatalf("favorite should survive cart removal: %v", err)
	}
}

func TestAddRecipeErrors(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	fan := mkUser(t, db, "fan")

	tests := []struct {
		name   string
		viewer users.Viewer
		kind   Kind
		want   error
	}{
		{"missing recipe", fan, KindFavorite, apperr.ErrNotFound},
		{"anonymous", users.Viewer{}, KindShoppingCart, apperr.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.AddRecipe(ctx, tt.viewer, tt.kind, 404); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := m.AddRecipe(ctx, fan, Kind(42), 1); err == nil || apperr.KindOf(err) != 0 {
		t.Errorf("unknown kind: err = %v, want internal error", err)
	}
}

func TestFollow(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	author, err := m.Follow(ctx, alice, bob.ID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if author.Username != "bob" {
		t.Errorf("author = %q", author.Username)
	}
	if _, err := m.Follow(ctx, alice, bob.ID); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second follow: err = %v, want already exists", err)
	}
	if _, err := m.Follow(ctx, alice, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("follow missing author: err = %v, want not found", err)
	}

	if err := m.Unfollow(ctx, alice, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := m.Unfollow(ctx, alice, bob.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second unfollow: err = %v, want not found", err)
	}
	if err := m.Unfollow(ctx, alice, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unfollow missing author: err = %v, want not found", err)
	}
}

// raceInsert makes the next create on table lose a race: a competing row is
// written inside the same transaction after the existence check has passed.
func raceInsert(t *testing.T, db *gorm.DB, table, stmt string, args ...interface{}) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:race_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(stmt, args...).Error; err != nil {
			t.Errorf("competing insert: %v", err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentInsertMapsToAlreadyExists(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []Kind{KindFavorite, KindShoppingCart} {
		t.Run(kind.String(), func(t *testing.T) {
			db, m := setup(t)
			author := mkUser(t, db, "chef")
			fan := mkUser(t, db, "fan")
			r := mkRecipe(t, db, author, "Stew")

			raceInsert(t, db, kind.Table(),
				"INSERT INTO "+kind.Table()+" (user_id, recipe_id, created_at) VALUES (?, ?, ?)",
				fan.ID, r.ID, time.Now())

			if _, err := m.AddRecipe(ctx, fan, kind, r.ID); !errors.Is(err, apperr.ErrAlreadyExists) {
				t.Errorf("err = %v, want already exists", err)
			}
		})
	}

	t.Run("follow", func(t *testing.T) {
		db, m := setup(t)
		alice := mkUser(t, db, "alice")
		bob := mkUser(t, db, "bob")

		raceInsert(t, db, "follows",
			"INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, ?)",
			alice.ID, bob.ID, time.Now())

		if _, err := m.Follow(ctx, alice, bob.ID); !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("err = %v, want already exists", err)
		}
	})
}

func TestFollowSelfAlwaysFails(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	alice := mkUser(t, db, "alice")
	bob := mkUser(t, db, "bob")

	tests := []struct {
		name  string
		setup func()
	}{
		{"no relations", func() {}},
		{"following someone else", func() {
			if _, err := m.Follow(ctx, alice, bob.ID); err != nil {
				t.Fatal(err)
			}
		}},
		{"followed by someone", func() {
			if _, err := m.Follow(ctx, bob, alice.ID); err != nil {
				t.Fatal(err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			_, err := m.Follow(ctx, alice, alice.ID)
			if !errors.Is(err, apperr.ErrSelfReference) {
				t.Errorf("err = %v, want self reference", err)
			}
		})
	}

	// Self reference wins even when the id does not exist as a user.
	ghost := users.Viewer{ID: 777}
	if _, err := m.Follow(ctx, ghost, 777); !errors.Is(err, apperr.ErrSelfReference) {
		t.Errorf("ghost self follow: err = %v, want self reference", err)
	}
}

func TestSubscriptions(t *testing.T) {
	db, m := setup(t)
	ctx := context.Background()
	reader := mkUser(t, db, "reader")
	zed := mkUser(t, db, "zed")
	amy := mkUser(t, db, "amy")
	mkUser(t, db, "stranger")

	for _, name := range []string{"z1", "z2", "z3"} {
		mkRecipe(t, db, zed, name)
	}
	mkRecipe(t, db, amy, "a1")

	for _, author := range []users.Viewer{zed, amy} {
		if _, err := m.Follow(ctx, reader, author.ID); err != nil {
			t.Fatal(err)
		}
	}

	subs, total, err := m.Subscriptions(ctx, reader, 0, 10, 2)
	if err != nil {
		t.Fatalf("Subscriptions: %v", err)
	}
	if total != 2 || len(subs) != 2 {
		t.Fatalf("total = %d, len = %d, want 2", total, len(subs))
	}
	if subs[0].Username != "amy" || subs[1].Username != "zed" {
		t.Errorf("order = %s, %s; want amy, zed", subs[0].Username, subs[1].Username)
	}
	z := subs[1]
	if !z.IsSubscribed || z.RecipesCount != 3 || len(z.Recipes) != 2 {
		t.Errorf("zed = %+v, want subscribed, count 3, 2 previews", z)
	}
	if z.Recipes[0].Name != "z3" {
		t.Errorf("newest recipe first, got %q", z.Recipes[0].Name)
	}

	unlimited, _, err := m.Subscriptions(ctx, reader, 1, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(unlimited) != 1 || len(unlimited[0].Recipes) != 3 {
		t.Errorf("second page = %+v, want zed with all recipes", unlimited)
	}

	none, _, err := m.Subscriptions(ctx, reader, 1, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 1 || len(none[0].Recipes) != 0 || none[0].RecipesCount != 3 {
		t.Errorf("recipes_limit 0 = %+v, want empty preview with full count", none)
	}

	if _, _, err := m.Subscriptions(ctx, users.Viewer{}, 0, 10, -1); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous: err = %v", err)
	}
}
