//go:build integration

package database_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("docker not available")
	}

	ctx = context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "foodgram",
				"POSTGRES_PASSWORD": "foodgram",
				"POSTGRES_DB":       "foodgram",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}
	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "foodgram",
		Password:        "foodgram",
		Name:            "foodgram",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
		SlowThreshold:   time.Second,
	}
}

func TestPostgresSchema(t *testing.T) {
	cfg := startPostgres(t)
	if err := database.Connect(cfg); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(database.DB) })
	db := database.DB

	if err := database.Migrate(db, recipes.AllModels()...); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	ctx := context.Background()

	chef, err := users.Register(ctx, db, users.RegisterInput{Email: "chef@example.com", Username: "chef", Password: "password1"})
	if err != nil {
		t.Fatal(err)
	}
	flour := recipes.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	if err := db.Create(&flour).Error; err != nil {
		t.Fatal(err)
	}
	dup := recipes.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	if err := db.Create(&dup).Error; !database.IsDuplicate(err) {
		t.Errorf("duplicate ingredient: err = %v, want translated duplicate key", err)
	}

	tag := recipes.Tag{Name: "Baking", Color: "#E26C2D", Slug: "baking"}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}
	viewer := users.ViewerOf(chef)
	for _, amount := range []int{200, 100} {
		r, err := recipes.Create(ctx, db, viewer, recipes.RecipeInput{
			Name: "Bread", Text: "Bake", Image: "http://x/b.jpg", CookingTime: 40,
			Tags:        []uint{tag.ID},
			Ingredients: []recipes.IngredientLine{{ID: flour.ID, Amount: amount}},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := db.Table(recipes.ShoppingCartsTable).Create(&recipes.RecipeLink{UserID: chef.ID, RecipeID: r.ID}).Error; err != nil {
			t.Fatal(err)
		}
	}

	list, err := recipes.BuildShoppingList(ctx, db, viewer)
	if err != nil {
		t.Fatal(err)
	}
	if list != "* Flour (g) - 300" {
		t.Errorf("shopping list = %q", list)
	}

	err = db.Exec("INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, now())", chef.ID, chef.ID).Error
	if err == nil || !strings.Contains(err.Error(), "chk_follow_not_self") {
		t.Errorf("self follow: err = %v, want check violation", err)
	}
}
