//go:build integration
// +build integration

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresServiceTest 在 PostgreSQL 上装配服务，多连接下依赖行锁
func setupPostgresServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		container, err := pgcontainer.Run(ctx,
			"postgres:16-alpine",
			pgcontainer.WithDatabase("atlas"),
			pgcontainer.WithUsername("postgres"),
			pgcontainer.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			t.Skipf("skip postgres integration test: container unavailable: %v", err)
		}
		t.Cleanup(func() {
			_ = container.Terminate(context.Background())
		})
		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("postgres connection string failed: %v", err)
		}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}
	drop := func() {
		all := models.AllModels()
		for i := len(all) - 1; i >= 0; i-- {
			_ = db.Migrator().DropTable(all[i])
		}
	}
	drop()
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}
	t.Cleanup(func() {
		drop()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return newServiceTestEnv(db)
}

func TestPostgresCheckoutLastUnitManyBuyers(t *testing.T) {
	env := setupPostgresServiceTest(t)
	product := env.createProduct(t, "pg-last", "100.00", true)
	variant := env.createVariant(t, product.ID, "M", constants.ColorBlack, 1)

	const buyers = 8
	users := make([]*models.User, buyers)
	for i := range users {
		users[i] = env.createUser(t, fmt.Sprintf("pg-buyer-%d@atlas.ma", i))
		env.addToCart(t, users[i].ID, product.ID, "M", constants.ColorBlack, 1)
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			<-start
			_, errs[i] = env.checkout.PlaceOrder(context.Background(), placeOrderInput(userID, "FES", ""))
		}(i, u.ID)
	}
	close(start)
	wg.Wait()

	var succeeded, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if succeeded != 1 || outOfStock != buyers-1 {
		t.Fatalf("want 1 success and %d stock failures, got %d/%d", buyers-1, succeeded, outOfStock)
	}
	if got := env.variantQuantity(t, variant.ID); got != 0 {
		t.Fatalf("variant quantity want 0 got %d", got)
	}
	var orders int64
	env.db.Model(&models.Order{}).Count(&orders)
	if orders != 1 {
		t.Fatalf("losing checkouts must roll back their orders, found %d", orders)
	}
}

func TestPostgresCheckoutCrossedCartLinesCommit(t *testing.T) {
	env := setupPostgresServiceTest(t)
	product := env.createProduct(t, "pg-crossed", "50.00", true)
	medium := env.createVariant(t, product.ID, "M", constants.ColorBlack, 20)
	large := env.createVariant(t, product.ID, "L", constants.ColorBlack, 20)

	const rounds = 5
	for round := 0; round < rounds; round++ {
		first := env.createUser(t, fmt.Sprintf("pg-cross-a-%d@atlas.ma", round))
		second := env.createUser(t, fmt.Sprintf("pg-cross-b-%d@atlas.ma", round))
		// 两个购物车的行顺序相反
		env.addToCart(t, first.ID, product.ID, "M", constants.ColorBlack, 1)
		env.addToCart(t, first.ID, product.ID, "L", constants.ColorBlack, 1)
		env.addToCart(t, second.ID, product.ID, "L", constants.ColorBlack, 1)
		env.addToCart(t, second.ID, product.ID, "M", constants.ColorBlack, 1)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := make(chan struct{})
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, userID := range []uint{first.ID, second.ID} {
			wg.Add(1)
			go func(i int, userID uint) {
				defer wg.Done()
				<-start
				_, errs[i] = env.checkout.PlaceOrder(ctx, placeOrderInput(userID, "RABAT", ""))
			}(i, userID)
		}
		close(start)
		wg.Wait()
		cancel()

		for i, err := range errs {
			if err != nil {
				t.Fatalf("round %d checkout %d failed: %v", round, i, err)
			}
		}
	}

	want := 20 - 2*rounds
	if got := env.variantQuantity(t, medium.ID); got != want {
		t.Fatalf("medium quantity want %d got %d", want, got)
	}
	if got := env.variantQuantity(t, large.ID); got != want {
		t.Fatalf("large quantity want %d got %d", want, got)
	}
	var items int64
	env.db.Model(&models.OrderItem{}).Count(&items)
	if items != 4*rounds {
		t.Fatalf("want %d order items got %d", 4*rounds, items)
	}
}
