// Package testdb opens throwaway databases and seeds fixtures for repository and service tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
	"github.com/yumhub/yumhub-backend/pkg/enums"
	"github.com/yumhub/yumhub-backend/pkg/migrate"
)

// Open returns an in-memory sqlite database private to t with every model migrated.
// The pool is capped at one connection so a transaction never contends with a
// second connection on the shared cache.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

func MustCreateUser(t *testing.T, tx *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("yh_test_%s@example.com", uuid.NewString()),
		Name:  "Test " + role.String(),
		Role:  role,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func MustCreateStore(t *testing.T, tx *gorm.DB, ownerID uuid.UUID) *models.Store {
	t.Helper()
	store := &models.Store{
		ID:          uuid.New(),
		Name:        "Test Kitchen",
		OwnerUserID: ownerID,
	}
	if err := tx.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func MustCreateMenu(t *testing.T, tx *gorm.DB, storeID uuid.UUID, name string, price int64) *models.Menu {
	t.Helper()
	menu := &models.Menu{
		ID:      uuid.New(),
		StoreID: storeID,
		Name:    name,
		Price:   price,
	}
	if err := tx.Create(menu).Error; err != nil {
		t.Fatalf("create menu: %v", err)
	}
	return menu
}

func MustCreateCart(t *testing.T, tx *gorm.DB, userID uuid.UUID) *models.Cart {
	t.Helper()
	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	if err := tx.Create(cart).Error; err != nil {
		t.Fatalf("create cart: %v", err)
	}
	return cart
}
