package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/internal/testdb"
	"github.com/yumhub/yumhub-backend/pkg/enums"
)

func TestRepositoryFindByID(t *testing.T) {
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	owner := testdb.MustCreateUser(t, conn, enums.UserRoleOwner)
	first := testdb.MustCreateStore(t, conn, owner.ID)
	testdb.MustCreateStore(t, conn, uuid.New())

	got, err := repo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if got.OwnerUserID != owner.ID {
		t.Fatalf("unexpected owner %s", got.OwnerUserID)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
