package users

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
	created := testdb.MustCreateUser(t, conn, enums.UserRoleCustomer)

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Role != enums.UserRoleCustomer || byID.Email != created.Email {
		t.Fatalf("unexpected user %+v", byID)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
