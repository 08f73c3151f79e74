package views

import (
	"context"

	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/google/uuid"
)

// Repository persists view rows. Implementations are bound to one dbx.DBTX,
// so every call made through a transactional handle joins that transaction.
type Repository interface {
	Create(ctx context.Context, row *models.ViewRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ViewRow, error)
	SelectBelongTo(ctx context.Context, parentID uuid.UUID) ([]*models.ViewRow, error)
	Update(ctx context.Context, u *models.ViewUpdate) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
