package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/db"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// EmployeeCounter counts a tenant's live managed records. Soft-deleted rows
// are excluded by gorm's default scope.
type EmployeeCounter struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewEmployeeCounter(db *gorm.DB, logger logger.Interface) *EmployeeCounter {
	return &EmployeeCounter{db: db, logger: logger}
}

func (c *EmployeeCounter) Count(ctx context.Context, tenantID uint) (int, error) {
	var count int64
	err := db.GetTxFromContext(ctx, c.db).
		Model(&models.EmployeeModel{}).
		Scopes(db.ForTenant(tenantID)).
		Count(&count).Error
	if err != nil {
		c.logger.Errorw("failed to count employees", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return int(count), nil
}
