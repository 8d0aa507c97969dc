package db

import (
	"gorm.io/gorm"
)

// ForTenant restricts a query to rows owned by tenantID.
//
//	db.Model(&models.SubscriptionModel{}).Scopes(db.ForTenant(id)).Find(&rows)
func ForTenant(tenantID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// WithStatus filters on the status column. No statuses means no filter.
func WithStatus(statuses ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch len(statuses) {
		case 0:
			return db
		case 1:
			return db.Where("status = ?", statuses[0])
		default:
			return db.Where("status IN ?", statuses)
		}
	}
}

// Paginate applies offset/limit for 1-based page numbers.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
