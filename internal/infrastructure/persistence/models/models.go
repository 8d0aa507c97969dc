// Package models holds the gorm persistence models, the anti-corruption
// layer between the domain and the database.
package models

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&TenantModel{},
		&PlanModel{},
		&SubscriptionModel{},
		&PaymentTransactionModel{},
		&EmployeeModel{},
	}
}
