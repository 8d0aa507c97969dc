package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Pagination defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Table names
const (
	TableTenants             = "tenants"
	TablePlans               = "plans"
	TableSubscriptions       = "subscriptions"
	TablePaymentTransactions = "payment_transactions"
	TableEmployees           = "employees"
)

// Context keys set by the auth middleware
const (
	ContextKeyUserID    = "user_id"
	ContextKeyActorKind = "actor_kind"
	ContextKeyActorID   = "actor_id"
	ContextKeyTenantID  = "tenant_id"
	ContextKeyRole      = "role"
)

// Roles recognised by the authorization policy
const (
	RoleTenant   = "tenant"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
	RoleSupAdmin = "supadmin"
)
