package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 3306, Username: "app", Password: "secret", Database: "tenancy"}

	dsn := d.GetDSN()

	assert.Contains(t, dsn, "app:secret@tcp(db:3306)/tenancy?")
	assert.Contains(t, dsn, "parseTime=true")
	// Version-guarded updates must see matched rows even when no column changes.
	assert.Contains(t, dsn, "clientFoundRows=true")
}
