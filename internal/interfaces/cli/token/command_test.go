package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/infrastructure/auth"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	sharedConfig "github.com/orris-inc/tenancy/internal/shared/config"
)

var jwtCfg = sharedConfig.JWTConfig{Secret: "s3cret", Issuer: "tenancy", ExpMinutes: 10}

func TestIssue_TenantToken(t *testing.T) {
	signed, err := issue(jwtCfg, 7, "tenant", 42)
	require.NoError(t, err)

	claims, err := auth.NewJWTService(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.ExpMinutes).Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, authorization.RoleTenant, claims.Role)
	assert.Equal(t, uint(42), claims.TenantID)
}

func TestIssue_StaffTokenDropsTenant(t *testing.T) {
	signed, err := issue(jwtCfg, 1, "admin", 42)
	require.NoError(t, err)

	claims, err := auth.NewJWTService(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.ExpMinutes).Verify(signed)
	require.NoError(t, err)
	assert.Zero(t, claims.TenantID)
}

func TestIssue_Rejects(t *testing.T) {
	_, err := issue(jwtCfg, 7, "tenant", 0)
	assert.Error(t, err)

	_, err = issue(jwtCfg, 7, "owner", 1)
	assert.Error(t, err)

	_, err = issue(sharedConfig.JWTConfig{}, 7, "admin", 0)
	assert.Error(t, err)
}
