package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/authorization"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
)

// Claims identify the caller. Subject is the user id; TenantID is set for
// tenant users and zero for staff.
type Claims struct {
	Role     authorization.UserRole `json:"role"`
	TenantID uint                   `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// Actor maps staff roles to the actor recorded on subscription changes.
// Tenant users act as themselves, which is the none actor.
func (c *Claims) Actor() (vo.Actor, error) {
	if c.Role == authorization.RoleTenant {
		return vo.NoActor(), nil
	}
	id, err := c.UserID()
	if err != nil {
		return vo.Actor{}, err
	}
	switch c.Role {
	case authorization.RoleSeller:
		return vo.SellerActor(id), nil
	case authorization.RoleAdmin:
		return vo.AdminActor(id), nil
	case authorization.RoleSupAdmin:
		return vo.SupAdminActor(id), nil
	default:
		return vo.Actor{}, fmt.Errorf("unknown role: %q", c.Role)
	}
}

type JWTService struct {
	secret     []byte
	issuer     string
	expMinutes int
}

func NewJWTService(secret, issuer string, expMinutes int) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		issuer:     issuer,
		expMinutes: expMinutes,
	}
}

// Generate issues a token; the identity provider normally does this, the
// CLI and tests use it directly.
func (s *JWTService) Generate(userID uint, role authorization.UserRole, tenantID uint) (string, error) {
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role: %q", role)
	}
	if role == authorization.RoleTenant && tenantID == 0 {
		return "", errors.New("tenant tokens require a tenant id")
	}

	now := biztime.NowUTC()
	claims := &Claims{
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("unknown role: %q", claims.Role)
	}
	return claims, nil
}
