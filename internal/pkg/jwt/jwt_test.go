package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc, err := NewJWTService("secret", "1h")
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", RoleAdmin)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	employeeID, ok := decoded.Get(ClaimEmployeeID)
	require.True(t, ok)
	assert.Equal(t, "emp-1", employeeID)

	role, ok := decoded.Get(ClaimRole)
	require.True(t, ok)
	assert.Equal(t, string(RoleAdmin), role)
}

func TestGenerateAccessToken_RequiresEmployee(t *testing.T) {
	svc, err := NewJWTService("secret", "1h")
	require.NoError(t, err)

	_, _, err = svc.GenerateAccessToken("", RoleEmployee)
	assert.Error(t, err)
}

func TestNewJWTService_InvalidExpiration(t *testing.T) {
	_, err := NewJWTService("secret", "soon")
	assert.Error(t, err)

	_, err = NewJWTService("secret", "-1h")
	assert.Error(t, err)
}

func TestDecode_RejectsOtherSecret(t *testing.T) {
	a, err := NewJWTService("secret-a", "1h")
	require.NoError(t, err)
	b, err := NewJWTService("secret-b", "1h")
	require.NoError(t, err)

	token, _, err := a.GenerateAccessToken("emp-1", RoleEmployee)
	require.NoError(t, err)

	_, err = b.JWTAuth().Decode(token)
	assert.Error(t, err)
}
