package security

import (
	"testing"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/user"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTokenRoundTrip(t *testing.T) {
	u := &user.User{
		ID:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Username: "alice",
		Role:     user.RoleUser,
	}

	token, err := GenerateUserToken(u, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)

	principal := GetPrincipalFromClaims(claims)
	require.NotNil(t, principal)
	assert.Equal(t, u.ID, principal.ID)
	assert.Equal(t, u.Username, principal.Username)
	assert.Equal(t, u.Role, principal.Role)
}

func TestValidateJWT_RejectsWrongSecret(t *testing.T) {
	u := &user.User{ID: "u-1", Username: "alice", Role: user.RoleUser}

	token, err := GenerateUserToken(u, "secret-a")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestValidateJWT_RejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":      "u-1",
		"username": "alice",
		"role":     user.RoleUser,
		"type":     "user_auth",
		"iat":      time.Now().Add(-48 * time.Hour).Unix(),
		"exp":      time.Now().Add(-24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(token, "test-secret")
	assert.Error(t, err)
}

func TestGetPrincipalFromClaims_RejectsWrongTokenType(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":      "u-1",
		"username": "alice",
		"role":     user.RoleUser,
		"type":     "refresh",
	}
	assert.Nil(t, GetPrincipalFromClaims(claims))
}

func TestGetPrincipalFromClaims_RejectsMissingFields(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "u-1",
		"type": "user_auth",
	}
	assert.Nil(t, GetPrincipalFromClaims(claims))
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateULID()
		assert.Len(t, id, 26)
		assert.False(t, seen[id], "ULIDs must be unique")
		seen[id] = true
	}
}
