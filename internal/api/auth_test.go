package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-marketplace-backend/internal/workflow"
)

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthRejectsWrongSignature(t *testing.T) {
	r := setupRouter(t)

	forged := signWith(t, "some-other-secret", jwt.MapClaims{
		"sub": 1, "role": "merchant", "name": "x",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doJSON(t, r, http.MethodGet, "/hotels/my", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	r := setupRouter(t)

	expired := signWith(t, testSecret, jwt.MapClaims{
		"sub": 1, "role": "merchant", "name": "x",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	w := doJSON(t, r, http.MethodGet, "/hotels/my", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMissingClaims(t *testing.T) {
	r := setupRouter(t)

	// No role claim at all.
	anonymous := signWith(t, testSecret, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doJSON(t, r, http.MethodGet, "/hotels/my", anonymous, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAcceptsStringSubject(t *testing.T) {
	r := setupRouter(t)

	// Some issuers encode the subject as a numeric string.
	token := signWith(t, testSecret, jwt.MapClaims{
		"sub": "42", "role": "merchant", "name": "华住集团",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id := submitListing(t, r, token)

	w := doJSON(t, r, http.MethodGet, "/hotels/my", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	hotels := decode(t, w)["hotels"].([]interface{})
	require.Len(t, hotels, 1)
	assert.Equal(t, float64(id), hotels[0].(map[string]interface{})["id"])
}

func TestActorFromClaimsRoles(t *testing.T) {
	actor, err := actorFromClaims(jwt.MapClaims{"sub": float64(9), "role": "admin", "name": "运营"})
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleAdmin, actor.Role)
	assert.Equal(t, int64(9), actor.ID)

	_, err = actorFromClaims(jwt.MapClaims{"sub": float64(9), "role": "superuser"})
	assert.Error(t, err)

	_, err = actorFromClaims(jwt.MapClaims{"role": "merchant"})
	assert.Error(t, err)
}
