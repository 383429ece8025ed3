package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hotel-marketplace-backend/internal/workflow"
)

const actorContextKey = "actor"

// Auth validates the bearer token and stores the resulting actor in the
// request context. Token issuance lives in the external auth service; this
// middleware only verifies and decodes.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abort(c, http.StatusUnauthorized, "invalid claims")
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRole gates a route group to one role. Ownership checks stay in the
// workflow engine; this only rejects the obviously wrong side early.
func RequireRole(role workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentActor(c).Role != role {
			abort(c, http.StatusForbidden, fmt.Sprintf("%s access only", role))
			return
		}
		c.Next()
	}
}

// CurrentActor returns the authenticated actor for the request.
func CurrentActor(c *gin.Context) workflow.Actor {
	actor, _ := c.MustGet(actorContextKey).(workflow.Actor)
	return actor
}

func actorFromClaims(claims jwt.MapClaims) (workflow.Actor, error) {
	id, err := subjectID(claims["sub"])
	if err != nil {
		return workflow.Actor{}, err
	}

	role, _ := claims["role"].(string)
	switch workflow.Role(role) {
	case workflow.RoleMerchant, workflow.RoleAdmin:
	default:
		return workflow.Actor{}, fmt.Errorf("unknown role %q", role)
	}

	name, _ := claims["name"].(string)

	return workflow.Actor{
		ID:   id,
		Role: workflow.Role(role),
		Name: name,
	}, nil
}

// subjectID accepts the subject claim as either a JSON number or a numeric
// string, which is how the upstream auth service has issued it over time.
func subjectID(sub interface{}) (int64, error) {
	switch v := sub.(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid subject %q", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("missing subject claim")
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
