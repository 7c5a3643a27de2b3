package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"leavedesk/internal/shared/apperror"
	"leavedesk/internal/shared/contextutil"
	"leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyEmployeeID = "employee_id"
	keyRole       = "role"
)

// EmployeeID returns the authenticated employee id set by AuthMiddleware.
func EmployeeID(c *gin.Context) string {
	return c.GetString(keyEmployeeID)
}

func Role(c *gin.Context) string {
	return c.GetString(keyRole)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "token not found")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			message := "invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				message = "token expired"
			}
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, message)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "employee id not found in token")
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set(keyEmployeeID, employeeID)
		c.Set(keyRole, role)

		ctx := contextutil.WithActorID(c.Request.Context(), employeeID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorRole := Role(c)
		if actorRole == "" {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "role not present")
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if actorRole == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "insufficient role")
		c.Abort()
	}
}
