package middleware

import (
	"net/http"
	"strings"

	"github.com/Tech-xpat/pounds-bosses-ng-sub001/utils"
)

// AdminAuthMiddleware verifies that the request carries an admin bearer
// token. Tokens are issued by the platform's auth service; this side only
// verifies.
func AdminAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: No token provided",
				})
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := utils.ValidateAccessToken(tokenString, jwtSecret)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized: Invalid token",
				})
				return
			}

			role, ok := claims["role"].(string)
			if !ok || role != "admin" {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden: Admin access required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
