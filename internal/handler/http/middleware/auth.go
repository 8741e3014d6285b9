package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type employeeKey struct{}

// AuthRequired rejects requests without a verified access token and puts the
// token's employee id in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			tokenType, ok := claims[jwt.ClaimType].(string)
			if !ok || tokenType != "access" {
				response.Unauthorized(w, "Invalid token type")
				return
			}

			employeeID, ok := claims[jwt.ClaimEmployeeID].(string)
			if !ok || employeeID == "" {
				response.Forbidden(w, "Employee ID not found in token")
				return
			}

			ctx := context.WithValue(r.Context(), employeeKey{}, employeeID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// EmployeeID returns the authenticated employee set by AuthRequired.
func EmployeeID(ctx context.Context) string {
	id, _ := ctx.Value(employeeKey{}).(string)
	return id
}
