package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// RequireSubject ensures the caller is authenticated as one of the allowed subject types.
// With no types given any authenticated caller passes.
func RequireSubject(allowed ...domain.SubjectType) fiber.Handler {
	allowedSet := make(map[domain.SubjectType]struct{}, len(allowed))
	for _, kind := range allowed {
		allowedSet[kind] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errorutil.NewAuthentication("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.SubjectType]; !exists {
			return errorutil.NewAuthorization("insufficient subject type")
		}
		return c.Next()
	}
}
