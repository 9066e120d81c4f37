package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"teamforge/internal/identity"
	"teamforge/utils"
)

const actorKey = "actor"

// Authenticate resolves the bearer token on each request to the acting user
// and stores it for ActorFrom. Requests without a token continue anonymously;
// a token that does not resolve is rejected with 401.
func Authenticate(provider identity.Provider, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		actor, err := provider.CurrentActor(c.UserContext(), token)
		if err != nil {
			log.WithFields(logrus.Fields{
				"request_id": c.Locals(RequestIDKey),
				"error":      err.Error(),
			}).Warn("Rejected credential")
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "invalid or expired credential")
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor resolved by Authenticate, or the anonymous actor.
func ActorFrom(c *fiber.Ctx) uuid.NullUUID {
	actor, _ := c.Locals(actorKey).(uuid.NullUUID)
	return actor
}
