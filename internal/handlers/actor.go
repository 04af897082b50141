package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// actorFromRequest reads the identity the API gateway injected upstream.
// X-Actor-Role carries the role, X-User-ID the authenticated user. An absent
// role defaults to patient, the least privileged. The system role is never
// accepted from a header: it exists only for internal callers (payment
// finalization, the delivery sweeper), and honoring it here would let any
// caller confirm an unpaid order.
func actorFromRequest(c *fiber.Ctx) (domain.Actor, error) {
	role := domain.ActorRole(c.Get("X-Actor-Role", string(domain.RolePatient)))
	if !role.Valid() || role == domain.RoleSystem {
		return domain.Actor{}, fiber.NewError(fiber.StatusBadRequest, "unknown actor role")
	}

	actor := domain.Actor{Role: role}
	if raw := c.Get("X-User-ID"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Actor{}, fiber.NewError(fiber.StatusBadRequest, "invalid user ID header")
		}
		actor.UserID = userID
	}
	if role == domain.RolePatient && actor.UserID == 0 {
		return domain.Actor{}, fiber.NewError(fiber.StatusBadRequest, "missing user ID header")
	}
	return actor, nil
}
