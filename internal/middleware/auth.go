package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/relieflink/disaster-response-api/internal/logger"
)

// User is the authenticated caller stored in request locals.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Mock authentication - replace with a real identity provider before
// production use.
var mockUsers = map[string]User{
	"netrunnerX":   {ID: "netrunnerX", Role: "admin"},
	"reliefAdmin":  {ID: "reliefAdmin", Role: "admin"},
	"contributor1": {ID: "contributor1", Role: "contributor"},
	"citizen1":     {ID: "citizen1", Role: "user"},
	"anonymous":    {ID: "anonymous", Role: "user"},
}

var roleHierarchy = map[string]int{
	"user":        1,
	"contributor": 2,
	"admin":       3,
}

const userLocalsKey = "user"

// HasRole reports whether the user meets or exceeds the given role.
func (u User) HasRole(role string) bool {
	return roleHierarchy[u.Role] >= roleHierarchy[role] && roleHierarchy[role] > 0
}

// Authenticate resolves the x-user-id header against the mock user table,
// defaulting to citizen1 when absent.
func Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("x-user-id")
		if userID == "" {
			userID = "citizen1"
		}

		user, ok := mockUsers[userID]
		if !ok {
			logger.GetLogger("auth").Warnf("authentication failed for user: %s", userID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid user",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// Authorize requires at least the given role; runs after Authenticate.
func Authorize(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(userLocalsKey).(User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "User not authenticated",
			})
		}

		userLevel, okUser := roleHierarchy[user.Role]
		requiredLevel, okRequired := roleHierarchy[requiredRole]
		if !okUser || !okRequired {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid role configuration",
			})
		}

		if userLevel < requiredLevel {
			logger.GetLogger("auth").Warnf("authorization failed: %s tried to access %s resource", user.Role, requiredRole)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// CurrentUser returns the authenticated user from locals.
func CurrentUser(c *fiber.Ctx) User {
	if user, ok := c.Locals(userLocalsKey).(User); ok {
		return user
	}
	return mockUsers["anonymous"]
}
