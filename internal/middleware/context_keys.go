package middleware

import "github.com/gin-gonic/gin"

// actorKey is the key used to store the acting user's ID in the Gin context.
const actorKey = contextKey("actorID")

// actorHeader is set by the authenticating gateway in front of this service.
const actorHeader = "X-Actor-ID"

// SystemActor is recorded on audit fields for scheduler-driven mutations.
const SystemActor = "system"

// ActorMiddleware captures the acting user's ID from the gateway header so
// audit fields can attribute mutations. Authentication itself happens
// upstream; an absent header falls back to the system actor.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(actorHeader)
		if actor == "" {
			actor = SystemActor
		}
		c.Set(string(actorKey), actor)
		c.Next()
	}
}

// GetActorFromContext retrieves the acting user ID from the Gin context.
func GetActorFromContext(c *gin.Context) string {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return SystemActor
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return SystemActor
	}
	return actor
}
