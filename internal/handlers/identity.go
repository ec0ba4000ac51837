package handlers

import (
	"context"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// IdentityFromContext reconstruit l'identité panier posée par les
// middlewares: user_id si un JWT valide est passé, sinon le jeton de session
// invité. L'identité est ensuite passée explicitement aux services — aucun
// service ne lit le contexte HTTP lui-même.
func IdentityFromContext(c *gin.Context) services.Identity {
	if userID := c.GetString("user_id"); userID != "" {
		return services.Authenticated(userID)
	}
	return services.Anonymous(c.GetString("session_token"))
}

// PublishCartUpdate notifie le canal Redis du panier pour la synchro
// websocket. Best effort.
func PublishCartUpdate(ctx context.Context, id services.Identity, event string) {
	channel := "cart:" + id.SessionToken
	if id.Authenticated() {
		channel = "cart:" + id.UserID
	}
	database.Redis.Publish(ctx, channel, event)
}
