package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vetra_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

const (
	loginMaxAttempts = 5
	loginCooldown    = 15 * time.Minute
	attemptsWindow   = 10 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		cooldownKey := "login_cooldown:" + input.Email

		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Échec de login: on compte; au plafond, cooldown
		if c.Writer.Status() == http.StatusUnauthorized {
			key := "login_attempts:" + input.Email
			attempts := database.Redis.Incr(ctx, key).Val()
			database.Redis.Expire(ctx, key, attemptsWindow)
			if attempts >= loginMaxAttempts {
				database.Redis.Set(ctx, cooldownKey, "1", loginCooldown)
				database.Redis.Del(ctx, key)
			}
		} else if c.Writer.Status() == http.StatusOK {
			database.Redis.Del(ctx, "login_attempts:"+input.Email)
		}
	}
}
