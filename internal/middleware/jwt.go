package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}
	return []byte(secret)
}

// parseToken valide le JWT et pose user_id / email / role dans le contexte
// gin. Retourne false si le token est absent ou invalide.
func parseToken(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	if exp, ok := claims["exp"].(float64); ok && time.Now().Unix() > int64(exp) {
		return false
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return false
	}

	c.Set("user_id", userID)
	c.Set("email", claims["email"])
	c.Set("role", claims["role"])
	return true
}

// AuthRequired refuse la requête sans JWT valide.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !parseToken(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant ou invalide"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth pose l'identité si un JWT valide est présent, mais laisse
// passer les anonymes. Les routes panier s'en servent: un invité garde son
// panier de session, un connecté son panier persisté.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parseToken(c)
		c.Next()
	}
}
