package middleware

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName     = "vetra_session"
	sessionTokenKey = "cart_token"
)

var sessionStore *sessions.CookieStore

// InitSessionStore configure le cookie de session qui porte le jeton de
// panier invité.
func InitSessionStore() {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	sessionStore = sessions.NewCookieStore([]byte(secret))
	sessionStore.MaxAge(86400 * 30)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   false, // true derrière HTTPS en prod
		SameSite: http.SameSiteLaxMode,
	}
}

// CartSession garantit qu'un jeton de panier existe pour la requête et le
// pose dans le contexte gin sous "session_token". Le jeton identifie le
// panier invité dans Redis; pour un utilisateur connecté il ne sert qu'à la
// fusion au login.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sessionStore.Get(c.Request, sessionName)
		if err != nil {
			// Cookie corrompu: on repart sur une session neuve
			session, _ = sessionStore.New(c.Request, sessionName)
		}

		token, _ := session.Values[sessionTokenKey].(string)
		if token == "" {
			token = uuid.NewString()
			session.Values[sessionTokenKey] = token
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Printf("⚠️ Cookie de session non écrit: %v", err)
			}
		}

		c.Set("session_token", token)
		c.Next()
	}
}

// ResetCartSession remplace le jeton de panier (appelé après la fusion au
// login pour que l'ancienne session ne soit plus jamais re-fusionnée).
func ResetCartSession(c *gin.Context) {
	session, err := sessionStore.Get(c.Request, sessionName)
	if err != nil {
		return
	}
	session.Values[sessionTokenKey] = uuid.NewString()
	if err := session.Save(c.Request, c.Writer); err != nil {
		log.Printf("⚠️ Jeton de session non renouvelé: %v", err)
	}
}
