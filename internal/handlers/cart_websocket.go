package handlers

import (
	"context"
	"log"
	"net/http"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Le CORS est déjà filtré en amont par le middleware HTTP
	CheckOrigin: func(r *http.Request) bool { return true },
}

type cartSnapshot struct {
	Event string            `json:"event"`
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

//
// 🟢 GET /api/cart/ws
//
// Pousse l'état du panier à chaque modification, sur tous les onglets
// ouverts. Chaque identité (invité ou connecté) a son canal Redis.
func CartWebSocket(c *gin.Context) {
	id := IdentityFromContext(c)
	channel := "cart:" + id.SessionToken
	if id.Authenticated() {
		channel = "cart:" + id.UserID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Upgrade websocket échoué: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := database.Redis.Subscribe(ctx, channel)
	defer sub.Close()

	// La boucle de lecture ne sert qu'à détecter la fermeture côté client
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// État initial à la connexion
	if err := pushCartState(ctx, conn, id, "connected"); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			if err := pushCartState(ctx, conn, id, msg.Payload); err != nil {
				return
			}
		}
	}
}

func pushCartState(ctx context.Context, conn *websocket.Conn, id services.Identity, event string) error {
	items, err := cartService.Lines(ctx, id)
	if err != nil {
		log.Printf("⚠️ Lecture panier pour websocket échouée: %v", err)
		items = []models.CartItem{}
	}

	return conn.WriteJSON(cartSnapshot{
		Event: event,
		Items: items,
		Total: models.CartTotal(items),
		Count: len(items),
	})
}
