package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"
)

// Le panier invité vit dans Redis, sérialisé en JSON sous une clé dérivée du
// jeton de session. Il disparaît avec la session (TTL), rien n'est écrit en
// base pour un visiteur anonyme.
const sessionCartTTL = 30 * 24 * time.Hour

type SessionCartBackend struct{}

func NewSessionCartBackend() *SessionCartBackend {
	return &SessionCartBackend{}
}

func sessionCartKey(token string) string {
	return "cart:session:" + token
}

func (b *SessionCartBackend) Lines(ctx context.Context, token string) ([]models.CartItem, error) {
	data, err := database.Redis.Get(ctx, sessionCartKey(token)).Result()
	if err != nil || data == "" {
		// Pas de clé = panier vide, jamais une erreur
		return []models.CartItem{}, nil
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("panier session illisible: %v", err)
	}
	return items, nil
}

func (b *SessionCartBackend) Save(ctx context.Context, token string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("sérialisation panier session: %v", err)
	}
	return database.Redis.Set(ctx, sessionCartKey(token), data, sessionCartTTL).Err()
}

func (b *SessionCartBackend) Clear(ctx context.Context, token string) error {
	return database.Redis.Del(ctx, sessionCartKey(token)).Err()
}
