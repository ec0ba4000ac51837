package models

// CartItem est une ligne de panier. Les champs Name, Price et ImageURL sont
// des instantanés pris au moment de l'ajout : ils ne sont jamais rafraîchis
// depuis le catalogue, même si le produit change ensuite.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
}

// Subtotal retourne quantité × prix instantané.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartTotal calcule le total d'une liste de lignes panier.
func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
