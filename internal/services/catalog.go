package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	productCacheTTL = 10 * time.Minute

	// Nombre d'essais du compare-and-set sur le stock avant d'abandonner.
	// Chaque échec signifie qu'un autre checkout a touché la même ligne
	// entre notre lecture et notre écriture.
	maxStockRetries = 5
)

// Catalog est la vue du catalogue dont ont besoin le panier et le checkout.
type Catalog interface {
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
	RestoreStock(ctx context.Context, productID string, quantity int) error
}

// ScyllaCatalog lit et écrit les produits dans le keyspace products, avec un
// cache Redis en lecture.
type ScyllaCatalog struct{}

func NewScyllaCatalog() *ScyllaCatalog {
	return &ScyllaCatalog{}
}

func parseProductUUID(productID string) (gocql.UUID, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return gocql.UUID{}, ErrProductNotFound
	}
	return gocql.UUID(pid), nil
}

// GetByID récupère un produit depuis Redis ou ScyllaDB.
func (c *ScyllaCatalog) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	key := "product:" + productID
	if data, err := database.Redis.Get(ctx, key).Result(); err == nil && data != "" {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	productUUID, err := parseProductUUID(productID)
	if err != nil {
		return nil, err
	}

	query, err := database.QueryProductByID(productUUID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = query.WithContext(ctx).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
		&product.SKU, &product.Category, &product.ImageURLs, &product.Tags,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %v", productID, err)
	}

	if data, err := json.Marshal(product); err == nil {
		database.Redis.Set(ctx, key, data, productCacheTTL)
	}

	return &product, nil
}

// ListPaged retourne une page de produits et le total du catalogue.
// Scylla ne sait pas paginer par offset: on itère et on saute, le catalogue
// d'une boutique de vêtements reste petit.
func (c *ScyllaCatalog) ListPaged(ctx context.Context, page, pageSize int) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 12
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return nil, 0, err
	}

	iter := session.Query(`SELECT product_id, name, description, price, stock, sku, category, image_urls, tags, is_active, created_at, updated_at
		FROM products`).WithContext(ctx).Iter()

	var all []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.SKU,
		&p.Category, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		all = append(all, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, 0, fmt.Errorf("listing produits: %v", err)
	}

	total := len(all)
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Product{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Create insère un nouveau produit.
func (c *ScyllaCatalog) Create(ctx context.Context, product *models.Product) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	now := time.Now()
	product.ID = gocql.UUID(uuid.New())
	product.CreatedAt = now
	product.UpdatedAt = now
	if !product.IsActive {
		product.IsActive = true
	}

	return session.Query(`INSERT INTO products (product_id, name, description, price, stock, sku, category, image_urls, tags, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price, product.Stock,
		product.SKU, product.Category, product.ImageURLs, product.Tags,
		product.IsActive, product.CreatedAt, product.UpdatedAt).WithContext(ctx).Exec()
}

// Update réécrit les champs modifiables d'un produit et invalide le cache.
func (c *ScyllaCatalog) Update(ctx context.Context, product *models.Product) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	product.UpdatedAt = time.Now()
	err = session.Query(`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, sku = ?, category = ?, image_urls = ?, tags = ?, is_active = ?, updated_at = ?
		WHERE product_id = ?`,
		product.Name, product.Description, product.Price, product.Stock, product.SKU,
		product.Category, product.ImageURLs, product.Tags, product.IsActive,
		product.UpdatedAt, product.ID).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	database.Redis.Del(ctx, "product:"+product.ID.String())
	return nil
}

// Delete supprime un produit du catalogue. Les commandes passées gardent
// leurs instantanés et ne sont pas affectées.
func (c *ScyllaCatalog) Delete(ctx context.Context, productID string) error {
	productUUID, err := parseProductUUID(productID)
	if err != nil {
		return err
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	if err := session.Query("DELETE FROM products WHERE product_id = ?", productUUID).WithContext(ctx).Exec(); err != nil {
		return err
	}

	database.Redis.Del(ctx, "product:"+productID)
	return nil
}

// DecrementStock retire quantity unités du stock via un compare-and-set
// (LWT). Le stock ne passe jamais sous zéro: deux checkouts concurrents sur
// le même produit ne peuvent pas survendre.
func (c *ScyllaCatalog) DecrementStock(ctx context.Context, productID string, quantity int) error {
	return c.adjustStock(ctx, productID, -quantity)
}

// RestoreStock rend quantity unités au stock (compensation d'un checkout
// interrompu, jamais appelé sur une annulation de commande).
func (c *ScyllaCatalog) RestoreStock(ctx context.Context, productID string, quantity int) error {
	return c.adjustStock(ctx, productID, quantity)
}

func (c *ScyllaCatalog) adjustStock(ctx context.Context, productID string, delta int) error {
	productUUID, err := parseProductUUID(productID)
	if err != nil {
		return err
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxStockRetries; attempt++ {
		var stock int
		err := session.Query("SELECT stock FROM products WHERE product_id = ?", productUUID).
			WithContext(ctx).Scan(&stock)
		if err == gocql.ErrNotFound {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("lecture stock %s: %v", productID, err)
		}

		newStock := stock + delta
		if newStock < 0 {
			return ErrInsufficientStock
		}

		var previous int
		applied, err := session.Query("UPDATE products SET stock = ? WHERE product_id = ? IF stock = ?",
			newStock, productUUID, stock).WithContext(ctx).ScanCAS(&previous)
		if err != nil {
			return fmt.Errorf("mise à jour stock %s: %v", productID, err)
		}
		if applied {
			database.Redis.Del(ctx, "product:"+productID)
			return nil
		}

		log.Printf("⚠️ CAS stock perdu pour %s (tentative %d), on réessaie", productID, attempt+1)
	}

	return fmt.Errorf("stock de %s trop disputé, abandon après %d tentatives", productID, maxStockRetries)
}
