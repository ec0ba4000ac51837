package product

import (
	"errors"
	"net/http"
	"strconv"

	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var catalog = services.NewScyllaCatalog()

//
// 🟢 GET /api/products?page=1&page_size=12
//
func GetAllProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "12"))

	products, total, err := catalog.ListPaged(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

//
// 🟢 GET /api/products/:id
//
func GetProductByID(c *gin.Context) {
	product, err := catalog.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	c.JSON(http.StatusOK, product)
}

//
// 🟢 GET /api/products/search?q=veste
//
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recherche indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

//
// 🟢 POST /api/admin/products
//
func CreateProduct(c *gin.Context) {
	var input struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Price       float64  `json:"price" binding:"required,gt=0"`
		Stock       int      `json:"stock" binding:"gte=0"`
		SKU         string   `json:"sku"`
		Category    string   `json:"category"`
		ImageURLs   []string `json:"image_urls"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		SKU:         input.SKU,
		Category:    input.Category,
		ImageURLs:   input.ImageURLs,
		Tags:        input.Tags,
		IsActive:    true,
	}

	if err := catalog.Create(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// L'index de recherche suit la base, en best effort
	go services.IndexProduct(product)

	c.JSON(http.StatusCreated, product)
}

//
// 🟢 PUT /api/admin/products/:id
//
func UpdateProduct(c *gin.Context) {
	existing, err := catalog.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	var input struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Price       float64  `json:"price" binding:"required,gt=0"`
		Stock       int      `json:"stock" binding:"gte=0"`
		SKU         string   `json:"sku"`
		Category    string   `json:"category"`
		ImageURLs   []string `json:"image_urls"`
		Tags        []string `json:"tags"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.SKU = input.SKU
	existing.Category = input.Category
	existing.ImageURLs = input.ImageURLs
	existing.Tags = input.Tags
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := catalog.Update(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go services.IndexProduct(*existing)

	c.JSON(http.StatusOK, existing)
}

//
// 🟢 DELETE /api/admin/products/:id
//
// Les commandes passées gardent leurs instantanés, seule la fiche disparaît.
func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")
	if _, err := gocql.ParseUUID(productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if err := catalog.Delete(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	go services.RemoveProductFromIndex(productID)

	c.JSON(http.StatusOK, gin.H{"deleted": productID})
}

//
// 🟢 POST /api/admin/products/upload
//
// Reçoit une image multipart et retourne son URL publique MinIO, à mettre
// ensuite dans image_urls du produit.
func UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
