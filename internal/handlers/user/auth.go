package user

import (
	"log"
	"net/http"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Le service panier sert ici uniquement à la fusion au login.
var cartService = services.NewCartService(
	services.NewScyllaCatalog(),
	services.NewSessionCartBackend(),
	services.NewDBCartBackend(),
)

// lookupUserIDByEmail résout un e-mail en user_id via l'index users_by_email.
func lookupUserIDByEmail(c *gin.Context, email string) (string, error) {
	query, err := database.QueryUserByEmail(email)
	if err != nil {
		return "", err
	}
	var userID string
	err = query.WithContext(c.Request.Context()).Scan(&userID)
	return userID, err
}

// loadUser lit le profil complet d'un utilisateur.
func loadUser(c *gin.Context, userID string) (models.User, error) {
	user := models.User{ID: userID}
	query, err := database.QueryUserByID(userID)
	if err != nil {
		return user, err
	}
	err = query.WithContext(c.Request.Context()).
		Scan(&user.Email, &user.Password, &user.Name, &user.Role)
	return user, err
}

//
// 🟢 POST /api/auth/register
//
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// Email déjà pris ?
	_, err := lookupUserIDByEmail(c, input.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet e-mail"})
		return
	}
	if err != gocql.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	userID := uuid.NewString()
	insert, err := database.InsertUserQuery(userID, input.Email, hash, input.Name, "customer", time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	if err := insert.WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	index, err := database.InsertUserEmailQuery(input.Email, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	if err := index.WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	log.Printf("✅ Nouveau compte: %s", input.Email)
	c.JSON(http.StatusCreated, gin.H{"user_id": userID, "email": input.Email})
}

//
// 🟢 POST /api/auth/login
//
// Authentifie, délivre le JWT, puis verse le panier invité dans le panier
// persisté. Le jeton de session est renouvelé après la fusion: rejouer le
// login avec le même cookie ne compte jamais un article en double.
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	userID, err := lookupUserIDByEmail(c, input.Email)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou mot de passe incorrect"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion"})
		return
	}

	user, err := loadUser(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion"})
		return
	}

	// Fusion du panier invité dans le panier persisté
	sessionToken := c.GetString("session_token")
	if err := cartService.MergeSessionCart(c.Request.Context(), sessionToken, userID); err != nil {
		// La connexion reste valide; le panier invité est simplement conservé
		log.Printf("⚠️ Fusion de panier échouée pour %s: %v", userID, err)
	} else {
		middleware.ResetCartSession(c)
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"user_id": user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
		},
	})
}

//
// 🟢 GET /api/auth/me
//
func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	user, err := loadUser(c, userID)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
	})
}
