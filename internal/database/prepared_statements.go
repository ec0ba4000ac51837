package database

import (
	"time"

	"github.com/gocql/gocql"
)

// Requêtes des chemins chauds (catalogue, panier, login). gocql prépare un
// statement à sa première exécution et le garde en cache par session:
// construire une Query neuve à chaque appel ne re-prépare rien. Une
// gocql.Query ne se partage pas entre goroutines — Bind mute la requête en
// place — donc jamais de Query globale réutilisée.

const (
	cqlProductByID = `SELECT product_id, name, description, price, stock, sku, category, image_urls, tags, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`
	cqlCartLines = `SELECT product_id, name, price, image_url, quantity
		FROM carts_by_user WHERE user_id = ?`
	cqlUserByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"
	cqlUserByID    = "SELECT email, password, name, role FROM users WHERE user_id = ?"
	cqlInsertUser  = `INSERT INTO users (user_id, email, password, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	cqlInsertUserEmail = "INSERT INTO users_by_email (email, user_id) VALUES (?, ?)"
)

// QueryProductByID retourne la requête de lecture d'un produit
func QueryProductByID(productID gocql.UUID) (*gocql.Query, error) {
	session, err := GetProductsSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlProductByID, productID), nil
}

// QueryCartLines retourne la requête de lecture du panier persisté
func QueryCartLines(userID string) (*gocql.Query, error) {
	session, err := GetCartsSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlCartLines, userID), nil
}

// QueryUserByEmail retourne la requête de résolution e-mail → user_id
func QueryUserByEmail(email string) (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlUserByEmail, email), nil
}

// QueryUserByID retourne la requête de lecture d'un profil utilisateur
func QueryUserByID(userID string) (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlUserByID, userID), nil
}

// InsertUserQuery retourne la requête d'insertion d'un compte
func InsertUserQuery(userID, email, password, name, role string, createdAt time.Time) (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUser, userID, email, password, name, role, createdAt), nil
}

// InsertUserEmailQuery retourne la requête d'insertion de l'index par e-mail
func InsertUserEmailQuery(email, userID string) (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUserEmail, email, userID), nil
}
