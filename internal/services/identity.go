package services

// Identity désigne le propriétaire d'un panier: soit un utilisateur
// authentifié (UserID), soit une session anonyme (SessionToken). Jamais les
// deux à la fois — le middleware remplit exactement un des champs et chaque
// opération panier la reçoit explicitement en paramètre.
type Identity struct {
	UserID       string
	SessionToken string
}

func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Anonymous construit l'identité d'une session invitée.
func Anonymous(token string) Identity {
	return Identity{SessionToken: token}
}

// Authenticated construit l'identité d'un utilisateur connecté.
func Authenticated(userID string) Identity {
	return Identity{UserID: userID}
}
