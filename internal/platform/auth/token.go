package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued session token remains valid.
const TokenTTL = 24 * time.Hour

// Claims is the JWT payload carried by every session token. The claim set
// mirrors the Identity: role plus the scoping references for that role.
type Claims struct {
	jwt.RegisteredClaims
	FullName string   `json:"full_name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Role     string   `json:"role"`
	Clients  []string `json:"clients,omitempty"`
	StaffRef string   `json:"hr,omitempty"`
	Tenant   string   `json:"tenant,omitempty"`
}

// IssueToken signs a session token for the given identity.
func IssueToken(signingKey []byte, id *Identity, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		FullName: id.FullName,
		Email:    id.Email,
		Role:     string(id.Role),
		Tenant:   id.Tenant,
	}
	for _, cid := range id.ClientIDs {
		claims.Clients = append(claims.Clients, cid.String())
	}
	if id.StaffID != nil {
		claims.StaffRef = id.StaffID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

// identityFromClaims rebuilds the caller identity from verified claims.
func identityFromClaims(claims *Claims) (*Identity, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, err
	}
	id := &Identity{
		UserID:   userID,
		FullName: claims.FullName,
		Email:    claims.Email,
		Role:     role,
		Tenant:   claims.Tenant,
	}
	for _, c := range claims.Clients {
		cid, err := uuid.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("invalid client reference: %w", err)
		}
		id.ClientIDs = append(id.ClientIDs, cid)
	}
	if claims.StaffRef != "" {
		sid, err := uuid.Parse(claims.StaffRef)
		if err != nil {
			return nil, fmt.Errorf("invalid hr reference: %w", err)
		}
		id.StaffID = &sid
	}
	return id, nil
}
