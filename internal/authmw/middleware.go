package authmw

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/utils"
)

// gin context keys set by RequireRoles
const (
	KeyAccessToken = "auth.access_token"
	KeyUserID      = "auth.user_id"
	KeyEmail       = "auth.email"
	KeyName        = "auth.name"
	KeyRoles       = "auth.roles"
	KeyRole        = "auth.role"
)

var ErrMissingToken = errors.New("missing access token")

type KeycloakAuth struct {
	Issuer   string // e.g. http://localhost:8080/realms/tracker
	Audience string // checked only when set
	ClientID string // client roles live under resource_access[ClientID]

	JWKS   *keyfunc.JWKS
	Leeway time.Duration
}

// NewKeycloakAuth fetches the realm keys once; keyfunc refreshes them in the
// background.
func NewKeycloakAuth(jwksURL, issuer, audience, clientID string) (*KeycloakAuth, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute * 5,
		RefreshTimeout:   time.Second * 10,
	})
	if err != nil {
		return nil, err
	}

	return NewKeycloakAuthWithJWKS(jwks, issuer, audience, clientID), nil
}

func NewKeycloakAuthWithJWKS(jwks *keyfunc.JWKS, issuer, audience, clientID string) *KeycloakAuth {
	return &KeycloakAuth{
		Issuer:   issuer,
		Audience: audience,
		ClientID: clientID,
		JWKS:     jwks,
		Leeway:   30 * time.Second,
	}
}

type KCClaims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`

	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`

	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// Roles merges realm roles with the roles of clientID.
func (c *KCClaims) Roles(clientID string) []string {
	return collectRoles(c, clientID)
}

// Identity is the caller as seen by handlers.
type Identity struct {
	UserID      string
	Email       string
	Name        string
	Roles       []string
	Role        models.Role
	AccessToken string
}

// Verify parses and validates a raw access token.
func (a *KeycloakAuth) Verify(tokenStr string) (*KCClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(a.Issuer),
		jwt.WithLeeway(a.Leeway),
		jwt.WithValidMethods([]string{"RS256"}),
	}
	if a.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.Audience))
	}

	claims := &KCClaims{}
	if _, err := jwt.ParseWithClaims(tokenStr, claims, a.JWKS.Keyfunc, opts...); err != nil {
		return nil, err
	}

	return claims, nil
}

func (a *KeycloakAuth) RequireRoles(anyOf ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extractAccessToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := a.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		roles := claims.Roles(a.ClientID)
		name := claims.Name
		if name == "" {
			name = claims.PreferredUsername
		}

		c.Set(KeyAccessToken, tokenStr)
		c.Set(KeyUserID, claims.Subject)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyName, name)
		c.Set(KeyRoles, roles)
		c.Set(KeyRole, string(PrimaryRole(roles)))

		if !hasAnyRole(roles, anyOf...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}

// IdentityFrom reads what RequireRoles stored on the context.
func IdentityFrom(c *gin.Context) Identity {
	return Identity{
		UserID:      c.GetString(KeyUserID),
		Email:       c.GetString(KeyEmail),
		Name:        c.GetString(KeyName),
		Roles:       c.GetStringSlice(KeyRoles),
		Role:        models.Role(c.GetString(KeyRole)),
		AccessToken: c.GetString(KeyAccessToken),
	}
}

// PrimaryRole picks the strongest tracker role among roles; athlete when
// none is present.
func PrimaryRole(roles []string) models.Role {
	switch {
	case utils.Contains(roles, string(models.RoleAdmin)):
		return models.RoleAdmin
	case utils.Contains(roles, string(models.RoleCoach)):
		return models.RoleCoach
	default:
		return models.RoleAthlete
	}
}

func extractAccessToken(c *gin.Context) (string, error) {
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[7:]), nil
	}

	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie, nil
	}

	return "", ErrMissingToken
}

func collectRoles(claims *KCClaims, clientID string) []string {
	out := make([]string, 0, 16)
	out = append(out, claims.RealmAccess.Roles...)

	if clientID != "" && claims.ResourceAccess != nil {
		if ra, ok := claims.ResourceAccess[clientID]; ok {
			out = append(out, ra.Roles...)
		}
	}

	return utils.Uniq(out)
}

// admin passes every role check
func hasAnyRole(userRoles []string, anyOf ...models.Role) bool {
	if utils.Contains(userRoles, string(models.RoleAdmin)) {
		return true
	}
	for _, required := range anyOf {
		if utils.Contains(userRoles, string(required)) {
			return true
		}
	}

	return false
}
