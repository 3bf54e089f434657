package authmw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nerzal/gocloak/v13"

	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/models"
)

var ErrInvalidRole = errors.New("invalid role")

// Service wraps the Keycloak flows the gateway and services need.
type Service struct {
	Client       *gocloak.GoCloak
	Realm        string
	clientID     string
	clientSecret string

	KCAuth *KeycloakAuth
}

func NewService(baseURL, realm, clientID, issuer, aud, clientSecret string) (*Service, error) {
	client := gocloak.NewClient("http://" + baseURL)

	kcAuth, err := NewKeycloakAuth(
		fmt.Sprintf("http://%s/realms/%s/protocol/openid-connect/certs", baseURL, realm),
		issuer,
		aud,
		clientID,
	)
	if err != nil {
		logger.Error("failed to instantiate the kc authenticator middleware: %v", err)
		return nil, err
	}

	s := &Service{
		Client:       client,
		Realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		KCAuth:       kcAuth,
	}

	if err := s.selfTest(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) selfTest() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := s.loginAdmin(ctx)
	if err != nil {
		return fmt.Errorf("keycloak auth failed: %w", err)
	}

	if _, err = s.Client.GetRealm(ctx, token.AccessToken, s.Realm); err != nil {
		return fmt.Errorf("keycloak permission check failed: %w", err)
	}

	return nil
}

func (s *Service) loginAdmin(ctx context.Context) (*gocloak.JWT, error) {
	return s.Client.LoginClient(ctx, s.clientID, s.clientSecret, s.Realm)
}

// SignIn exchanges an email and password for tokens.
func (s *Service) SignIn(ctx context.Context, email, password string) (*gocloak.JWT, error) {
	return s.Client.Login(ctx, s.clientID, s.clientSecret, s.Realm, email, password)
}

type SignUpRequest struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// SignUp creates the Keycloak user with the email as username and grants
// the tracker role. The user is removed again if the role cannot be set.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	if !req.Role.Valid() || req.Role == models.RoleAdmin {
		return "", ErrInvalidRole
	}

	token, err := s.loginAdmin(ctx)
	if err != nil {
		return "", fmt.Errorf("keycloak admin login failed: %w", err)
	}

	first, last, _ := strings.Cut(strings.TrimSpace(req.Name), " ")
	user := gocloak.User{
		Username:  gocloak.StringP(req.Email),
		Email:     gocloak.StringP(req.Email),
		Enabled:   gocloak.BoolP(true),
		FirstName: gocloak.StringP(first),
		LastName:  gocloak.StringP(last),
		Credentials: &[]gocloak.CredentialRepresentation{
			{
				Type:      gocloak.StringP("password"),
				Value:     gocloak.StringP(req.Password),
				Temporary: gocloak.BoolP(false),
			},
		},
	}

	userID, err := s.Client.CreateUser(ctx, token.AccessToken, s.Realm, user)
	if err != nil {
		return "", err
	}

	if err := s.grantRole(ctx, token.AccessToken, userID, req.Role); err != nil {
		if derr := s.Client.DeleteUser(ctx, token.AccessToken, s.Realm, userID); derr != nil {
			logger.Error("failed to roll back user %s: %v", userID, derr)
		}
		return "", err
	}

	return userID, nil
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.Client.Logout(ctx, s.clientID, s.clientSecret, s.Realm, refreshToken)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*gocloak.JWT, error) {
	return s.Client.RefreshToken(ctx, refreshToken, s.clientID, s.clientSecret, s.Realm)
}

// SetUserRole replaces the user's tracker role.
func (s *Service) SetUserRole(ctx context.Context, userID string, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	token, err := s.loginAdmin(ctx)
	if err != nil {
		return fmt.Errorf("keycloak admin login failed: %w", err)
	}

	var stale []gocloak.Role
	for _, r := range []models.Role{models.RoleAthlete, models.RoleCoach, models.RoleAdmin} {
		if r == role {
			continue
		}
		kr, err := s.Client.GetRealmRole(ctx, token.AccessToken, s.Realm, string(r))
		if err != nil {
			return err
		}
		stale = append(stale, *kr)
	}
	if err := s.Client.DeleteRealmRoleFromUser(ctx, token.AccessToken, s.Realm, userID, stale); err != nil {
		return err
	}

	return s.grantRole(ctx, token.AccessToken, userID, role)
}

func (s *Service) grantRole(ctx context.Context, token, userID string, role models.Role) error {
	kr, err := s.Client.GetRealmRole(ctx, token, s.Realm, string(role))
	if err != nil {
		return fmt.Errorf("realm role %s: %w", role, err)
	}

	return s.Client.AddRealmRoleToUser(ctx, token, s.Realm, userID, []gocloak.Role{*kr})
}
