package front

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/gin-gonic/gin"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/session"
)

const (
	sessionCookie = "session_id"
	sessionHeader = "X-Session-ID"
	ctxSession    = "front.session"

	// refresh this long before the access token runs out
	refreshSkew = 15 * time.Second
)

// Authenticator is the identity provider the gateway signs users in with.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*gocloak.JWT, error)
	SignUp(ctx context.Context, req auth.SignUpRequest) (string, error)
	SignOut(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*gocloak.JWT, error)
	SetUserRole(ctx context.Context, userID string, role models.Role) error
}

// TokenVerifier reads the identity out of an access token.
type TokenVerifier interface {
	Verify(token string) (*auth.KCClaims, error)
}

func tokens(tok *gocloak.JWT, now time.Time) session.Tokens {
	t := session.Tokens{
		Access:          tok.AccessToken,
		Refresh:         tok.RefreshToken,
		AccessExpiresAt: now.Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	t.ExpiresAt = t.AccessExpiresAt
	if tok.RefreshExpiresIn > 0 {
		t.ExpiresAt = now.Add(time.Duration(tok.RefreshExpiresIn) * time.Second)
	}

	return t
}

// startSession verifies the fresh tokens, stores a session and hands its id
// to the browser.
func startSession(c *gin.Context, tok *gocloak.JWT) (session.Session, error) {
	claims, err := verifier.Verify(tok.AccessToken)
	if err != nil {
		return session.Session{}, err
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}
	t := tokens(tok, time.Now())

	sess, err := sessions.Put(session.Session{
		UserID:          claims.Subject,
		Email:           claims.Email,
		Name:            name,
		Role:            string(auth.PrimaryRole(claims.Roles(config.ClientID))),
		AccessToken:     t.Access,
		RefreshToken:    t.Refresh,
		AccessExpiresAt: t.AccessExpiresAt,
		ExpiresAt:       t.ExpiresAt,
	})
	if err != nil {
		return session.Session{}, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, int(time.Until(sess.ExpiresAt).Seconds()), "/", "", config.SecureCookie, true)

	return sess, nil
}

func handleLogin(c *gin.Context) {
	var r LoginRequest
	if err := c.ShouldBind(&r); err != nil {
		logger.Debug("failed to bind login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	tok, err := kc.SignIn(c.Request.Context(), r.Email, r.Password)
	if err != nil {
		logger.Debug("sign in failed for %s: %v", r.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	sess, err := startSession(c, tok)
	if err != nil {
		logger.Error("failed to start session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

func handleRegister(c *gin.Context) {
	var r RegisterRequest
	if err := c.ShouldBind(&r); err != nil {
		logger.Debug("failed to bind register: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email, a password of 6+ characters and a name are required"})
		return
	}
	if err := r.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	_, err := kc.SignUp(ctx, auth.SignUpRequest{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     r.role(),
	})
	var apiErr *gocloak.APIError
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	default:
		logger.Error("sign up failed for %s: %v", r.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	tok, err := kc.SignIn(ctx, r.Email, r.Password)
	if err != nil {
		logger.Error("sign in after sign up failed for %s: %v", r.Email, err)
		c.JSON(http.StatusCreated, gin.H{"status": "registered"})
		return
	}

	sess, err := startSession(c, tok)
	if err != nil {
		logger.Error("failed to start session: %v", err)
		c.JSON(http.StatusCreated, gin.H{"status": "registered"})
		return
	}

	c.JSON(http.StatusCreated, sess)
}

func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}

	return c.GetHeader(sessionHeader)
}

// requireSession loads the caller's session, refreshing its access token when
// it is about to expire.
func requireSession(c *gin.Context) {
	sess, err := sessions.Get(sessionID(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	if !sess.AccessExpiresAt.IsZero() && time.Until(sess.AccessExpiresAt) < refreshSkew {
		fresh, err := refresh(c.Request.Context(), sess)
		if err != nil {
			logger.Warn("failed to refresh session of %s: %v", sess.UserID, err)
			_ = sessions.Delete(sess.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		sess = fresh
	}

	c.Set(ctxSession, sess)
	c.Set(auth.KeyUserID, sess.UserID)
	c.Next()
}

func refresh(ctx context.Context, sess session.Session) (session.Session, error) {
	tok, err := kc.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return sess, err
	}

	return sessions.Refresh(sess.ID, tokens(tok, time.Now()))
}

func sessionFrom(c *gin.Context) session.Session {
	v, _ := c.Get(ctxSession)
	sess, _ := v.(session.Session)

	return sess
}

func handleRefresh(c *gin.Context) {
	sess, err := refresh(c.Request.Context(), sessionFrom(c))
	if err != nil {
		logger.Debug("refresh failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	c.JSON(http.StatusOK, sess)
}

func handleLogout(c *gin.Context) {
	sess := sessionFrom(c)

	if err := kc.SignOut(c.Request.Context(), sess.RefreshToken); err != nil {
		logger.Warn("keycloak sign out failed for %s: %v", sess.UserID, err)
	}
	_ = sessions.Delete(sess.ID)

	c.SetCookie(sessionCookie, "", -1, "/", "", config.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}
