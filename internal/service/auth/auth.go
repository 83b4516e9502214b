package auth

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteToken(ctx context.Context, userID uuid.UUID, token *jwt.Token) (bool, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type linkRepo interface {
	CreateLink(ctx context.Context, link models.LoginLink) error
	LinkByID(ctx context.Context, id uuid.UUID) (*models.LoginLink, error)
	DeleteLink(ctx context.Context, id uuid.UUID) (bool, error)
}

type provisioner interface {
	AfterUserCreated(ctx context.Context, userID uuid.UUID, existing bool) error
}

type LinkConfig struct {
	BaseURL string
	TTL     time.Duration
}

type AuthService struct {
	log         logger.Log
	jwtManager  *JWTManager
	authRepo    AuthRepo
	tokenRepo   tokenRepo
	linkRepo    linkRepo
	sender      LinkSender
	provisioner provisioner
	linkCfg     LinkConfig
	now         func() time.Time
}

func NewAuthService(
	l logger.Log,
	manager *JWTManager,
	aRepo AuthRepo,
	tRepo tokenRepo,
	lRepo linkRepo,
	sender LinkSender,
	p provisioner,
	linkCfg LinkConfig,
) *AuthService {
	return &AuthService{
		log:         l,
		jwtManager:  manager,
		authRepo:    aRepo,
		tokenRepo:   tRepo,
		linkRepo:    lRepo,
		sender:      sender,
		provisioner: p,
		linkCfg:     linkCfg,
		now:         time.Now,
	}
}

func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !u.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, app_errors.ErrInvalidToken
	}
	userIdStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(userIdStr)
	if err != nil {
		return nil, app_errors.ErrInvalidToken
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(u.now()) {
		return nil, app_errors.ErrTokenExpired
	}
	// Only the caller that actually removes the row may rotate.
	deleted, err := u.tokenRepo.DeleteToken(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, app_errors.ErrTokenNotFound
	}
	user, err := u.authRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.issueTokens(ctx, user.ID)
}

func (u *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*models.TokenPair, error) {
	tokenPair, err := u.jwtManager.GenerateTokenPair(userID)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, userID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (u *AuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	return u.jwtManager.Parse(token)
}

func (u *AuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return u.jwtManager.TokenType(token, AccessTokenType)
}

func (u *AuthService) AccessClaims(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// GetMe returns the caller's record, or nil when nobody is signed in or the
// record no longer exists.
func (u *AuthService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	user, err := u.authRepo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole overwrites the caller's own role. Any signed-in user may call it.
func (u *AuthService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	if userID == uuid.Nil {
		return app_errors.ErrNotSignedIn
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return fmt.Errorf("%w: %v", app_errors.ErrInvalidRole, err)
	}
	if err := u.authRepo.SetRole(ctx, userID, parsed); err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return app_errors.ErrNotSignedIn
		}
		return err
	}
	u.log.Info("role updated", "user_id", userID, "role", parsed)
	return nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", app_errors.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// RequestLink creates a one-time sign-in link for email and hands it to the
// configured sender.
func (u *AuthService) RequestLink(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("could not generate link secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := u.now()
	link := models.LoginLink{
		ID:         uuid.New(),
		Email:      email,
		SecretHash: string(hash),
		CreatedAt:  now,
		ExpiresAt:  now.Add(u.linkCfg.TTL),
	}
	if err := u.linkRepo.CreateLink(ctx, link); err != nil {
		return err
	}

	linkURL, err := url.Parse(u.linkCfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid link base url: %w", err)
	}
	query := linkURL.Query()
	query.Set("token", link.ID.String()+"."+secret)
	linkURL.RawQuery = query.Encode()

	return u.sender.SendLink(ctx, email, linkURL.String())
}

// ConsumeLink verifies a link token, signs the owner in (creating and
// provisioning the user on first sign-in) and returns a fresh token pair.
func (u *AuthService) ConsumeLink(ctx context.Context, token string) (*models.TokenPair, error) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return nil, app_errors.ErrLinkNotFound
	}
	linkID, err := uuid.Parse(idPart)
	if err != nil {
		return nil, app_errors.ErrLinkNotFound
	}

	link, err := u.linkRepo.LinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(link.SecretHash), []byte(secret)) != nil {
		return nil, app_errors.ErrLinkNotFound
	}
	deleted, err := u.linkRepo.DeleteLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, app_errors.ErrLinkNotFound
	}
	if link.ExpiresAt.Before(u.now()) {
		return nil, app_errors.ErrLinkExpired
	}

	user, err := u.signIn(ctx, link.Email)
	if err != nil {
		return nil, err
	}
	return u.issueTokens(ctx, user.ID)
}

func (u *AuthService) signIn(ctx context.Context, email string) (*models.User, error) {
	user, err := u.authRepo.UserByEmail(ctx, email)
	if err == nil {
		return user, u.provisioner.AfterUserCreated(ctx, user.ID, true)
	}
	if !errors.Is(err, app_errors.ErrUserNotFound) {
		return nil, err
	}

	user, err = u.authRepo.CreateUser(ctx, models.User{Email: email})
	if errors.Is(err, app_errors.ErrUserExists) {
		// Lost a race with a concurrent first sign-in; the winner provisions.
		return u.authRepo.UserByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	if err := u.provisioner.AfterUserCreated(ctx, user.ID, false); err != nil {
		return nil, err
	}
	user.Role = models.DefaultRole
	return user, nil
}
