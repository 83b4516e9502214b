package app

import (
	"RoleChat/internal/config"
	"RoleChat/internal/delivery/http/controllers"
	"RoleChat/internal/models"
	"RoleChat/internal/storage/memory"
	"RoleChat/internal/storage/postgres"
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type userStore interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
	SetImage(ctx context.Context, id uuid.UUID, objectKey string) error
}

type messageStore interface {
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	RecentMessages(ctx context.Context, limit int) ([]models.MessageView, error)
	MessagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MessageView, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
}

type tokenStore interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteToken(ctx context.Context, userID uuid.UUID, token *jwt.Token) (bool, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type linkStore interface {
	CreateLink(ctx context.Context, link models.LoginLink) error
	LinkByID(ctx context.Context, id uuid.UUID) (*models.LoginLink, error)
	DeleteLink(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type stores struct {
	users    userStore
	messages messageStore
	tokens   tokenStore
	links    linkStore
	checks   map[string]controllers.Pinger
}

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

func openStores(ctx context.Context, cfg *config.Config) (*stores, func(), error) {
	switch cfg.Storage {
	case storageMemory:
		m := memory.New()
		return &stores{
			users:    m.Users(),
			messages: m.Messages(),
			tokens:   m.Tokens(),
			links:    m.Links(),
			checks:   map[string]controllers.Pinger{},
		}, func() {}, nil
	case storagePostgres, "":
		pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return &stores{
			users:    postgres.NewUserPostgres(pg.Pool),
			messages: postgres.NewMessagePostgres(pg.Pool),
			tokens:   postgres.NewTokensPostgres(pg.Pool),
			links:    postgres.NewLinksPostgres(pg.Pool),
			checks:   map[string]controllers.Pinger{"postgres": pg},
		}, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}
