package messages

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	// ListLimit bounds how many messages List returns.
	ListLimit = 100
	// SearchLimit bounds how many hits Search returns.
	SearchLimit = 50
)

type messageRepo interface {
	CreateMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	RecentMessages(ctx context.Context, limit int) ([]models.MessageView, error)
	MessagesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MessageView, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
}

type permissionChecker interface {
	CheckPermission(ctx context.Context, userID uuid.UUID, required models.Role) bool
}

type searchIndex interface {
	Index(ctx context.Context, msg models.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type MessageService struct {
	log      logger.Log
	repo     messageRepo
	checker  permissionChecker
	searcher searchIndex
}

func NewMessageService(l logger.Log, repo messageRepo, checker permissionChecker) *MessageService {
	return &MessageService{
		log:     l,
		repo:    repo,
		checker: checker,
	}
}

// WithSearch enables full-text search over message bodies.
func (s *MessageService) WithSearch(idx searchIndex) *MessageService {
	s.searcher = idx
	return s
}

func (s *MessageService) SearchEnabled() bool {
	return s.searcher != nil
}

func (s *MessageService) authorize(ctx context.Context, userID uuid.UUID, required models.Role) error {
	if userID == uuid.Nil {
		return app_errors.ErrNotSignedIn
	}
	if !s.checker.CheckPermission(ctx, userID, required) {
		return app_errors.ErrInsufficientPermissions
	}
	return nil
}

// List returns the most recent messages, newest first.
func (s *MessageService) List(ctx context.Context, userID uuid.UUID) ([]models.MessageView, error) {
	if err := s.authorize(ctx, userID, models.ReadRole); err != nil {
		return nil, err
	}
	return s.repo.RecentMessages(ctx, ListLimit)
}

// Send stores body as a new message authored by userID. The body is stored as
// given, empty or not.
func (s *MessageService) Send(ctx context.Context, userID uuid.UUID, body string) error {
	if err := s.authorize(ctx, userID, models.WriteRole); err != nil {
		return err
	}
	msg, err := s.repo.CreateMessage(ctx, models.Message{Body: body, UserID: userID})
	if err != nil {
		return err
	}
	if s.searcher != nil {
		if err := s.searcher.Index(ctx, *msg); err != nil {
			s.log.ErrorErr("failed to index message", err, "message_id", msg.ID)
		}
	}
	return nil
}

// Delete removes a message. Unknown ids succeed without effect.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	if err := s.authorize(ctx, userID, models.AdminRole); err != nil {
		return err
	}
	if err := s.repo.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	if s.searcher != nil {
		if err := s.searcher.Delete(ctx, messageID); err != nil {
			s.log.ErrorErr("failed to remove message from index", err, "message_id", messageID)
		}
	}
	return nil
}

// Search looks query up in the index and hydrates hits from the store, so
// messages deleted after indexing are never returned.
func (s *MessageService) Search(ctx context.Context, userID uuid.UUID, query string) ([]models.MessageView, error) {
	if err := s.authorize(ctx, userID, models.ReadRole); err != nil {
		return nil, err
	}
	if s.searcher == nil {
		return nil, app_errors.ErrFeatureDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.MessageView{}, nil
	}
	ids, err := s.searcher.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	return s.repo.MessagesByIDs(ctx, ids)
}
