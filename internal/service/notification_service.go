package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/pkg/database"
)

// PromotionRepositoryInterface defines the interface for promotion data access.
type PromotionRepositoryInterface interface {
	List(ctx context.Context, memberID int64, typ string) ([]model.Notification, error)
	UnreadCount(ctx context.Context, memberID int64) (int, error)
	GetByID(ctx context.Context, memberID, id int64) (*model.Notification, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Notification, error)
	DecrementRemaining(ctx context.Context, tx database.TxQuerier, id int64) error
}

// ReadRepositoryInterface defines the interface for read-state data access.
type ReadRepositoryInterface interface {
	MarkRead(ctx context.Context, memberID, promotionID int64) error
	MarkAllRead(ctx context.Context, memberID int64) (int64, error)
}

// NotificationService lists promotions per member and tracks read state.
type NotificationService struct {
	promoRepo PromotionRepositoryInterface
	readRepo  ReadRepositoryInterface
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(promoRepo PromotionRepositoryInterface, readRepo ReadRepositoryInterface) *NotificationService {
	return &NotificationService{
		promoRepo: promoRepo,
		readRepo:  readRepo,
		now:       time.Now,
	}
}

// List returns the member's promotions, optionally filtered by type, with the
// unread aggregate over all active promotions.
func (s *NotificationService) List(ctx context.Context, memberID int64, typ string) (*model.NotificationListResponse, error) {
	if typ != "" && !model.NotificationType(typ).Valid() {
		return nil, ErrInvalidRequest
	}

	items, err := s.promoRepo.List(ctx, memberID, typ)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	unread, err := s.promoRepo.UnreadCount(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	return &model.NotificationListResponse{Items: items, UnreadCount: unread}, nil
}

// Get returns one promotion and marks it read for the member.
// Returns ErrNotificationNotFound if it doesn't exist or is inactive.
func (s *NotificationService) Get(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	n, err := s.promoRepo.GetByID(ctx, memberID, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}

	if !n.IsRead {
		if err := s.readRepo.MarkRead(ctx, memberID, id); err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
		n.IsRead = true
	}
	return n, nil
}

// MarkAllRead marks every active promotion read for the member.
func (s *NotificationService) MarkAllRead(ctx context.Context, memberID int64) error {
	if _, err := s.readRepo.MarkAllRead(ctx, memberID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
