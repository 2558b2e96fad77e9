package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/metrics"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/telemetry"
)

// ErrAudienceResolution wraps a failure to compute a broadcast's recipients
var ErrAudienceResolution = errors.New("failed to resolve broadcast audience")

const maxTitleLength = 200

// BroadcastRequest describes one admin announcement
type BroadcastRequest struct {
	Admin       models.AuthorSummary
	Title       string
	Description string
	Link        string
	TargetMode  models.TargetMode
	UserIDs     []string
	Category    string
}

// BroadcastSummary is the outcome of Dispatch
type BroadcastSummary struct {
	BroadcastID   string                 `json:"broadcast_id"`
	TotalTargeted int                    `json:"total_targeted"`
	SuccessCount  int                    `json:"success_count"`
	ErrorCount    int                    `json:"error_count"`
	Status        models.BroadcastStatus `json:"status"`
	// Logged is false when the announcement log entry could not be written
	Logged bool `json:"logged"`
}

// Broadcaster fans announcements out to resolved audiences and keeps the
// announcement log
type Broadcaster struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	notifications repository.NotificationRepository
	announcements repository.AnnouncementRepository
	newID         func() string
}

func NewBroadcaster(store repository.Store) *Broadcaster {
	return &Broadcaster{
		users:         store.Users(),
		posts:         store.Posts(),
		notifications: store.Notifications(),
		announcements: store.Announcements(),
		newID:         store.NewID,
	}
}

// Validate checks a request without touching storage
func (b *Broadcaster) Validate(req *BroadcastRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.Title == "":
		return apierrors.ValidationError("title", "title is required")
	case len([]rune(req.Title)) > maxTitleLength:
		return apierrors.ValidationError("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	case !req.TargetMode.Valid():
		return apierrors.ValidationError("target_mode", "target_mode must be all, specific or category")
	}
	switch req.TargetMode {
	case models.TargetSpecific:
		if len(dedupe(req.UserIDs)) == 0 {
			return apierrors.ValidationError("user_ids", "at least one user id is required")
		}
	case models.TargetCategory:
		if !models.IsValidCategory(req.Category) {
			return apierrors.ValidationError("category", "unknown category")
		}
	}
	return nil
}

// Dispatch sends one announcement notification to every audience member.
// Per-recipient failures are counted and skipped; only validation and
// audience resolution failures return an error.
func (b *Broadcaster) Dispatch(ctx context.Context, req BroadcastRequest) (_ *BroadcastSummary, err error) {
	if err := b.Validate(&req); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartBroadcast(ctx, string(req.TargetMode), req.Admin.ID)
	defer func() { telemetry.End(span, err) }()
	start := time.Now()

	audience, err := b.resolveAudience(ctx, req)
	if err != nil {
		logger.ErrorWithFields("Broadcast audience resolution failed", err,
			logger.WithContextRequestID(ctx),
			zap.String("target_mode", string(req.TargetMode)),
			zap.String("category", req.Category))
		return nil, fmt.Errorf("%w: %v", ErrAudienceResolution, err)
	}
	audience = without(audience, req.Admin.ID)

	summary := &BroadcastSummary{
		BroadcastID:   b.newID(),
		TotalTargeted: len(audience),
	}

	for _, recipientID := range audience {
		n := &models.Notification{
			RecipientID: recipientID,
			Type:        models.NotificationAnnouncement,
			Actor:       req.Admin,
			Title:       req.Title,
			Description: req.Description,
			Link:        req.Link,
			BroadcastID: summary.BroadcastID,
		}
		if err := ctx.Err(); err != nil {
			summary.ErrorCount++
			continue
		}
		if err := b.notifications.CreateNotification(ctx, n); err != nil {
			summary.ErrorCount++
			logger.WarnWithFields("Broadcast delivery failed", err,
				logger.WithBroadcastID(summary.BroadcastID),
				logger.WithUserID(recipientID))
			continue
		}
		summary.SuccessCount++
	}
	summary.Status = broadcastStatus(summary.TotalTargeted, summary.ErrorCount)

	entry := &models.Announcement{
		ID:            summary.BroadcastID,
		AdminID:       req.Admin.ID,
		Title:         req.Title,
		Description:   req.Description,
		Link:          req.Link,
		TargetMode:    req.TargetMode,
		Category:      req.Category,
		TotalTargeted: summary.TotalTargeted,
		SuccessCount:  summary.SuccessCount,
		ErrorCount:    summary.ErrorCount,
		Status:        summary.Status,
	}
	if req.TargetMode == models.TargetSpecific {
		entry.TargetUserIDs = audience
	}
	if req.TargetMode != models.TargetCategory {
		entry.Category = ""
	}
	if err := b.announcements.CreateAnnouncement(context.WithoutCancel(ctx), entry); err != nil {
		logger.ErrorWithFields("Failed to write announcement log", err, logger.WithBroadcastID(summary.BroadcastID))
	} else {
		summary.Logged = true
	}

	elapsed := time.Since(start)
	metrics.RecordBroadcast(string(summary.Status), summary.SuccessCount, summary.ErrorCount, elapsed)
	logger.Log.Info("📣 Broadcast dispatched",
		logger.WithContextRequestID(ctx),
		logger.WithBroadcastID(summary.BroadcastID),
		logger.WithUserID(req.Admin.ID),
		zap.String("target_mode", string(req.TargetMode)),
		zap.Int("targeted", summary.TotalTargeted),
		zap.Int("delivered", summary.SuccessCount),
		zap.Int("failed", summary.ErrorCount),
		zap.String("status", string(summary.Status)),
		logger.WithDuration(elapsed))
	return summary, nil
}

func (b *Broadcaster) resolveAudience(ctx context.Context, req BroadcastRequest) ([]string, error) {
	switch req.TargetMode {
	case models.TargetAll:
		return b.users.ListUserIDs(ctx)
	case models.TargetSpecific:
		return dedupe(req.UserIDs), nil
	case models.TargetCategory:
		ids, err := b.posts.AuthorIDsByCategory(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		return dedupe(ids), nil
	}
	return nil, fmt.Errorf("target mode %q: %w", req.TargetMode, repository.ErrInvalidInput)
}

func broadcastStatus(total, failed int) models.BroadcastStatus {
	switch {
	case failed == 0:
		return models.BroadcastCompleted
	case failed == total:
		return models.BroadcastFailed
	default:
		return models.BroadcastPartialFailure
	}
}

// dedupe trims ids and drops blanks and repeats, keeping first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// without drops id from ids. The sending admin never receives their own
// announcement, whatever the audience mode.
func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ListAnnouncements returns the broadcast log newest first
func (b *Broadcaster) ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error) {
	limit, offset = repository.Paginate(limit, offset, DefaultPageSize, MaxPageSize)
	return b.announcements.ListAnnouncements(ctx, limit, offset)
}

func (b *Broadcaster) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	return b.announcements.GetAnnouncement(ctx, id)
}

// DeleteBroadcast removes every notification delivered by one broadcast.
// The log entry is kept.
func (b *Broadcaster) DeleteBroadcast(ctx context.Context, broadcastID string) (int64, error) {
	if _, err := b.announcements.GetAnnouncement(ctx, broadcastID); err != nil {
		return 0, err
	}
	n, err := b.notifications.DeleteByBroadcast(ctx, broadcastID)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("Broadcast notifications deleted", logger.WithBroadcastID(broadcastID), zap.Int64("count", n))
	return n, nil
}
