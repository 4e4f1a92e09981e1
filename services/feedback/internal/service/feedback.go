package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/events"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/mailer"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/models"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/feedback/internal/transport"
)

type FeedbackService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Mailer mailer.Mailer
	// Signature closes every reply mail.
	Signature string
	Now       func() time.Time
}

func (s *FeedbackService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
}

// CreateMessage stores a contact message. userID is nil for anonymous visitors.
func (s *FeedbackService) CreateMessage(ctx context.Context, userID *uint, req transport.ContactRequest) (*models.ContactMessage, error) {
	if err := required(map[string]string{
		"name": req.Name, "email": req.Email, "subject": req.Subject, "message": req.Message,
	}); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	metrics.FeedbackSubmittedTotal.WithLabelValues("contact").Inc()
	s.publish(ctx, "contact_message_created", eventKey("message", msg.ID), map[string]any{
		"message_id": msg.ID,
		"subject":    msg.Subject,
	})
	return msg, nil
}

// ListMessages filters on ?responded=true|false; empty lists everything.
func (s *FeedbackService) ListMessages(ctx context.Context, responded string, offset, limit int) (int64, []models.ContactMessage, error) {
	f := repo.MessageFilter{Offset: offset, Limit: limit}
	if responded != "" {
		b, err := strconv.ParseBool(responded)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: responded is not a boolean", ErrValidation)
		}
		f.Responded = &b
	}
	return s.Repo.ListMessages(ctx, f)
}

// Respond records the admin answer and mails it to the sender. The mail is
// best effort; a failed delivery leaves the message answered.
func (s *FeedbackService) Respond(ctx context.Context, id uint, text string) (*models.ContactMessage, error) {
	l := logging.FromContext(ctx).With("svc", "feedback.respond", "message_id", id)

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: response required", ErrValidation)
	}

	msg, err := s.Repo.GetMessage(ctx, id)
	if err != nil {
		return nil, notFound(err, "message")
	}

	at := s.now()
	if err := s.Repo.RespondMessage(ctx, id, text, at); err != nil {
		return nil, notFound(err, "message")
	}
	msg.AdminResponse = text
	msg.Responded = true
	msg.RespondedAt = &at

	mailer.SendAsync(ctx, s.Mailer, mailer.Message{
		To:      msg.Email,
		Subject: "Re: " + msg.Subject,
		Body:    s.replyBody(msg.Name, text),
	})
	l.Info("message_responded")
	return msg, nil
}

func (s *FeedbackService) replyBody(name, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n%s\n", name, text)
	if s.Signature != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Signature)
	}
	return b.String()
}

// CreateReview stores a review awaiting moderation.
func (s *FeedbackService) CreateReview(ctx context.Context, userID *uint, req transport.ReviewRequest) (*models.Review, error) {
	if err := required(map[string]string{
		"name": req.Name, "email": req.Email, "comment": req.Comment,
	}); err != nil {
		return nil, err
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, models.MinRating, models.MaxRating)
	}

	rev := &models.Review{
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Company: strings.TrimSpace(req.Company),
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.Repo.CreateReview(ctx, rev); err != nil {
		return nil, err
	}

	metrics.FeedbackSubmittedTotal.WithLabelValues("review").Inc()
	s.publish(ctx, "review_created", eventKey("review", rev.ID), map[string]any{
		"review_id": rev.ID,
		"rating":    rev.Rating,
	})
	return rev, nil
}

func (s *FeedbackService) ListApproved(ctx context.Context, offset, limit int) (int64, []models.Review, error) {
	return s.Repo.ListReviews(ctx, repo.ReviewFilter{ApprovedOnly: true, Offset: offset, Limit: limit})
}

func (s *FeedbackService) ListAll(ctx context.Context, offset, limit int) (int64, []models.Review, error) {
	return s.Repo.ListReviews(ctx, repo.ReviewFilter{Offset: offset, Limit: limit})
}

func (s *FeedbackService) Approve(ctx context.Context, id uint) (*models.Review, error) {
	if err := s.Repo.ApproveReview(ctx, id); err != nil {
		return nil, notFound(err, "review")
	}
	rev, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return nil, notFound(err, "review")
	}
	s.publish(ctx, "review_approved", eventKey("review", rev.ID), map[string]any{"review_id": rev.ID})
	return rev, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteReview(ctx, id); err != nil {
		return notFound(err, "review")
	}
	return nil
}

func (s *FeedbackService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	return s.Repo.Dashboard(ctx)
}

func eventKey(kind string, id uint) string {
	return kind + "-" + strconv.FormatUint(uint64(id), 10)
}

func (s *FeedbackService) publish(ctx context.Context, eventType, key string, payload map[string]any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicFeedback, key, eventType, payload); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("publish_event_failed", "event", eventType, "key", key, "error", err)
	}
}
