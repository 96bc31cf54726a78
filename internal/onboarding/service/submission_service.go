package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localink/localink-backend/internal/automation"
	"github.com/localink/localink-backend/internal/onboarding/domain"
	"github.com/localink/localink-backend/internal/wizard"
	"go.uber.org/zap"
)

// Analyses requested from the dashboard.
var requestedAnalyses = []string{"personalized_promotions", "sales_forecast"}

const (
	notSelected  = "not-selected"
	notSpecified = "not-specified"
)

type BusinessStore interface {
	Create(ctx context.Context, b *domain.Business) error
	ListByUser(ctx context.Context, userID string) ([]domain.Business, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Business, error)
}

// Notifier hands an envelope to background delivery. It must not block.
type Notifier interface {
	Dispatch(env automation.Envelope)
}

type SubmissionService struct {
	businesses BusinessStore
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewSubmissionService(businesses BusinessStore, notifier Notifier, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		businesses: businesses,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit persists a completed wizard (business only) and notifies the
// automation. The notification outcome never affects the result.
func (s *SubmissionService) Submit(ctx context.Context, actor *domain.Actor, sub wizard.Submission) (*domain.Result, error) {
	if actor == nil || strings.TrimSpace(actor.UserID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := wizard.Validate(sub); err != nil {
		return nil, err
	}

	switch sub.UserType {
	case wizard.UserTypeBusiness:
		return s.submitBusiness(ctx, actor, sub)
	case wizard.UserTypeConsumer:
		return s.submitConsumer(actor, sub), nil
	default:
		return nil, fmt.Errorf("%w: %q", wizard.ErrUnknownUserType, sub.UserType.String())
	}
}

func (s *SubmissionService) submitBusiness(ctx context.Context, actor *domain.Actor, sub wizard.Submission) (*domain.Result, error) {
	b := &domain.Business{
		UserID:      actor.UserID,
		Name:        strings.TrimSpace(sub.Business.Name),
		Category:    strings.TrimSpace(sub.Business.Category),
		Description: strings.TrimSpace(sub.Business.Description),
		Address:     strings.TrimSpace(sub.Business.Address),
		Goals:       strings.TrimSpace(sub.Goals),
		Challenges:  strings.TrimSpace(sub.Challenges),
	}

	if err := s.businesses.Create(ctx, b); err != nil {
		s.logger.Error("business create failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, &domain.PersistenceError{Op: "create business", Err: err}
	}

	s.logger.Info("business created", zap.String("business_id", b.ID), zap.String("user_id", actor.UserID))

	s.notifier.Dispatch(automation.Envelope{
		Event:     automation.EventBusinessWizardCompleted,
		Business:  businessPayload(b),
		User:      automation.User{ID: actor.UserID, Email: actor.Email},
		Timestamp: automation.Timestamp(s.now()),
		Source:    automation.SourceWizard,
	})

	return &domain.Result{
		Kind:      domain.KindBusiness,
		Business:  b,
		UserID:    actor.UserID,
		CreatedAt: b.CreatedAt,
		Message:   domain.MessageBusinessCreated,
	}, nil
}

// submitConsumer stores nothing; the record only exists in the notification.
func (s *SubmissionService) submitConsumer(actor *domain.Actor, sub wizard.Submission) *domain.Result {
	createdAt := s.now().UTC()

	prefs := sub.Consumer.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}

	s.notifier.Dispatch(automation.Envelope{
		Event: automation.EventConsumerWizardCompleted,
		Consumer: &automation.ConsumerPayload{
			UserType:        wizard.UserTypeConsumer.String(),
			Preferences:     prefs,
			ServiceTypes:    sub.Consumer.ServiceTypes,
			Location:        strings.TrimSpace(sub.Consumer.Location),
			GeneralHelp:     orDefault(sub.GeneralHelp, notSelected),
			AnalysisType:    orDefault(sub.AnalysisType, notSelected),
			GoalDescription: orDefault(sub.GoalDescription, notSpecified),
			CreatedAt:       automation.Timestamp(createdAt),
		},
		User:      automation.User{ID: actor.UserID, Email: actor.Email},
		Timestamp: automation.Timestamp(createdAt),
		Source:    automation.SourceWizard,
	})

	return &domain.Result{
		Kind:      domain.KindConsumer,
		UserID:    actor.UserID,
		CreatedAt: createdAt,
		Message:   domain.MessageConsumerComplete,
	}
}

func (s *SubmissionService) ListBusinesses(ctx context.Context, actor *domain.Actor) ([]domain.Business, error) {
	if actor == nil || actor.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.businesses.ListByUser(ctx, actor.UserID)
}

// RequestAnalysis asks the automation to regenerate dashboard content for one
// of the actor's businesses.
func (s *SubmissionService) RequestAnalysis(ctx context.Context, actor *domain.Actor, businessID string) error {
	if actor == nil || actor.UserID == "" {
		return domain.ErrUnauthenticated
	}

	b, err := s.businesses.GetByID(ctx, businessID, actor.UserID)
	if err != nil {
		return err
	}

	s.notifier.Dispatch(automation.Envelope{
		Event:             automation.EventAIAnalysisRequest,
		Business:          businessPayload(b),
		RequestedAnalysis: append([]string(nil), requestedAnalyses...),
		User:              automation.User{ID: actor.UserID, Email: actor.Email},
		Timestamp:         automation.Timestamp(s.now()),
		Source:            automation.SourceDashboardRequest,
	})
	return nil
}

func businessPayload(b *domain.Business) *automation.BusinessPayload {
	return &automation.BusinessPayload{
		ID:          b.ID,
		UserType:    wizard.UserTypeBusiness.String(),
		Name:        b.Name,
		Category:    b.Category,
		Description: b.Description,
		Address:     b.Address,
		Goals:       b.Goals,
		Challenges:  b.Challenges,
		CreatedAt:   automation.Timestamp(b.CreatedAt),
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
