// Package approval implements the visitor approval gate: visitors request
// access, the host approves or rejects each request exactly once.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"welcomewindow/backend/internal/chathub"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/storage"
)

// ErrValidation is returned for requests with missing or malformed fields.
var ErrValidation = errors.New("validation failed")

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Store is the persistence needed by the gate.
type Store interface {
	CreateVisitor(ctx context.Context, visitor *models.PendingVisitor) error
	FindVisitorByToken(ctx context.Context, token string) (*models.PendingVisitor, error)
	FindVisitorByID(ctx context.Context, id uint) (*models.PendingVisitor, error)
	UpdateVisitorContact(ctx context.Context, id uint, name, email string) (bool, error)
	DecideVisitor(ctx context.Context, id uint, state models.VisitorState, at time.Time) (bool, error)
	ListPendingVisitors(ctx context.Context) ([]models.PendingVisitor, error)
}

// Alerter is notified about new access requests. Dispatch must not block.
type Alerter interface {
	Dispatch(visitor models.PendingVisitor)
}

// Result is returned by RequestAccess.
type Result struct {
	VisitorID      uint   `json:"visitor_id"`
	Token          string `json:"token"`
	AlreadyPending bool   `json:"already_pending"`
}

// Decision is the state of an access token as seen by the visitor.
type Decision struct {
	Approved bool `json:"approved"`
	Rejected bool `json:"rejected"`
}

type Service struct {
	store    Store
	notifier *chathub.Notifier
	alerts   Alerter
	now      func() time.Time
}

// NewService Constructor. alerts may be nil.
func NewService(store Store, notifier *chathub.Notifier, alerts Alerter) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		alerts:   alerts,
		now:      time.Now,
	}
}

// RequestAccess records an access request. A visitor that already holds a
// pending token keeps it and only updates the contact details.
func (s *Service) RequestAccess(ctx context.Context, name, email, existingToken string) (Result, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Result{}, &ValidationError{Field: "name"}
	}
	if email == "" {
		return Result{}, &ValidationError{Field: "email"}
	}

	if existingToken != "" {
		existing, err := s.store.FindVisitorByToken(ctx, existingToken)
		if err != nil {
			return Result{}, fmt.Errorf("failed to look up access token: %w", err)
		}
		if existing != nil && existing.State == models.VisitorPending {
			updated, err := s.store.UpdateVisitorContact(ctx, existing.ID, name, email)
			if err != nil {
				return Result{}, fmt.Errorf("failed to update access request %d: %w", existing.ID, err)
			}
			if updated {
				return Result{VisitorID: existing.ID, Token: existing.SessionToken, AlreadyPending: true}, nil
			}
		}
	}

	visitor := &models.PendingVisitor{
		Name:        name,
		Email:       email,
		RequestedAt: s.now(),
		State:       models.VisitorPending,
	}
	if err := s.store.CreateVisitor(ctx, visitor); err != nil {
		return Result{}, fmt.Errorf("failed to create access request: %w", err)
	}
	log.Printf("INFO: [Approval] new access request #%d from %s", visitor.ID, visitor.Name)

	s.notifier.Deliver(chathub.ToRoom(chathub.AdminRoom), models.EventNewAccessRequest, visitor)
	if s.alerts != nil {
		s.alerts.Dispatch(*visitor)
	}
	return Result{VisitorID: visitor.ID, Token: visitor.SessionToken}, nil
}

// CheckApproval reports the decision for a token. Unknown tokens are neither
// approved nor rejected.
func (s *Service) CheckApproval(ctx context.Context, token string) (Decision, error) {
	if token == "" {
		return Decision{}, nil
	}
	visitor, err := s.store.FindVisitorByToken(ctx, token)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to look up access token: %w", err)
	}
	if visitor == nil {
		return Decision{}, nil
	}
	return Decision{
		Approved: visitor.State == models.VisitorApproved,
		Rejected: visitor.State == models.VisitorRejected,
	}, nil
}

// IsApproved lets the hub gate live connections.
func (s *Service) IsApproved(ctx context.Context, token string) (bool, error) {
	d, err := s.CheckApproval(ctx, token)
	return d.Approved, err
}

// Approve admits a pending visitor. Deciding an already decided request is a
// no-op; the first decision wins.
func (s *Service) Approve(ctx context.Context, id uint) (bool, error) {
	return s.decide(ctx, id, models.VisitorApproved)
}

// Reject turns a pending visitor away. Deciding an already decided request is
// a no-op; the first decision wins.
func (s *Service) Reject(ctx context.Context, id uint) (bool, error) {
	return s.decide(ctx, id, models.VisitorRejected)
}

func (s *Service) decide(ctx context.Context, id uint, state models.VisitorState) (bool, error) {
	changed, err := s.store.DecideVisitor(ctx, id, state, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to %s visitor %d: %w", verb(state), id, err)
	}
	if !changed {
		log.Printf("INFO: [Approval] visitor %d already decided, ignoring %s", id, verb(state))
		return false, nil
	}

	payload := models.AccessDecisionPayload{
		VisitorID: id,
		Approved:  state == models.VisitorApproved,
		Rejected:  state == models.VisitorRejected,
	}
	s.notifier.Deliver(chathub.ToRoom(chathub.AccessRoom(id)), models.EventAccessDecision, payload)
	s.notifier.Deliver(chathub.ToRoom(chathub.AdminRoom), models.EventAccessDecided, payload)
	return true, nil
}

// ListPending returns undecided requests, newest first.
func (s *Service) ListPending(ctx context.Context) ([]models.PendingVisitor, error) {
	visitors, err := s.store.ListPendingVisitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending visitors: %w", err)
	}
	if visitors == nil {
		visitors = []models.PendingVisitor{}
	}
	return visitors, nil
}

func verb(state models.VisitorState) string {
	if state == models.VisitorApproved {
		return "approve"
	}
	return "reject"
}
