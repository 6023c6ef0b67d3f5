// Package blockstatus answers "is this caller blocked for this profile" from
// the explicit block list and the profile's enhanced blocking policy, and
// manages both.
package blockstatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/observability"
	"callguard/internal/callfilter/ports"
	id "callguard/pkg/domain"
	dErrors "callguard/pkg/domain-errors"
	"callguard/pkg/platform/audit"
	"callguard/pkg/platform/privacy"
	"callguard/pkg/platform/sentinel"
)

// Store persists block lists and policies.
type Store interface {
	Block(ctx context.Context, profileID id.ProfileID, handle id.Handle) error
	Unblock(ctx context.Context, profileID id.ProfileID, handle id.Handle) error
	IsBlocked(ctx context.Context, profileID id.ProfileID, variants []string) (bool, error)
	ListBlocked(ctx context.Context, profileID id.ProfileID) ([]string, error)
	GetPolicy(ctx context.Context, profileID id.ProfileID) (models.BlockPolicy, error)
	SetPolicy(ctx context.Context, profileID id.ProfileID, policy models.BlockPolicy) error
}

// Transactor runs fn as one unit of work.
type Transactor func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	store          Store
	enhanced       bool
	transact       Transactor
	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(p ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// WithEnhancedPolicies toggles the per-profile policies. When disabled only
// the explicit block list is consulted.
func WithEnhancedPolicies(enabled bool) Option {
	return func(s *Service) {
		s.enhanced = enabled
	}
}

// WithTransactor makes each change and its audit record commit together.
func WithTransactor(t Transactor) Option {
	return func(s *Service) {
		if t != nil {
			s.transact = t
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("block list store is required")
	}
	s := &Service{
		store:    store,
		enhanced: true,
		transact: func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetBlockStatus implements ports.BlockStatusChecker. An explicit block list
// match wins over every policy.
func (s *Service) GetBlockStatus(
	ctx context.Context,
	profileID id.ProfileID,
	handle id.Handle,
	presentation models.Presentation,
	contactExists bool,
) (models.BlockStatus, error) {
	if variants := handle.Variants(); len(variants) > 0 {
		blocked, err := s.store.IsBlocked(ctx, profileID, variants)
		if err != nil {
			return models.StatusNotBlocked, err
		}
		if blocked {
			return models.StatusBlockedInList, nil
		}
	}
	if !s.enhanced {
		return models.StatusNotBlocked, nil
	}

	policy, err := s.store.GetPolicy(ctx, profileID)
	if err != nil {
		return models.StatusNotBlocked, err
	}
	return statusFor(policy, handle, presentation, contactExists), nil
}

func statusFor(p models.BlockPolicy, handle id.Handle, presentation models.Presentation, contactExists bool) models.BlockStatus {
	switch presentation {
	case models.PresentationRestricted:
		if p.BlockRestricted {
			return models.StatusRestricted
		}
	case models.PresentationPayphone:
		if p.BlockPayphone {
			return models.StatusPayphone
		}
	case models.PresentationUnknown:
		if p.BlockUnknown {
			return models.StatusUnknownNumber
		}
	case models.PresentationAllowed:
		if handle.Normalize().IsEmpty() {
			if p.BlockUnknown {
				return models.StatusUnknownNumber
			}
			break
		}
		if p.BlockNotInContacts && !contactExists {
			return models.StatusNotInContacts
		}
	}
	return models.StatusNotBlocked
}

// ----- Management -----

// Block adds handle to the profile's explicit block list.
func (s *Service) Block(ctx context.Context, profileID id.ProfileID, handle id.Handle) error {
	if handle.Normalize().IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "number is required")
	}
	return s.transact(ctx, func(ctx context.Context) error {
		if err := s.store.Block(ctx, profileID, handle); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to block number")
		}
		s.logChange(ctx, audit.EventNumberBlocked, profileID, handle)
		return nil
	})
}

func (s *Service) Unblock(ctx context.Context, profileID id.ProfileID, handle id.Handle) error {
	return s.transact(ctx, func(ctx context.Context) error {
		if err := s.store.Unblock(ctx, profileID, handle); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "number is not blocked")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to unblock number")
		}
		s.logChange(ctx, audit.EventNumberUnblocked, profileID, handle)
		return nil
	})
}

func (s *Service) ListBlocked(ctx context.Context, profileID id.ProfileID) ([]string, error) {
	numbers, err := s.store.ListBlocked(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blocked numbers")
	}
	return numbers, nil
}

func (s *Service) Policy(ctx context.Context, profileID id.ProfileID) (models.BlockPolicy, error) {
	p, err := s.store.GetPolicy(ctx, profileID)
	if err != nil {
		return models.BlockPolicy{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load block policy")
	}
	return p, nil
}

func (s *Service) SetPolicy(ctx context.Context, profileID id.ProfileID, policy models.BlockPolicy) error {
	return s.transact(ctx, func(ctx context.Context) error {
		if err := s.store.SetPolicy(ctx, profileID, policy); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save block policy")
		}
		observability.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventBlockPolicyUpdated,
			"profile_id", profileID.String(),
			"block_unknown", policy.BlockUnknown,
			"block_restricted", policy.BlockRestricted,
			"block_payphone", policy.BlockPayphone,
			"block_not_in_contacts", policy.BlockNotInContacts,
		)
		return nil
	})
}

func (s *Service) logChange(ctx context.Context, event audit.AuditEvent, profileID id.ProfileID, handle id.Handle) {
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event,
		"profile_id", profileID.String(),
		"subject_hash", privacy.HashHandle(handle),
	)
}
