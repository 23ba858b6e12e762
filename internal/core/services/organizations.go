// internal/core/services/organizations.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
	"github.com/pklemenc/shelfsync/internal/core/ports"
)

// ErrOffline is returned for operations that require the remote authority
// while it is unreachable.
var ErrOffline = errors.New("operation requires connectivity")

// OrganizationService manages organizations. Unlike inventory, organization
// writes are online-only: they go to the remote authority first and the local
// copy is refreshed only after the remote accepted the change. Reads fall
// back to the local copy when the remote is unreachable.
type OrganizationService struct {
	store  ports.Store
	remote ports.RemoteAuthority
	logger *slog.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(store ports.Store, remote ports.RemoteAuthority, logger *slog.Logger) *OrganizationService {
	return &OrganizationService{
		store:  store,
		remote: remote,
		logger: logger.With(slog.String("service", "organizations")),
	}
}

// List returns all organizations, refreshing the local copy from the remote
// when it is reachable and serving the local copy otherwise.
func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.remote.ListOrganizations(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrRemoteUnavailable) {
			s.logger.DebugContext(ctx, "remote unreachable, serving local organizations")
			local, lerr := s.store.Organizations().List(ctx)
			if lerr != nil {
				return nil, fmt.Errorf("failed to list organizations: %w", lerr)
			}
			return local, nil
		}
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	for i := range orgs {
		if err := s.store.Organizations().PutSynced(ctx, &orgs[i]); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh local organization",
				slog.String("id", orgs[i].ID),
				slog.String("error", err.Error()))
		}
	}
	return orgs, nil
}

// Get returns one organization from the local copy.
func (s *OrganizationService) Get(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.store.Organizations().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if org == nil {
		return nil, fmt.Errorf("organization not found: %s", id)
	}
	return org, nil
}

// Create registers a new organization with the remote authority.
func (s *OrganizationService) Create(ctx context.Context, org *domain.Organization) error {
	if err := org.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	org.PrepareForStorage()

	if err := s.remote.CreateOrganization(ctx, org); err != nil {
		if errors.Is(err, ports.ErrRemoteUnavailable) {
			return fmt.Errorf("failed to create organization: %w", ErrOffline)
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	if err := s.store.Organizations().PutSynced(ctx, org); err != nil {
		return fmt.Errorf("failed to store organization: %w", err)
	}

	s.logger.InfoContext(ctx, "organization created",
		slog.String("id", org.ID),
		slog.String("name", org.Name))
	return nil
}

// Update edits an organization on the remote authority.
func (s *OrganizationService) Update(ctx context.Context, id string, org *domain.Organization) error {
	org.ID = id
	if err := org.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	org.PrepareForStorage()

	if err := s.remote.UpdateOrganization(ctx, org); err != nil {
		if errors.Is(err, ports.ErrRemoteUnavailable) {
			return fmt.Errorf("failed to update organization: %w", ErrOffline)
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}

	if err := s.store.Organizations().PutSynced(ctx, org); err != nil {
		return fmt.Errorf("failed to store organization: %w", err)
	}

	s.logger.InfoContext(ctx, "organization updated", slog.String("id", id))
	return nil
}

// Delete removes an organization on the remote authority and drops the local
// copy.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if err := s.remote.DeleteOrganization(ctx, id); err != nil {
		if errors.Is(err, ports.ErrRemoteUnavailable) {
			return fmt.Errorf("failed to delete organization: %w", ErrOffline)
		}
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	if err := s.store.Organizations().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to drop local organization: %w", err)
	}

	s.logger.InfoContext(ctx, "organization deleted", slog.String("id", id))
	return nil
}
