// internal/adapters/localdb/organization_store.go
package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// organizationStore implements ports.OrganizationStore. Organizations are
// online-only and bypass the pending queue, so there is no pending variant
// of Put.
type organizationStore struct {
	q      querier
	logger *slog.Logger
}

// PutSynced upserts the local copy of an organization after the remote
// accepted it.
func (s *organizationStore) PutSynced(ctx context.Context, org *domain.Organization) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO organizations (
			id, name, description, type, icon, color,
			contact_email, contact_phone, address, is_default,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			type = excluded.type,
			icon = excluded.icon,
			color = excluded.color,
			contact_email = excluded.contact_email,
			contact_phone = excluded.contact_phone,
			address = excluded.address,
			is_default = excluded.is_default,
			updated_at = excluded.updated_at`,
		org.ID, org.Name, org.Description, org.Type, org.Icon, org.Color,
		org.ContactEmail, org.ContactPhone, org.Address, org.IsDefault,
		org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving organization: %w", err)
	}

	s.logger.DebugContext(ctx, "organization saved", slog.String("id", org.ID))
	return nil
}

// Get returns an organization by id, or nil when it does not exist.
func (s *organizationStore) Get(ctx context.Context, id string) (*domain.Organization, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, description, type, icon, color,
		       contact_email, contact_phone, address, is_default,
		       created_at, updated_at
		FROM organizations WHERE id = ?`, id)

	org := &domain.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.Description, &org.Type,
		&org.Icon, &org.Color, &org.ContactEmail, &org.ContactPhone,
		&org.Address, &org.IsDefault, &org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return org, nil
}

// List returns all locally known organizations ordered by name.
func (s *organizationStore) List(ctx context.Context) ([]domain.Organization, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, description, type, icon, color,
		       contact_email, contact_phone, address, is_default,
		       created_at, updated_at
		FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.Type,
			&org.Icon, &org.Color, &org.ContactEmail, &org.ContactPhone,
			&org.Address, &org.IsDefault, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// Delete removes the local copy of an organization.
func (s *organizationStore) Delete(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	return nil
}
