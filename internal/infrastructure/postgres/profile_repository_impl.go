package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/travelia/travel-backend/internal/domain/entity"
	"github.com/travelia/travel-backend/internal/domain/repository"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) CreateAgent(ctx context.Context, p *entity.AgentProfile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO agent_profiles (user_id, agency_name, license_no)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.AgencyName, p.LicenseNo)

	return mapWriteErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) CreateCorporate(ctx context.Context, p *entity.CorporateProfile) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO corporate_profiles (user_id, company_name, tax_id, billing_email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.CompanyName, p.TaxID, p.BillingEmail)

	return mapWriteErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) GetAgentByUserID(ctx context.Context, userID string) (*entity.AgentProfile, error) {
	p := &entity.AgentProfile{}

	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, agency_name, license_no, created_at, updated_at
		FROM agent_profiles
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&p.ID, &p.UserID, &p.AgencyName, &p.LicenseNo,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *ProfileRepository) GetCorporateByUserID(ctx context.Context, userID string) (*entity.CorporateProfile, error) {
	p := &entity.CorporateProfile{}

	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, company_name, tax_id, billing_email, created_at, updated_at
		FROM corporate_profiles
		WHERE user_id = $1
	`, userID)

	if err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.TaxID, &p.BillingEmail,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
