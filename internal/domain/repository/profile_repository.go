package repository

import (
	"context"

	"github.com/travelia/travel-backend/internal/domain/entity"
)

// ProfileRepository manages the 1:1 role-profile extensions of a user.
// Get* return ErrNotFound when the user has no profile of that role.
type ProfileRepository interface {
	CreateAgent(ctx context.Context, p *entity.AgentProfile) error
	CreateCorporate(ctx context.Context, p *entity.CorporateProfile) error
	GetAgentByUserID(ctx context.Context, userID string) (*entity.AgentProfile, error)
	GetCorporateByUserID(ctx context.Context, userID string) (*entity.CorporateProfile, error)
}
