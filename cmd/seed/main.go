package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/travelia/travel-backend/config"
	"github.com/travelia/travel-backend/internal/application"
	"github.com/travelia/travel-backend/internal/container"
	"github.com/travelia/travel-backend/internal/domain/entity"
	"github.com/travelia/travel-backend/pkg/helpers"
)

// Seeds a demo traveller and a demo agent for local development. Safe to run
// repeatedly; existing accounts are reported and skipped.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	seeds := []application.RegisterInput{
		{
			Email:     "demo@travelia.dev",
			Password:  "password123",
			FirstName: "Demo",
			LastName:  "Traveller",
			Role:      entity.RoleStandard,
		},
		{
			Email:      "agent@travelia.dev",
			Password:   "password123",
			FirstName:  "Demo",
			LastName:   "Agent",
			Role:       entity.RoleAgent,
			AgencyName: "Travelia Demo Tours",
			LicenseNo:  "TA-0001",
		},
	}

	for _, in := range seeds {
		res, err := c.Identity.Register(ctx, in)
		if errors.Is(err, application.ErrAlreadyExists) {
			fmt.Printf("already seeded: %s\n", in.Email)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed %s: %v", in.Email, err)
		}
		fmt.Printf("seeded %s user: id=%s email=%s password=%s\n",
			res.Account.Role, res.Account.User.ID, in.Email, in.Password)
	}
}
