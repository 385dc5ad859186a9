package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/codegram/codegram-live/internal/config"
	"github.com/codegram/codegram-live/internal/domain"
	"github.com/codegram/codegram-live/internal/repository"
	"github.com/codegram/codegram-live/pkg/database"
	pkglog "github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/jwt"
)

var sampleUsers = []domain.UserModel{
	{Username: "alice", Name: "Alice", Bio: "Go and distributed systems", Role: domain.RoleUser},
	{Username: "bob", Name: "Bob", Bio: "Frontend and docs", Role: domain.RoleUser},
	{Username: "carol", Name: "Carol", Bio: "Bug hunter", Role: domain.RoleUser},
	{Username: "admin", Name: "Admin", Role: domain.RoleAdmin},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.Log.ServiceName = "codegram-seed"
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessDuration, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	ctx := context.Background()
	users := repository.NewGormUserRepository(db)
	for _, sample := range sampleUsers {
		u, err := users.GetByUsername(ctx, sample.Username)
		if errors.Is(err, repository.ErrNotFound) {
			u = &sample
			u.ID = uuid.NewString()
			err = users.Create(ctx, u)
		}
		if err != nil {
			logger.Fatal().Err(err).Str("username", sample.Username).Msg("failed to seed user")
		}

		token, exp, err := tokens.GenerateAccessToken(u.ID, u.Username, u.Role)
		if err != nil {
			logger.Fatal().Err(err).Str("username", u.Username).Msg("failed to sign token")
		}
		fmt.Printf("%-6s %s %s (expires %s)\n", u.Username, u.ID, token, exp.Format("2006-01-02 15:04"))
	}
}
