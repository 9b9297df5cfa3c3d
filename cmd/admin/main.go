// Command admin prepares a newsdesk database: it creates the indexes the
// server relies on and can grant the admin role to an account.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/newsdesk/newsdesk-server/internal/config"
	"github.com/newsdesk/newsdesk-server/internal/database"
	"github.com/newsdesk/newsdesk-server/internal/models"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
)

func main() {
	email := flag.String("email", "", "grant the admin role to this account, creating it if needed")
	skipIndexes := flag.Bool("skip-indexes", false, "do not create indexes")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI (or DB_USER/DB_PASS/DB_HOST) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)

	if !*skipIndexes {
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Fatalf("%v", err)
		}
		logger.Infof("indexes ensured on %s", cfg.MongoDB.Database)
	}

	if *email == "" {
		return
	}
	addr := models.NormalizeEmail(*email)
	repo := users.NewMongoUserRepository(db.Collection(database.UsersCollection))
	if _, err := repo.Upsert(ctx, addr, nil); err != nil {
		logger.Fatalf("create user %s: %v", addr, err)
	}
	res, err := users.NewService(repo, cfg.OIDC.AdminEmails).MakeAdmin(ctx, addr)
	if err != nil {
		logger.Fatalf("grant admin to %s: %v", addr, err)
	}
	logger.Infof("admin role granted to %s (modified=%d)", addr, res.ModifiedCount)
}
