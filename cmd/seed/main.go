package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"userauth/internal/auth"
	"userauth/internal/config"
	"userauth/internal/db"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/migrate"
	"userauth/internal/repository"
	"userauth/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	file := flag.String("file", "configs/seed_users.json", "JSON array of users to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	users, err := readSeedFile(*file)
	if err != nil {
		logger.Fatal("read seed file", zap.String("file", *file), zap.Error(err))
	}

	ctx := context.Background()
	gormDB, err := db.NewMySQL(ctx, cfg.MySQLDSN())
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := migrate.Up(ctx, sqlDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	hasher, err := auth.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("init hasher", zap.Error(err))
	}
	authService := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		hasher,
		auth.NewJWTService(cfg.Auth.JWTSecret, cfg.App.Name, cfg.TokenTTL()),
		service.WithLogger(logger),
	)

	created, skipped := seed(ctx, authService, users, logger)
	logger.Info("seed completed", zap.Int("created", created), zap.Int("skipped", skipped))
}

func readSeedFile(path string) ([]SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeSeedUsers(f)
}

func decodeSeedUsers(r io.Reader) ([]SeedUser, error) {
	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode seed users: %w", err)
	}
	return users, nil
}

// seed signs every user up. Users whose email is taken or whose data is
// invalid are skipped; other errors are logged and skipped too.
func seed(ctx context.Context, svc service.AuthService, users []SeedUser, logger *zap.Logger) (created, skipped int) {
	for _, u := range users {
		_, err := svc.Signup(ctx, service.SignupInput{Name: u.Name, Email: u.Email, Password: u.Password})
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrEmailInUse):
			skipped++
			logger.Info("user exists, skipping", zap.String("email", u.Email))
		default:
			skipped++
			logger.Warn("skip seed user", zap.String("email", u.Email), zap.Error(err))
		}
	}
	return created, skipped
}
