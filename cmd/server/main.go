package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/cramdeck/go-auth"
	"github.com/cramdeck/go-auth/middleware/jwtware"
)

type appConfig struct {
	signingKey      string
	issuer          string
	contextKey      string
	authScheme      string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	addr            string
	dsn             string
}

func (c appConfig) GetSigningKey() string             { return c.signingKey }
func (c appConfig) GetSigningMethod() string          { return "HS512" }
func (c appConfig) GetAccessTokenTTL() time.Duration  { return c.accessTokenTTL }
func (c appConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTokenTTL }
func (c appConfig) GetIssuer() string                 { return c.issuer }
func (c appConfig) GetContextKey() string             { return c.contextKey }
func (c appConfig) GetAuthScheme() string             { return c.authScheme }

func loadConfig() appConfig {
	cfg := appConfig{
		signingKey:      os.Getenv("AUTH_SIGNING_KEY"),
		issuer:          envOr("AUTH_ISSUER", "go-auth"),
		contextKey:      envOr("AUTH_CONTEXT_KEY", "user"),
		authScheme:      envOr("AUTH_SCHEME", "Bearer"),
		accessTokenTTL:  envDuration("AUTH_ACCESS_TOKEN_TTL", auth.DefaultAccessTokenTTL),
		refreshTokenTTL: envDuration("AUTH_REFRESH_TOKEN_TTL", auth.DefaultRefreshTokenTTL),
		addr:            envOr("AUTH_ADDR", ":9876"),
		dsn:             envOr("AUTH_DB_DSN", "file:auth.db?cache=shared&_pragma=foreign_keys(1)"),
	}

	if cfg.signingKey == "" {
		log.Fatal("AUTH_SIGNING_KEY is required")
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// applyMigrations runs the embedded schema files in lexical order. The files
// are idempotent so re-running on boot is safe.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	migrations := auth.GetMigrationsFS()

	var files []string
	err := fs.WalkDir(migrations, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".up.sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", file, err)
		}
	}

	return nil
}

func main() {
	cfg := loadConfig()

	db, err := openDatabase(cfg.dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := applyMigrations(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	provider := auth.NewUserProvider(repo.Users())
	auther := auth.NewAuthenticator(provider, repo.Users(), cfg)

	app := fiber.New(fiber.Config{
		AppName:      "go-auth",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	guard := auth.ProtectedRoute(cfg, auther.TokenService())

	authGroup := app.Group("/auth")
	auth.RegisterAuthRoutes(authGroup,
		auth.WithControllerAuther(auther),
		auth.WithControllerContextKey(cfg.GetContextKey()),
	)
	auth.RegisterProtectedRoutes(authGroup, guard,
		auth.WithControllerAuther(auther),
		auth.WithControllerContextKey(cfg.GetContextKey()),
	)

	api := app.Group("/api", guard)
	api.Get("/me", func(c *fiber.Ctx) error {
		principal, ok := auth.PrincipalFromContext(c.UserContext())
		if !ok {
			return auth.WriteError(c, auth.ErrUnauthorized)
		}
		return c.JSON(fiber.Map{
			"subject": principal.Subject,
			"roles":   principal.Roles,
		})
	})

	admin := app.Group("/admin", jwtware.New(jwtware.Config{
		TokenValidator: auth.RouteValidator(auther.TokenService()),
		ContextKey:     cfg.GetContextKey(),
		AuthScheme:     cfg.GetAuthScheme(),
		TokenKind:      auth.TokenKindAccess,
		MinimumRole:    auth.RoleAdmin,
	}))
	admin.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"pong": true})
	})

	go func() {
		if err := app.Listen(cfg.addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
