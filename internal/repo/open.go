package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/api/option"

	"github.com/ICMVRD/sb1-hdboxt/internal/config"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/migrations"
)

// connectTimeout bounds how long Open waits for a store to answer.
const connectTimeout = 10 * time.Second

// Open connects to the store described by cfg, verifies it is reachable and
// returns it as a Conn. Postgres schemas are migrated to the latest version.
// Connection failures are reported as domain.ErrStoreUnavailable.
func Open(ctx context.Context, cfg config.StoreConfig) (Conn, error) {
	if err := cfg.Validate(); err != nil {
		return Conn{}, fmt.Errorf("repo.Open: %w: %w", domain.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres)
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverFirestore:
		return openFirestore(ctx, cfg)
	case config.DriverRedis:
		return openRedis(ctx, cfg)
	default:
		return Conn{Repo: NewMemoryReservationRepo(), Driver: config.DriverMemory}, nil
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (Conn, error) {
	if err := Migrate(ctx, cfg.URL); err != nil {
		return Conn{}, err
	}

	// New() does not open connections immediately; Ping does.
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return Conn{}, fmt.Errorf("repo.Open: postgres pool: %w", unavailable(err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return Conn{}, fmt.Errorf("repo.Open: postgres ping: %w", unavailable(err))
	}
	return Conn{Repo: NewReservationRepo(pool), Driver: config.DriverPostgres, Close: pool.Close}, nil
}

// Migrate applies every pending migration in migrations.FS to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	// goose needs database/sql, not a pgx pool.
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("repo.Migrate: open: %w", unavailable(err))
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("repo.Migrate: up: %w", unavailable(err))
	}
	return nil
}

func openMongo(ctx context.Context, cfg config.StoreConfig) (Conn, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return Conn{}, fmt.Errorf("repo.Open: mongo connect: %w", unavailable(err))
	}
	disconnect := func() { _ = client.Disconnect(context.Background()) }

	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return Conn{}, fmt.Errorf("repo.Open: mongo ping: %w", unavailable(err))
	}

	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Collection)
	r, err := NewMongoReservationRepo(ctx, coll)
	if err != nil {
		disconnect()
		return Conn{}, fmt.Errorf("repo.Open: %w", err)
	}
	return Conn{Repo: r, Driver: config.DriverMongo, Close: disconnect}, nil
}

func openFirestore(ctx context.Context, cfg config.StoreConfig) (Conn, error) {
	var opts []option.ClientOption
	if cfg.Firestore.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
	}

	// The client keeps the creation context for token refresh, so it must
	// outlive the connect timeout.
	app, err := firebase.NewApp(context.Background(), &firebase.Config{ProjectID: cfg.Firestore.ProjectID}, opts...)
	if err != nil {
		return Conn{}, fmt.Errorf("repo.Open: firebase app: %w", unavailable(err))
	}
	client, err := app.Firestore(context.Background())
	if err != nil {
		return Conn{}, fmt.Errorf("repo.Open: firestore client: %w", unavailable(err))
	}
	closeClient := func() { _ = client.Close() }

	r := NewFirestoreReservationRepo(client, cfg.Collection)
	if err := r.Ping(ctx); err != nil {
		closeClient()
		return Conn{}, fmt.Errorf("repo.Open: %w", err)
	}
	return Conn{Repo: r, Driver: config.DriverFirestore, Close: closeClient}, nil
}

func openRedis(ctx context.Context, cfg config.StoreConfig) (Conn, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	closeClient := func() { _ = rdb.Close() }

	if err := rdb.Ping(ctx).Err(); err != nil {
		closeClient()
		return Conn{}, fmt.Errorf("repo.Open: redis ping: %w", unavailable(err))
	}
	return Conn{Repo: NewRedisReservationRepo(rdb, cfg.Collection), Driver: config.DriverRedis, Close: closeClient}, nil
}
