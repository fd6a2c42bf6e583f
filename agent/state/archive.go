package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/waritnan/marque/agent/contract"
)

// PostgresConfig configures the durable snapshot archive.
type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type conversationRow struct {
	bun.BaseModel `bun:"table:conversation_snapshots"`

	SessionID string    `bun:"session_id,pk"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresArchive stores conversation snapshots in Postgres. Unlike the
// Redis store it has no TTL: rows live until deleted.
type PostgresArchive struct {
	db  *bun.DB
	now func() time.Time
}

var _ contractx.ArchiveStore = (*PostgresArchive)(nil)

func NewPostgresArchive(ctx context.Context, cfg PostgresConfig) (*PostgresArchive, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	archive := &PostgresArchive{db: db, now: time.Now}
	if err := archive.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate snapshot table: %w", err)
	}
	return archive, nil
}

func (a *PostgresArchive) migrate(ctx context.Context) error {
	_, err := a.db.NewCreateTable().
		Model((*conversationRow)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (a *PostgresArchive) Save(ctx context.Context, sessionID string, payload []byte) error {
	if strings.TrimSpace(sessionID) == "" {
		return contractx.ErrInvalidSession
	}
	if len(payload) == 0 {
		return errors.New("empty snapshot payload")
	}

	row := &conversationRow{
		SessionID: sessionID,
		Payload:   payload,
		UpdatedAt: a.now().UTC(),
	}
	_, err := a.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, contractx.ErrInvalidSession
	}

	row := new(conversationRow)
	err := a.db.NewSelect().
		Model(row).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return row.Payload, nil
}

func (a *PostgresArchive) Delete(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return contractx.ErrInvalidSession
	}

	_, err := a.db.NewDelete().
		Model((*conversationRow)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Close() error {
	return a.db.Close()
}
