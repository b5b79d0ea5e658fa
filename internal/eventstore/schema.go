package eventstore

import (
	"context"
	"database/sql"
	"embed"

	"github.com/nao1215/hrm/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// initSchema はマイグレーションを実行してイベントストアのスキーマを適用する。
func initSchema(ctx context.Context, db *sql.DB) error {
	return migration.Run(ctx, db, migrationsFS, "migrations")
}
