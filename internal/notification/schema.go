package notification

import (
	"context"
	"database/sql"
	"embed"

	"github.com/nao1215/hrm/pkg/migration"
)

// スキーマ定義。sqlc.yaml からも同じディレクトリを参照する。
//
//go:embed migrations
var migrationsFS embed.FS

// initSchema はマイグレーションを実行して通知ストアのスキーマを適用する。
func initSchema(ctx context.Context, db *sql.DB) error {
	return migration.Run(ctx, db, migrationsFS, "migrations")
}
