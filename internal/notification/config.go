package notification

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config は通知サービスの設定。環境変数から読み込む。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8086"`
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string `env:"DATABASE_PATH" envDefault:"/data/notification.db"`
	// EventStoreURL はEvent StoreのベースURL。空の場合はイベントを発行しない。
	EventStoreURL string `env:"EVENTSTORE_URL" envDefault:"http://localhost:8084"`
	// JWTSecret はJWTの署名検証に使うシークレット。
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// AllowedOrigins はCORSで許可するフロントエンドのオリジン。
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// LoadConfig は環境変数から設定を読み込む。
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return cfg, nil
}

// dsn はSQLiteの接続文字列を返す。
// 書き込みが重なっても待機できるよう busy_timeout とWALを有効にし、
// トランザクションは BEGIN IMMEDIATE で開始する。
func (c Config) dsn() string {
	return c.DatabasePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
}
