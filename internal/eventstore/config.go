package eventstore

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config はイベントストアサービスの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8084"`
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string `env:"DATABASE_PATH" envDefault:"/data/eventstore.db"`
}

// dsn はSQLiteの接続文字列を返す。
// 同じAggregateIDへの追記を直列化するため、トランザクションは BEGIN IMMEDIATE で開始する。
func (c Config) dsn() string {
	return c.DatabasePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

// LoadConfig は環境変数から設定を読み込む。
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return cfg, nil
}
