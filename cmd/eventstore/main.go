// イベントストアサービスのエントリポイント。
// 通知サービスが発行するイベントを追記専用で永続化する。
package main

import (
	"log"

	"github.com/nao1215/hrm/internal/eventstore"
)

func main() {
	cfg, err := eventstore.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := eventstore.NewServer(cfg)
	if err != nil {
		log.Fatalf("イベントストアサーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("イベントストアサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("イベントストアサービスの起動に失敗: %v", err)
	}
}
