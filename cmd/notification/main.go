// 通知サービスのエントリポイント。
// 更新情報フィードの通知と閲覧者ごとの状態を保存し、
// 一覧・詳細・既読/未読切り替えのAPIを提供する。
package main

import (
	"log"

	"github.com/nao1215/hrm/internal/notification"
)

func main() {
	cfg, err := notification.LoadConfig()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server, err := notification.NewServer(cfg)
	if err != nil {
		log.Fatalf("通知サーバーの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("通知サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("通知サービスの起動に失敗: %v", err)
	}
}
