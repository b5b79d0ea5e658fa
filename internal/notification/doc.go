// Package notification は更新情報（Updates）フィードの通知ストアサービスを提供する。
//
// 新メンバー追加や休暇申請などのイベントごとに通知と受信者ごとの状態を保存し、
// 閲覧者向けのフィード一覧・詳細ポップアップ・既読/未読の切り替えAPIを公開する。
// 表示用の導出と状態遷移は internal/feed に委譲する。
package notification
