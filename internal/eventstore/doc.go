// Package eventstore はイベントストアサービスの内部実装を提供する。
//
// 通知サービスが発行するドメインイベント（NotificationSent、
// NotificationStatusChanged）を追記専用で永続化し、監査用に参照できるようにする。
//
// 主な機能:
//   - イベントの追記（Append）
//   - AggregateIDによるイベント取得（通知ごとの状態変更履歴）
//   - イベントタイプによるイベント取得
//   - 日時指定によるイベント取得
package eventstore
