// Package feed は更新情報（Updates）フィードのビューモデル導出と
// 既読状態の遷移を提供する。
//
// 通知ストアから取得済みの通知を入力として受け取り、閲覧者ごとの
// 状態の参照、件名に応じた詳細ポップアップ用ペイロードの抽出、
// 既読/未読の切り替えリクエストの生成を行う。永続化は行わず、
// 状態の書き込みは StatusWriter に委譲する。
//
// 入力の通知スライスや受信者エントリは変更しない。導出結果は常に
// 新しい値として返す。
package feed
