// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWTから閲覧者の従業員IDを取り出す認証、パニックリカバリ、
// SPAフロントエンド向けのCORS設定を含む。
package middleware
