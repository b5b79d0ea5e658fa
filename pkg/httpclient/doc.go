// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// 通知サービスへのストア読み書きやEvent Storeへのイベント送信など、
// JSONを送受信するサービス間の通信パターンを統一する。
package httpclient
