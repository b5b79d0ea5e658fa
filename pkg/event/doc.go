// Package event は通知サービスがEvent Storeへ発行するイベントの型を定義する。
package event
