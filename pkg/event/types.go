package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeNotification は通知エンティティを表す。
	AggregateTypeNotification AggregateType = "Notification"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeNotificationSent は通知が作成され受信者に配信されたことを表す。
	TypeNotificationSent Type = "NotificationSent"
	// TypeNotificationStatusChanged は受信者にとっての通知の状態が変わったことを表す。
	TypeNotificationStatusChanged Type = "NotificationStatusChanged"
)

// Event はEvent Storeに追記される不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// NotificationSentData はNotificationSentイベントのデータ。
type NotificationSentData struct {
	// Subject は通知の件名。
	Subject string `json:"subject"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// RecipientEmpIDs は受信者の従業員ID一覧。
	RecipientEmpIDs []int64 `json:"recipient_emp_ids"`
}

// NotificationStatusChangedData はNotificationStatusChangedイベントのデータ。
type NotificationStatusChangedData struct {
	// EmpID は状態が変わった受信者の従業員ID。
	EmpID int64 `json:"emp_id"`
	// Status は変更後の状態。
	Status string `json:"status"`
}
