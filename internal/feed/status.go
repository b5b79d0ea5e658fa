package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は閲覧者が通知の受信者に含まれていないことを表す。
	// 上流のデータ不整合を示すため、既定値で補わずに呼び出し元へ返す。
	ErrNotFound = errors.New("閲覧者の受信者エントリが見つかりません")
	// ErrDuplicateRecipient は1つの通知に同じ従業員の受信者エントリが複数あることを表す。
	ErrDuplicateRecipient = errors.New("受信者エントリが重複しています")
)

// NotFoundError は StatusFor で受信者エントリが見つからなかった場合のエラー。
type NotFoundError struct {
	// NotificationID は対象の通知ID。
	NotificationID string
	// ViewerID は閲覧者の従業員ID。
	ViewerID int64
}

// Error はエラーメッセージを返す。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: notification=%s, emp_id=%d", ErrNotFound, e.NotificationID, e.ViewerID)
}

// Is は errors.Is(err, ErrNotFound) を満たすために実装する。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RequestDescriptor はストアに適用させる状態変更リクエスト。
type RequestDescriptor struct {
	// NotificationID は対象の通知ID。
	NotificationID string `json:"notification_id"`
	// ViewerID は閲覧者の従業員ID。
	ViewerID int64 `json:"emp_id"`
	// NewStatus は適用後の状態。
	NewStatus Status `json:"status"`
}

// StatusFor は閲覧者にとっての通知の状態を返す。
// 受信者エントリがない場合は *NotFoundError を返す。
func StatusFor(n Notification, viewerID int64) (Status, error) {
	for _, r := range n.Recipients {
		if r.EmpID == viewerID {
			return r.Status, nil
		}
	}
	return "", &NotFoundError{NotificationID: n.ID, ViewerID: viewerID}
}

// NextStatus は切り替え後の状態を返す。
// new と waiting は未読として扱い seen へ、seen は new へ戻る。
func NextStatus(current Status) Status {
	switch current {
	case StatusNew, StatusWaiting:
		return StatusSeen
	default:
		return StatusNew
	}
}

// ToggleStatus は既読/未読の切り替えリクエストを生成する。
// 通知自体は変更しない。ストアへの適用後は呼び出し元が再取得すること。
func ToggleStatus(n Notification, viewerID int64) (RequestDescriptor, error) {
	current, err := StatusFor(n, viewerID)
	if err != nil {
		return RequestDescriptor{}, err
	}
	return RequestDescriptor{
		NotificationID: n.ID,
		ViewerID:       viewerID,
		NewStatus:      NextStatus(current),
	}, nil
}
