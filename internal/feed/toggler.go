package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrToggleInFlight は同じ通知・閲覧者の切り替えが処理中であることを表す。
var ErrToggleInFlight = errors.New("同じ通知の状態切り替えが処理中です")

// StatusWriter は通知ストアへの状態書き込みインターフェース。
// 同じ状態を2回適用しても結果は変わらないこと。
type StatusWriter interface {
	UpdateNotificationStatus(ctx context.Context, req RequestDescriptor) error
}

// StoreError はストアへの書き込みが失敗したことを表す。
// フィードは自動リトライを行わない。
type StoreError struct {
	// Request は適用しようとしたリクエスト。
	Request RequestDescriptor
	// Err は元のエラー。
	Err error
}

// Error はエラーメッセージを返す。
func (e *StoreError) Error() string {
	return fmt.Sprintf("通知ステータスの書き込みに失敗 (notification=%s, emp_id=%d, status=%s): %v",
		e.Request.NotificationID, e.Request.ViewerID, e.Request.NewStatus, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *StoreError) Unwrap() error {
	return e.Err
}

// toggleKey は処理中の切り替えを識別するキー。
type toggleKey struct {
	notificationID string
	viewerID       int64
}

// Toggler は状態切り替えリクエストをストアへ適用する。
// 同じ通知・閲覧者について同時に1件しか処理しない。
type Toggler struct {
	// writer は状態の書き込み先。
	writer StatusWriter
	// mu は inFlight への並行アクセスを保護するミューテックス。
	mu sync.Mutex
	// inFlight は処理中の切り替えの集合。
	inFlight map[toggleKey]struct{}
}

// NewToggler は新しい Toggler を生成する。
func NewToggler(writer StatusWriter) *Toggler {
	return &Toggler{
		writer:   writer,
		inFlight: make(map[toggleKey]struct{}),
	}
}

// Toggle は閲覧者の通知状態を切り替える。
// 書き込みに成功した場合のみ適用したリクエストを返す。失敗時は *StoreError を返し、
// 呼び出し元は表示中の状態を変更してはならない。
func (t *Toggler) Toggle(ctx context.Context, n Notification, viewerID int64) (RequestDescriptor, error) {
	req, err := ToggleStatus(n, viewerID)
	if err != nil {
		return RequestDescriptor{}, err
	}

	key := toggleKey{notificationID: n.ID, viewerID: viewerID}
	if !t.acquire(key) {
		return RequestDescriptor{}, ErrToggleInFlight
	}
	defer t.release(key)

	if err := t.writer.UpdateNotificationStatus(ctx, req); err != nil {
		return RequestDescriptor{}, &StoreError{Request: req, Err: err}
	}
	return req, nil
}

func (t *Toggler) acquire(key toggleKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inFlight[key]; busy {
		return false
	}
	t.inFlight[key] = struct{}{}
	return true
}

func (t *Toggler) release(key toggleKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, key)
}
