package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// recordingWriter は書き込まれたリクエストを記録するテスト用のStatusWriter。
type recordingWriter struct {
	mu       sync.Mutex
	requests []RequestDescriptor
	err      error
	// block が設定されている場合、書き込みはチャネルが閉じられるまで待機する。
	block   chan struct{}
	entered chan struct{}
}

func (w *recordingWriter) UpdateNotificationStatus(_ context.Context, req RequestDescriptor) error {
	if w.entered != nil {
		close(w.entered)
	}
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.requests = append(w.requests, req)
	return nil
}

// TestTogglerToggle はToggler.Toggleを検証する。
func TestTogglerToggle(t *testing.T) {
	t.Parallel()

	t.Run("切り替えリクエストをストアに書き込むこと", func(t *testing.T) {
		t.Parallel()
		w := &recordingWriter{}
		toggler := NewToggler(w)
		n := newNotification("notif-1", RecipientEntry{EmpID: 1, Status: StatusNew})

		got, err := toggler.Toggle(t.Context(), n, 1)
		if err != nil {
			t.Fatalf("Toggle()でエラーが発生: %v", err)
		}
		want := RequestDescriptor{NotificationID: "notif-1", ViewerID: 1, NewStatus: StatusSeen}
		if got != want {
			t.Errorf("Toggle() = %+v, want %+v", got, want)
		}
		if len(w.requests) != 1 || w.requests[0] != want {
			t.Errorf("書き込まれたリクエスト = %+v, want [%+v]", w.requests, want)
		}
	})

	t.Run("ストアの書き込み失敗はStoreErrorを返すこと", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection refused")
		toggler := NewToggler(&recordingWriter{err: cause})
		n := newNotification("notif-1", RecipientEntry{EmpID: 1, Status: StatusSeen})

		_, err := toggler.Toggle(t.Context(), n, 1)
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			t.Fatalf("err = %v, want *StoreError", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("元のエラーがラップされていない: %v", err)
		}
		if storeErr.Request.NewStatus != StatusNew {
			t.Errorf("Request.NewStatus = %q, want %q", storeErr.Request.NewStatus, StatusNew)
		}
		if n.Recipients[0].Status != StatusSeen {
			t.Errorf("失敗時に通知の状態が変更された: %q", n.Recipients[0].Status)
		}
	})

	t.Run("受信者でない場合はストアに書き込まないこと", func(t *testing.T) {
		t.Parallel()
		w := &recordingWriter{}
		toggler := NewToggler(w)
		n := newNotification("notif-1", RecipientEntry{EmpID: 1, Status: StatusNew})

		_, err := toggler.Toggle(t.Context(), n, 2)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if len(w.requests) != 0 {
			t.Errorf("書き込み回数 = %d, want 0", len(w.requests))
		}
	})

	t.Run("処理中の同じ行への切り替えはErrToggleInFlightを返すこと", func(t *testing.T) {
		t.Parallel()
		w := &recordingWriter{block: make(chan struct{}), entered: make(chan struct{})}
		toggler := NewToggler(w)
		n := newNotification("notif-1", RecipientEntry{EmpID: 1, Status: StatusNew})

		done := make(chan error, 1)
		go func() {
			_, err := toggler.Toggle(context.Background(), n, 1)
			done <- err
		}()
		<-w.entered

		if _, err := toggler.Toggle(t.Context(), n, 1); !errors.Is(err, ErrToggleInFlight) {
			t.Errorf("err = %v, want ErrToggleInFlight", err)
		}

		close(w.block)
		if err := <-done; err != nil {
			t.Fatalf("1回目のToggle()でエラーが発生: %v", err)
		}

		// 完了後は再び切り替えられる
		w.entered = nil
		w.block = nil
		if _, err := toggler.Toggle(t.Context(), n, 1); err != nil {
			t.Errorf("完了後のToggle()でエラーが発生: %v", err)
		}
	})

	t.Run("異なる閲覧者の切り替えは同時に処理できること", func(t *testing.T) {
		t.Parallel()
		w := &recordingWriter{block: make(chan struct{}), entered: make(chan struct{})}
		toggler := NewToggler(w)
		n := newNotification("notif-1",
			RecipientEntry{EmpID: 1, Status: StatusNew},
			RecipientEntry{EmpID: 2, Status: StatusNew},
		)

		done := make(chan error, 1)
		go func() {
			_, err := toggler.Toggle(context.Background(), n, 1)
			done <- err
		}()
		<-w.entered

		if !toggler.acquire(toggleKey{notificationID: "notif-1", viewerID: 2}) {
			t.Error("別の閲覧者の切り替えが処理中として扱われた")
		}
		toggler.release(toggleKey{notificationID: "notif-1", viewerID: 2})

		close(w.block)
		if err := <-done; err != nil {
			t.Fatalf("Toggle()でエラーが発生: %v", err)
		}
	})
}
