package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/hrm/internal/feed"
	"github.com/nao1215/hrm/pkg/httpclient"
)

// StoreClient は通知サービスの内部APIを呼び出すクライアント。
// 他サービスから feed.StatusWriter として利用する。
type StoreClient struct {
	client *httpclient.Client
}

// NewStoreClient は新しいStoreClientを生成する。
// baseURLには通知サービスのベースURL（例: "http://notification:8086"）を指定する。
func NewStoreClient(baseURL string) *StoreClient {
	return &StoreClient{client: httpclient.New(baseURL)}
}

// UpdateNotificationStatus は受信者の状態を通知サービスに書き込む。
func (c *StoreClient) UpdateNotificationStatus(ctx context.Context, req feed.RequestDescriptor) error {
	path := fmt.Sprintf("/api/v1/internal/notifications/%s/recipients/%d/status",
		url.PathEscape(req.NotificationID), req.ViewerID)
	body := updateStatusRequest{Status: string(req.NewStatus)}
	ctx = httpclient.WithEmpID(ctx, req.ViewerID)
	if err := c.client.PutJSON(ctx, path, body, nil); err != nil {
		return mapStatusError(err)
	}
	return nil
}

// Notifications は閲覧者が受信者に含まれる通知をスナップショット付きで取得する。
func (c *StoreClient) Notifications(ctx context.Context, empID int64) ([]feed.Notification, error) {
	var notifications []feed.Notification
	path := "/api/v1/internal/notifications?emp_id=" + strconv.FormatInt(empID, 10)
	ctx = httpclient.WithEmpID(ctx, empID)
	if err := c.client.GetJSON(ctx, path, &notifications); err != nil {
		return nil, mapStatusError(err)
	}
	// 件名の種類はJSONに含まれないため、件名文字列から復元する
	for i := range notifications {
		notifications[i].Subject = feed.ParseSubject(notifications[i].Title)
	}
	return notifications, nil
}

// mapStatusError は通知サービスのHTTPエラーをパッケージのエラーに対応付ける。
func mapStatusError(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrRecipientNotFound, statusErr.Body)
	}
	return err
}
