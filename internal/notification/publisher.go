package notification

import (
	"context"
	"log"

	"github.com/nao1215/hrm/pkg/event"
	"github.com/nao1215/hrm/pkg/httpclient"
)

// eventsPath はEvent Storeのイベント追記APIのパス。
const eventsPath = "/api/v1/events"

// publisher は通知のドメインイベントをEvent Storeへ送信する。
// 送信に失敗しても通知の処理自体は成功として扱い、ログに記録するだけにする。
type publisher struct {
	// client はEvent Storeへの通信クライアント。nilの場合は送信しない。
	client *httpclient.Client
}

// newPublisher は新しいpublisherを生成する。eventStoreURLが空の場合は何もしない。
func newPublisher(eventStoreURL string) *publisher {
	if eventStoreURL == "" {
		return &publisher{}
	}
	return &publisher{client: httpclient.New(eventStoreURL)}
}

// notificationSent はNotificationSentイベントを送信する。
func (p *publisher) notificationSent(ctx context.Context, notificationID string, data event.NotificationSentData) {
	p.publish(ctx, notificationID, event.TypeNotificationSent, data)
}

// statusChanged はNotificationStatusChangedイベントを送信する。
func (p *publisher) statusChanged(ctx context.Context, notificationID string, data event.NotificationStatusChangedData) {
	p.publish(ctx, notificationID, event.TypeNotificationStatusChanged, data)
}

func (p *publisher) publish(ctx context.Context, notificationID string, eventType event.Type, data any) {
	if p.client == nil {
		return
	}
	ev, err := event.New(event.NotificationAggregateID(notificationID), event.AggregateTypeNotification, eventType, data)
	if err != nil {
		log.Printf("[Notification] %sイベントの生成に失敗: %v", eventType, err)
		return
	}
	var resp map[string]any
	if err := p.client.PostJSON(ctx, eventsPath, ev, &resp); err != nil {
		log.Printf("[Notification] %sイベントの送信に失敗: %v", eventType, err)
	}
}
