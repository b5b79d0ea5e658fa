package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nao1215/hrm/internal/feed"
	notificationdb "github.com/nao1215/hrm/internal/notification/db"
)

var (
	// ErrNotificationNotFound は指定IDの通知が存在しないことを表す。
	ErrNotificationNotFound = errors.New("通知が見つかりません")
	// ErrRecipientNotFound は指定の従業員が通知の受信者でないことを表す。
	ErrRecipientNotFound = errors.New("受信者が見つかりません")
	// ErrNoRecipients は受信者が1人も指定されていないことを表す。
	ErrNoRecipients = errors.New("受信者が指定されていません")
	// ErrInvalidRecipients は受信者一覧に重複や不明なステータスが含まれることを表す。
	ErrInvalidRecipients = errors.New("受信者の指定が不正です")
)

// Store は通知と受信者ごとの状態を永続化するSQLiteストア。
// feed.StatusWriter を実装する。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *notificationdb.Queries
}

// NewStore は新しいストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, queries: notificationdb.New(db)}
}

// CreateParams は通知作成のパラメータ。
type CreateParams struct {
	// Title は件名文字列。
	Title string
	// Message は通知メッセージ。
	Message string
	// Recipients は受信者と初期状態。状態が空の場合は new とする。
	Recipients []feed.RecipientEntry
	// Employee は対象従業員のスナップショット。
	Employee *feed.EmployeeSnapshot
	// TimeOffHistory は休暇申請履歴のスナップショット。
	TimeOffHistory *feed.TimeOffHistorySnapshot
	// AnnualTimeOff は年間休暇残高のスナップショット。
	AnnualTimeOff *feed.AnnualTimeOffSnapshot
	// TimeOff は休暇ポリシーのスナップショット。
	TimeOff *feed.TimeOffSnapshot
}

// Create は通知と受信者を1トランザクションで保存し、採番した通知IDを返す。
func (s *Store) Create(ctx context.Context, params CreateParams) (string, error) {
	if len(params.Recipients) == 0 {
		return "", ErrNoRecipients
	}
	recipients := make([]feed.RecipientEntry, len(params.Recipients))
	for i, r := range params.Recipients {
		if r.Status == "" {
			r.Status = feed.StatusNew
		}
		recipients[i] = r
	}
	if err := feed.ValidateRecipients(recipients); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRecipients, err)
	}

	row := notificationdb.CreateNotificationParams{
		ID:      uuid.New().String(),
		Subject: params.Title,
		Message: params.Message,
	}
	var err error
	if row.Employee, err = encodeSnapshot(params.Employee); err != nil {
		return "", err
	}
	if row.TimeOffHistory, err = encodeSnapshot(params.TimeOffHistory); err != nil {
		return "", err
	}
	if row.AnnualTimeOff, err = encodeSnapshot(params.AnnualTimeOff); err != nil {
		return "", err
	}
	if row.TimeOff, err = encodeSnapshot(params.TimeOff); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	qtx := s.queries.WithTx(tx)
	if err := qtx.CreateNotification(ctx, row); err != nil {
		return "", fmt.Errorf("通知の保存に失敗: %w", err)
	}
	for _, r := range recipients {
		if err := qtx.CreateRecipient(ctx, notificationdb.CreateRecipientParams{
			NotificationID: row.ID,
			EmpID:          r.EmpID,
			Status:         string(r.Status),
		}); err != nil {
			return "", fmt.Errorf("受信者の保存に失敗 (emp_id=%d): %w", r.EmpID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return row.ID, nil
}

// Get は指定IDの通知を受信者一覧付きで返す。
func (s *Store) Get(ctx context.Context, id string) (feed.Notification, error) {
	row, err := s.queries.GetNotificationByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return feed.Notification{}, fmt.Errorf("通知の取得に失敗: %w", err)
	}
	recipients, err := s.queries.ListRecipientsByNotificationID(ctx, id)
	if err != nil {
		return feed.Notification{}, fmt.Errorf("受信者の取得に失敗: %w", err)
	}
	return toNotification(row, recipients)
}

// ListForViewer は閲覧者が受信者に含まれる通知を新しい順に返す。
// 各通知には閲覧者以外の受信者の状態も含まれる。
func (s *Store) ListForViewer(ctx context.Context, empID int64) ([]feed.Notification, error) {
	rows, err := s.queries.ListNotificationsByEmpID(ctx, empID)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗: %w", err)
	}
	recipients, err := s.queries.ListRecipientsVisibleToEmpID(ctx, empID)
	if err != nil {
		return nil, fmt.Errorf("受信者一覧の取得に失敗: %w", err)
	}

	byNotification := make(map[string][]notificationdb.NotificationRecipient, len(rows))
	for _, r := range recipients {
		byNotification[r.NotificationID] = append(byNotification[r.NotificationID], r)
	}

	notifications := make([]feed.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := toNotification(row, byNotification[row.ID])
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// UpdateNotificationStatus は受信者の状態を書き込む。
// 同じ状態を再適用しても結果は変わらない。
func (s *Store) UpdateNotificationStatus(ctx context.Context, req feed.RequestDescriptor) error {
	if _, err := feed.ParseStatus(string(req.NewStatus)); err != nil {
		return err
	}
	affected, err := s.queries.UpdateRecipientStatus(ctx, notificationdb.UpdateRecipientStatusParams{
		Status:         string(req.NewStatus),
		NotificationID: req.NotificationID,
		EmpID:          req.ViewerID,
	})
	if err != nil {
		return fmt.Errorf("通知ステータスの更新に失敗: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification=%s, emp_id=%d", ErrRecipientNotFound, req.NotificationID, req.ViewerID)
	}
	return nil
}

// MarkAllSeen は閲覧者の未読の通知をすべて seen にし、状態が変わった通知のIDを返す。
func (s *Store) MarkAllSeen(ctx context.Context, empID int64) ([]string, error) {
	ids, err := s.queries.MarkAllSeenByEmpID(ctx, empID)
	if err != nil {
		return nil, fmt.Errorf("全通知の既読処理に失敗: %w", err)
	}
	return ids, nil
}

// toNotification はDB行をフィードの読み取り用モデルに変換する。
func toNotification(row notificationdb.Notification, recipients []notificationdb.NotificationRecipient) (feed.Notification, error) {
	n := feed.Notification{
		ID:         row.ID,
		Subject:    feed.ParseSubject(row.Subject),
		Title:      row.Subject,
		Message:    row.Message,
		Recipients: make([]feed.RecipientEntry, 0, len(recipients)),
		CreatedAt:  row.CreatedAt,
	}
	for _, r := range recipients {
		n.Recipients = append(n.Recipients, feed.RecipientEntry{EmpID: r.EmpID, Status: feed.Status(r.Status)})
	}

	var err error
	if n.Employee, err = decodeSnapshot[feed.EmployeeSnapshot](row.Employee); err != nil {
		return feed.Notification{}, fmt.Errorf("通知 %s の従業員情報: %w", row.ID, err)
	}
	if n.TimeOffHistory, err = decodeSnapshot[feed.TimeOffHistorySnapshot](row.TimeOffHistory); err != nil {
		return feed.Notification{}, fmt.Errorf("通知 %s の休暇申請履歴: %w", row.ID, err)
	}
	if n.AnnualTimeOff, err = decodeSnapshot[feed.AnnualTimeOffSnapshot](row.AnnualTimeOff); err != nil {
		return feed.Notification{}, fmt.Errorf("通知 %s の年間休暇残高: %w", row.ID, err)
	}
	if n.TimeOff, err = decodeSnapshot[feed.TimeOffSnapshot](row.TimeOff); err != nil {
		return feed.Notification{}, fmt.Errorf("通知 %s の休暇ポリシー: %w", row.ID, err)
	}
	return n, nil
}

// encodeSnapshot はスナップショットをJSON文字列に変換する。nilはNULLとして保存する。
func encodeSnapshot[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("スナップショットのシリアライズに失敗: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// decodeSnapshot はJSON文字列をスナップショットに復元する。NULLはnilを返す。
func decodeSnapshot[T any](s sql.NullString) (*T, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("スナップショットのデシリアライズに失敗: %w", err)
	}
	return &v, nil
}
