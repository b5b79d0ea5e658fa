package feed

import (
	"fmt"
	"time"
)

// Badge は一覧の状態表示ラベル。
type Badge struct {
	// Label は表示文字列。
	Label string `json:"label"`
	// Dot はラベル横のドットの色。
	Dot string `json:"dot"`
}

// badges は状態ごとのラベル。
var badges = map[Status]Badge{
	StatusNew:     {Label: "New", Dot: "orange"},
	StatusWaiting: {Label: "Waiting", Dot: "red"},
	StatusSeen:    {Label: "Seen", Dot: "grey"},
}

// Row は閲覧者1人から見た更新一覧の1行。
type Row struct {
	// NotificationID は通知ID。
	NotificationID string `json:"id"`
	// Subject は件名文字列。
	Subject string `json:"subject"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Status は閲覧者にとっての状態。
	Status Status `json:"status"`
	// Badge は状態ラベル。
	Badge Badge `json:"badge"`
	// Highlighted は未読行を強調表示するかどうか。
	Highlighted bool `json:"highlighted"`
	// ToggleLabel は既読/未読切り替えボタンの文言。
	ToggleLabel string `json:"toggle_label"`
	// DetailKind は「View」で開くポップアップの種類。
	DetailKind DetailKind `json:"detail_kind"`
	// CreatedAt は通知の作成日時。
	CreatedAt time.Time `json:"created_at"`
}

// RowFor は通知1件を閲覧者の一覧行に変換する。
func RowFor(n Notification, viewerID int64) (Row, error) {
	status, err := StatusFor(n, viewerID)
	if err != nil {
		return Row{}, err
	}
	toggle := "Mark as read"
	if status == StatusSeen {
		toggle = "Mark as unread"
	}
	return Row{
		NotificationID: n.ID,
		Subject:        n.Title,
		Message:        n.Message,
		Status:         status,
		Badge:          badges[status],
		Highlighted:    status.Unseen(),
		ToggleLabel:    toggle,
		DetailKind:     DetailKindFor(n.Subject),
		CreatedAt:      n.CreatedAt,
	}, nil
}

// Rows は通知一覧を閲覧者の一覧行に変換する。入力は変更せず新しいスライスを返す。
// 閲覧者が受信者に含まれない通知が1件でもあればエラーを返す。
func Rows(notifications []Notification, viewerID int64) ([]Row, error) {
	rows := make([]Row, 0, len(notifications))
	for _, n := range notifications {
		row, err := RowFor(n, viewerID)
		if err != nil {
			return nil, fmt.Errorf("一覧行の生成に失敗: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Filter は条件に一致する行だけを含む新しいスライスを返す。
func Filter(rows []Row, keep func(Row) bool) []Row {
	filtered := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ParseStatusFilter はクエリ文字列から行の絞り込み条件を生成する。
// 空文字列はすべての行、"unseen" は既読以外の行に一致する。
func ParseStatusFilter(s string) (func(Row) bool, error) {
	switch s {
	case "":
		return func(Row) bool { return true }, nil
	case "unseen":
		return func(r Row) bool { return r.Status.Unseen() }, nil
	}
	status, err := ParseStatus(s)
	if err != nil {
		return nil, err
	}
	return func(r Row) bool { return r.Status == status }, nil
}

// CountUnseen は既読以外の行数を返す。
func CountUnseen(rows []Row) int {
	return len(Filter(rows, func(r Row) bool { return r.Status.Unseen() }))
}
