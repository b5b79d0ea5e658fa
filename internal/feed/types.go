package feed

import (
	"fmt"
	"time"
)

// Status は閲覧者ごとの通知の状態を表す。
type Status string

const (
	// StatusNew は未読の新着通知を表す。
	StatusNew Status = "new"
	// StatusWaiting は対応待ちの通知を表す。
	StatusWaiting Status = "waiting"
	// StatusSeen は既読の通知を表す。
	StatusSeen Status = "seen"
)

// ParseStatus は文字列を Status に変換する。未知の値はエラーになる。
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusWaiting, StatusSeen:
		return Status(s), nil
	}
	return "", fmt.Errorf("不明な通知ステータス: %q", s)
}

// Unseen は既読でない状態（new または waiting）かどうかを返す。
func (s Status) Unseen() bool {
	return s != StatusSeen
}

// Subject は通知の件名の種類を表す。既知の件名のみを列挙する閉じた型。
type Subject int

const (
	// SubjectUnknown はクライアントが未対応の件名を表す。
	SubjectUnknown Subject = iota
	// SubjectNewTeamMember は新しいメンバーがチームに追加されたことを表す。
	SubjectNewTeamMember
	// SubjectTimeOffRequested は承認者に届く新しい休暇申請を表す。
	SubjectTimeOffRequested
	// SubjectTimeOffRequestSent は申請者自身への休暇申請送信完了を表す。
	SubjectTimeOffRequestSent
	// SubjectTimeOffApproved は休暇申請が承認されたことを表す。
	SubjectTimeOffApproved
	// SubjectTimeOffRejected は休暇申請が却下されたことを表す。
	SubjectTimeOffRejected
)

// subjectTitles は件名の種類と、ストアに保存される件名文字列の対応表。
var subjectTitles = map[Subject]string{
	SubjectNewTeamMember:      "New team member added",
	SubjectTimeOffRequested:   "New time off request",
	SubjectTimeOffRequestSent: "Your time off request has been sent",
	SubjectTimeOffApproved:    "Your time off request has been approved",
	SubjectTimeOffRejected:    "Your time off request has been rejected",
}

// ParseSubject は件名文字列を Subject に変換する。
// 未知の件名はエラーではなく SubjectUnknown を返す。
// サーバー側で新しい通知種別がクライアント対応より先に追加される場合があるため。
func ParseSubject(title string) Subject {
	for s, t := range subjectTitles {
		if t == title {
			return s
		}
	}
	return SubjectUnknown
}

// String は件名文字列を返す。SubjectUnknown の場合は空文字列。
func (s Subject) String() string {
	return subjectTitles[s]
}

// RecipientEntry は通知の閲覧者1人分の状態レコード。
// 1つの通知内で EmpID は一意である。
type RecipientEntry struct {
	// EmpID は閲覧者の従業員ID。
	EmpID int64 `json:"emp_id"`
	// Status は閲覧者にとっての通知の状態。
	Status Status `json:"status"`
}

// EmployeeSnapshot は通知作成時点の従業員情報。
type EmployeeSnapshot struct {
	// EmpID は従業員ID。
	EmpID int64 `json:"emp_id"`
	// FirstName は名。
	FirstName string `json:"first_name"`
	// LastName は姓。
	LastName string `json:"last_name"`
	// Photo はアバター画像のURL。
	Photo string `json:"photo"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Office は勤務オフィス。
	Office string `json:"office"`
	// RoleTitle は役職名。
	RoleTitle string `json:"role_title"`
	// EffectiveDate は着任日。
	EffectiveDate string `json:"effective_date"`
}

// FullName は「名 姓」形式の氏名を返す。
func (e EmployeeSnapshot) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

// TimeOffHistorySnapshot は通知作成時点の休暇申請履歴。
type TimeOffHistorySnapshot struct {
	// ID は休暇申請履歴のID。
	ID int64 `json:"id"`
	// StartDate は休暇開始日。
	StartDate string `json:"start_date"`
	// EndDate は休暇終了日。
	EndDate string `json:"end_date"`
	// Hours は申請時間数。
	Hours float64 `json:"hours"`
	// Status は申請の状態（pending, approved, rejected など）。
	Status string `json:"status"`
	// Note は申請者のメモ。
	Note string `json:"note"`
}

// AnnualTimeOffSnapshot は通知作成時点の年間休暇残高。
type AnnualTimeOffSnapshot struct {
	// HoursAllowed は年間の付与時間数。
	HoursAllowed float64 `json:"hours_allowed"`
	// CumulativeHoursTaken は取得済みの累計時間数。
	CumulativeHoursTaken float64 `json:"cumulative_hours_taken"`
}

// TimeOffSnapshot は休暇ポリシーの情報。
type TimeOffSnapshot struct {
	// Category は休暇の区分（有給、病欠など）。
	Category string `json:"category"`
}

// Notification はストアから取得した通知の読み取り専用コピー。
// 関連する従業員や休暇のスナップショットは結合済みで渡される。
type Notification struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// Subject は件名の種類。
	Subject Subject `json:"-"`
	// Title はストアに保存された件名文字列。一覧の表示に使う。
	Title string `json:"subject"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Recipients は閲覧者ごとの状態の一覧。
	Recipients []RecipientEntry `json:"recipients"`
	// Employee は対象従業員のスナップショット。
	Employee *EmployeeSnapshot `json:"employee,omitempty"`
	// TimeOffHistory は休暇申請履歴のスナップショット。
	TimeOffHistory *TimeOffHistorySnapshot `json:"time_off_history,omitempty"`
	// AnnualTimeOff は年間休暇残高のスナップショット。
	AnnualTimeOff *AnnualTimeOffSnapshot `json:"employee_annual_time_off,omitempty"`
	// TimeOff は休暇ポリシーのスナップショット。
	TimeOff *TimeOffSnapshot `json:"time_off,omitempty"`
	// CreatedAt は通知の作成日時。
	CreatedAt time.Time `json:"created_at"`
}

// ValidateRecipients は受信者一覧の不変条件（EmpIDの一意性と既知のステータス）を検証する。
func ValidateRecipients(recipients []RecipientEntry) error {
	seen := make(map[int64]struct{}, len(recipients))
	for _, r := range recipients {
		if _, err := ParseStatus(string(r.Status)); err != nil {
			return err
		}
		if _, dup := seen[r.EmpID]; dup {
			return fmt.Errorf("%w: emp_id=%d", ErrDuplicateRecipient, r.EmpID)
		}
		seen[r.EmpID] = struct{}{}
	}
	return nil
}
