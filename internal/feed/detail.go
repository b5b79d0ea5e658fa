package feed

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrIncompleteNotification は既知の件名に必要なスナップショットが欠けていることを表す。
var ErrIncompleteNotification = errors.New("通知に必要なスナップショットがありません")

// DisplayDateLayout は詳細ポップアップに表示する日付の書式。
const DisplayDateLayout = "Jan 2, 2006"

// inputDateLayouts はストアから渡される日付文字列として受け付ける書式。
var inputDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
}

// DetailKind は詳細ポップアップの種類を表す。
type DetailKind string

const (
	// DetailKindNone は詳細表示がないことを表す。
	DetailKindNone DetailKind = "none"
	// DetailKindNewTeamMember は新メンバー紹介のポップアップ。
	DetailKindNewTeamMember DetailKind = "new-team-member"
	// DetailKindTimeOffApproval は承認者向けの休暇申請ポップアップ。
	DetailKindTimeOffApproval DetailKind = "time-off-approval"
	// DetailKindTimeOffRequestSent は申請者向けの送信完了ポップアップ。
	DetailKindTimeOffRequestSent DetailKind = "time-off-request-sent"
	// DetailKindTimeOffDecision は申請者向けの承認/却下結果ポップアップ。
	DetailKindTimeOffDecision DetailKind = "time-off-decision"
)

// Detail は件名ごとの詳細ポップアップ用ペイロード。
// このパッケージで定義された型のみが実装する。
type Detail interface {
	// Kind はポップアップの種類を返す。
	Kind() DetailKind
	detail()
}

// NoDetail は詳細表示がないことを明示するペイロード。
type NoDetail struct{}

// NewTeamMemberDetail は「New team member added」のペイロード。
type NewTeamMemberDetail struct {
	// Avatar は新メンバーのアバター画像URL。
	Avatar string `json:"avatar"`
	// Name は新メンバーの氏名。
	Name string `json:"name"`
	// Role は新メンバーの役職。
	Role string `json:"role"`
	// Email は新メンバーのメールアドレス。
	Email string `json:"email"`
	// Office は所属オフィス。
	Office string `json:"office"`
	// EffectiveDate は表示用に整形した着任日。
	EffectiveDate string `json:"effective_date"`
}

// TimeOffApprovalDetail は「New time off request」のペイロード。
// 承認者が申請を承認/却下するために表示する。
type TimeOffApprovalDetail struct {
	// NotificationID は承認/却下の操作対象となる通知ID。
	NotificationID string `json:"notification_id"`
	// TimeOffID は休暇申請ID。
	TimeOffID int64 `json:"time_off_id"`
	// Avatar は申請者のアバター画像URL。
	Avatar string `json:"avatar"`
	// Name は申請者の氏名。
	Name string `json:"name"`
	// Role は申請者の役職。
	Role string `json:"role"`
	// Email は申請者のメールアドレス。
	Email string `json:"email"`
	// Office は申請者の所属オフィス。
	Office string `json:"office"`
	// EffectiveDate は表示用に整形した申請者の着任日。
	EffectiveDate string `json:"effective_date"`
	// TimeOffBalance は通知作成時点の残り休暇時間。
	TimeOffBalance float64 `json:"time_off_balance"`
	// TimeOffRequested は申請期間の表示文字列。
	TimeOffRequested string `json:"time_off_requested"`
	// RequestedDaysTotal は申請時間数を切り上げた日数。
	RequestedDaysTotal int `json:"requested_days_total"`
	// TimeOffCategory は休暇の種別。
	TimeOffCategory string `json:"time_off_category"`
	// Status は申請の状態。
	Status string `json:"status"`
}

// TimeOffRequestSentDetail は「Your time off request has been sent」のペイロード。
type TimeOffRequestSentDetail struct {
	// TimeOffBalance は通知作成時点の残り休暇時間。
	TimeOffBalance float64 `json:"time_off_balance"`
	// TimeOffRequested は申請期間の表示文字列。
	TimeOffRequested string `json:"time_off_requested"`
	// RequestedDaysTotal は申請時間数を切り上げた日数。
	RequestedDaysTotal int `json:"requested_days_total"`
	// TimeOffCategory は休暇の種別。
	TimeOffCategory string `json:"time_off_category"`
	// Notes は申請者のメモ。
	Notes string `json:"notes"`
}

// Decision は休暇申請の判定結果。
type Decision string

const (
	// DecisionApproved は承認。
	DecisionApproved Decision = "approved"
	// DecisionRejected は却下。
	DecisionRejected Decision = "rejected"
)

// TimeOffDecisionDetail は承認/却下通知のペイロード。
type TimeOffDecisionDetail struct {
	// Decision は承認または却下。
	Decision Decision `json:"decision"`
	// TimeOffID は休暇申請ID。
	TimeOffID int64 `json:"time_off_id"`
	// TimeOffBalance は通知作成時点の残り休暇時間。
	TimeOffBalance float64 `json:"time_off_balance"`
	// TimeOffRequested は申請期間の表示文字列。
	TimeOffRequested string `json:"time_off_requested"`
	// RequestedDaysTotal は申請時間数を切り上げた日数。
	RequestedDaysTotal int `json:"requested_days_total"`
	// TimeOffCategory は休暇の種別。
	TimeOffCategory string `json:"time_off_category"`
	// Status は申請の状態。
	Status string `json:"status"`
	// Notes は申請者のメモ。
	Notes string `json:"notes"`
}

// Kind は DetailKindNone を返す。
func (NoDetail) Kind() DetailKind { return DetailKindNone }

// Kind は DetailKindNewTeamMember を返す。
func (NewTeamMemberDetail) Kind() DetailKind { return DetailKindNewTeamMember }

// Kind は DetailKindTimeOffApproval を返す。
func (TimeOffApprovalDetail) Kind() DetailKind { return DetailKindTimeOffApproval }

// Kind は DetailKindTimeOffRequestSent を返す。
func (TimeOffRequestSentDetail) Kind() DetailKind { return DetailKindTimeOffRequestSent }

// Kind は DetailKindTimeOffDecision を返す。
func (TimeOffDecisionDetail) Kind() DetailKind { return DetailKindTimeOffDecision }

func (NoDetail) detail()                 {}
func (NewTeamMemberDetail) detail()      {}
func (TimeOffApprovalDetail) detail()    {}
func (TimeOffRequestSentDetail) detail() {}
func (TimeOffDecisionDetail) detail()    {}

// Available は詳細ポップアップを表示できるかどうかを返す。
func Available(d Detail) bool {
	return d != nil && d.Kind() != DetailKindNone
}

// DetailKindFor は件名に対応するポップアップの種類を返す。
func DetailKindFor(s Subject) DetailKind {
	//exhaustive:enforce
	switch s {
	case SubjectNewTeamMember:
		return DetailKindNewTeamMember
	case SubjectTimeOffRequested:
		return DetailKindTimeOffApproval
	case SubjectTimeOffRequestSent:
		return DetailKindTimeOffRequestSent
	case SubjectTimeOffApproved, SubjectTimeOffRejected:
		return DetailKindTimeOffDecision
	case SubjectUnknown:
		return DetailKindNone
	}
	return DetailKindNone
}

// DetailFor は通知の件名に応じた詳細ポップアップ用ペイロードを返す。
// 未知の件名は NoDetail を返し、エラーにはしない。
// 既知の件名で必要なスナップショットが欠けている場合は ErrIncompleteNotification を返す。
func DetailFor(n Notification) (Detail, error) {
	//exhaustive:enforce
	switch n.Subject {
	case SubjectNewTeamMember:
		if n.Employee == nil {
			return nil, incomplete(n, "employee")
		}
		e := n.Employee
		return NewTeamMemberDetail{
			Avatar:        e.Photo,
			Name:          e.FullName(),
			Role:          e.RoleTitle,
			Email:         e.Email,
			Office:        e.Office,
			EffectiveDate: formatDate(e.EffectiveDate),
		}, nil

	case SubjectTimeOffRequested:
		if err := requireTimeOff(n, true); err != nil {
			return nil, err
		}
		e, h := n.Employee, n.TimeOffHistory
		return TimeOffApprovalDetail{
			NotificationID:     n.ID,
			TimeOffID:          h.ID,
			Avatar:             e.Photo,
			Name:               e.FullName(),
			Role:               e.RoleTitle,
			Email:              e.Email,
			Office:             e.Office,
			EffectiveDate:      formatDate(e.EffectiveDate),
			TimeOffBalance:     timeOffBalance(*n.AnnualTimeOff),
			TimeOffRequested:   formatRange(h.StartDate, h.EndDate),
			RequestedDaysTotal: requestedDays(h.Hours),
			TimeOffCategory:    n.TimeOff.Category,
			Status:             h.Status,
		}, nil

	case SubjectTimeOffRequestSent:
		if err := requireTimeOff(n, false); err != nil {
			return nil, err
		}
		h := n.TimeOffHistory
		return TimeOffRequestSentDetail{
			TimeOffBalance:     timeOffBalance(*n.AnnualTimeOff),
			TimeOffRequested:   formatRange(h.StartDate, h.EndDate),
			RequestedDaysTotal: requestedDays(h.Hours),
			TimeOffCategory:    n.TimeOff.Category,
			Notes:              h.Note,
		}, nil

	case SubjectTimeOffApproved, SubjectTimeOffRejected:
		if err := requireTimeOff(n, false); err != nil {
			return nil, err
		}
		decision := DecisionApproved
		if n.Subject == SubjectTimeOffRejected {
			decision = DecisionRejected
		}
		h := n.TimeOffHistory
		return TimeOffDecisionDetail{
			Decision:           decision,
			TimeOffID:          h.ID,
			TimeOffBalance:     timeOffBalance(*n.AnnualTimeOff),
			TimeOffRequested:   formatRange(h.StartDate, h.EndDate),
			RequestedDaysTotal: requestedDays(h.Hours),
			TimeOffCategory:    n.TimeOff.Category,
			Status:             h.Status,
			Notes:              h.Note,
		}, nil

	case SubjectUnknown:
		return NoDetail{}, nil
	}
	return NoDetail{}, nil
}

// requireTimeOff は休暇関連の件名に必要なスナップショットが揃っているか確認する。
func requireTimeOff(n Notification, needEmployee bool) error {
	switch {
	case needEmployee && n.Employee == nil:
		return incomplete(n, "employee")
	case n.TimeOffHistory == nil:
		return incomplete(n, "time_off_history")
	case n.AnnualTimeOff == nil:
		return incomplete(n, "employee_annual_time_off")
	case n.TimeOff == nil:
		return incomplete(n, "time_off")
	}
	return nil
}

func incomplete(n Notification, field string) error {
	return fmt.Errorf("%w: notification=%s, subject=%q, field=%s", ErrIncompleteNotification, n.ID, n.Title, field)
}

// timeOffBalance は残りの休暇時間数を返す。
func timeOffBalance(a AnnualTimeOffSnapshot) float64 {
	return a.HoursAllowed - a.CumulativeHoursTaken
}

// requestedDays は申請時間数を日数に切り上げる。
func requestedDays(hours float64) int {
	return int(math.Ceil(hours / 24))
}

func formatRange(start, end string) string {
	return fmt.Sprintf("%s - %s", formatDate(start), formatDate(end))
}

// formatDate は日付文字列を表示用に整形する。解釈できない値はそのまま返す。
func formatDate(s string) string {
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return s
}
