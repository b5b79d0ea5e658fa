package feed

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testEmployee はテスト用の従業員スナップショット。
var testEmployee = EmployeeSnapshot{
	EmpID:         7,
	FirstName:     "Hanako",
	LastName:      "Yamada",
	Photo:         "https://example.com/hanako.png",
	Email:         "hanako@example.com",
	Office:        "Tokyo",
	RoleTitle:     "Engineer",
	EffectiveDate: "2024-04-01",
}

// timeOffNotification は休暇関連の通知を生成するヘルパー関数。
func timeOffNotification(subject Subject) Notification {
	e := testEmployee
	return Notification{
		ID:         "notif-1",
		Subject:    subject,
		Title:      subject.String(),
		Recipients: []RecipientEntry{{EmpID: 1, Status: StatusNew}},
		Employee:   &e,
		TimeOffHistory: &TimeOffHistorySnapshot{
			ID:        42,
			StartDate: "2024-01-01",
			EndDate:   "2024-01-03",
			Hours:     48,
			Status:    "pending",
			Note:      "家族旅行",
		},
		AnnualTimeOff: &AnnualTimeOffSnapshot{HoursAllowed: 120, CumulativeHoursTaken: 40},
		TimeOff:       &TimeOffSnapshot{Category: "Vacation"},
	}
}

// TestDetailFor はDetailFor関数の件名ごとのペイロードを検証する。
func TestDetailFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    Notification
		want Detail
	}{
		{
			name: "New team member addedは新メンバーのペイロードを返すこと",
			n: Notification{
				ID:       "notif-1",
				Subject:  SubjectNewTeamMember,
				Title:    "New team member added",
				Employee: &testEmployee,
			},
			want: NewTeamMemberDetail{
				Avatar:        "https://example.com/hanako.png",
				Name:          "Hanako Yamada",
				Role:          "Engineer",
				Email:         "hanako@example.com",
				Office:        "Tokyo",
				EffectiveDate: "Apr 1, 2024",
			},
		},
		{
			name: "New time off requestは承認用のペイロードを返すこと",
			n:    timeOffNotification(SubjectTimeOffRequested),
			want: TimeOffApprovalDetail{
				NotificationID:     "notif-1",
				TimeOffID:          42,
				Avatar:             "https://example.com/hanako.png",
				Name:               "Hanako Yamada",
				Role:               "Engineer",
				Email:              "hanako@example.com",
				Office:             "Tokyo",
				EffectiveDate:      "Apr 1, 2024",
				TimeOffBalance:     80,
				TimeOffRequested:   "Jan 1, 2024 - Jan 3, 2024",
				RequestedDaysTotal: 2,
				TimeOffCategory:    "Vacation",
				Status:             "pending",
			},
		},
		{
			name: "送信完了通知は申請者向けのペイロードを返すこと",
			n:    timeOffNotification(SubjectTimeOffRequestSent),
			want: TimeOffRequestSentDetail{
				TimeOffBalance:     80,
				TimeOffRequested:   "Jan 1, 2024 - Jan 3, 2024",
				RequestedDaysTotal: 2,
				TimeOffCategory:    "Vacation",
				Notes:              "家族旅行",
			},
		},
		{
			name: "承認通知はapprovedの判定結果を返すこと",
			n:    timeOffNotification(SubjectTimeOffApproved),
			want: TimeOffDecisionDetail{
				Decision:           DecisionApproved,
				TimeOffID:          42,
				TimeOffBalance:     80,
				TimeOffRequested:   "Jan 1, 2024 - Jan 3, 2024",
				RequestedDaysTotal: 2,
				TimeOffCategory:    "Vacation",
				Status:             "pending",
				Notes:              "家族旅行",
			},
		},
		{
			name: "却下通知はrejectedの判定結果を返すこと",
			n:    timeOffNotification(SubjectTimeOffRejected),
			want: TimeOffDecisionDetail{
				Decision:           DecisionRejected,
				TimeOffID:          42,
				TimeOffBalance:     80,
				TimeOffRequested:   "Jan 1, 2024 - Jan 3, 2024",
				RequestedDaysTotal: 2,
				TimeOffCategory:    "Vacation",
				Status:             "pending",
				Notes:              "家族旅行",
			},
		},
		{
			name: "未知の件名はNoDetailを返すこと",
			n:    Notification{ID: "notif-1", Subject: ParseSubject("Foo"), Title: "Foo"},
			want: NoDetail{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DetailFor(tt.n)
			if err != nil {
				t.Fatalf("DetailFor()でエラーが発生: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetailFor() mismatch (-want +got):\n%s", diff)
			}
			if got.Kind() != DetailKindFor(tt.n.Subject) {
				t.Errorf("Kind() = %q, want %q", got.Kind(), DetailKindFor(tt.n.Subject))
			}
		})
	}
}

// TestDetailForTimeOffCalculation は残高と申請日数の計算を検証する。
func TestDetailForTimeOffCalculation(t *testing.T) {
	t.Parallel()

	got, err := DetailFor(timeOffNotification(SubjectTimeOffRequested))
	if err != nil {
		t.Fatalf("DetailFor()でエラーが発生: %v", err)
	}
	d, ok := got.(TimeOffApprovalDetail)
	if !ok {
		t.Fatalf("DetailFor()の型 = %T, want TimeOffApprovalDetail", got)
	}
	if d.TimeOffBalance != 80 {
		t.Errorf("TimeOffBalance = %v, want 80", d.TimeOffBalance)
	}
	if d.RequestedDaysTotal != 2 {
		t.Errorf("RequestedDaysTotal = %d, want 2", d.RequestedDaysTotal)
	}

	t.Run("端数の時間数は切り上げられること", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			hours float64
			want  int
		}{
			{hours: 0, want: 0},
			{hours: 8, want: 1},
			{hours: 24, want: 1},
			{hours: 25, want: 2},
			{hours: 72, want: 3},
		}
		for _, tt := range tests {
			if got := requestedDays(tt.hours); got != tt.want {
				t.Errorf("requestedDays(%v) = %d, want %d", tt.hours, got, tt.want)
			}
		}
	})
}

// TestDetailForIsPure は同じ入力に対して同じ結果を返し、入力を変更しないことを検証する。
func TestDetailForIsPure(t *testing.T) {
	t.Parallel()

	n := timeOffNotification(SubjectTimeOffRequested)
	before := *n.TimeOffHistory

	first, err := DetailFor(n)
	if err != nil {
		t.Fatalf("DetailFor()でエラーが発生: %v", err)
	}
	second, err := DetailFor(n)
	if err != nil {
		t.Fatalf("DetailFor()でエラーが発生: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("2回の呼び出し結果が異なる (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, *n.TimeOffHistory); diff != "" {
		t.Errorf("入力が変更された (-before +after):\n%s", diff)
	}
}

// TestDetailForUnknownSubject は未知の件名でパニックせずNoDetailを返すことを検証する。
func TestDetailForUnknownSubject(t *testing.T) {
	t.Parallel()

	n := Notification{ID: "notif-1", Subject: ParseSubject("Foo"), Title: "Foo"}
	got, err := DetailFor(n)
	if err != nil {
		t.Fatalf("DetailFor()でエラーが発生: %v", err)
	}
	if Available(got) {
		t.Error("未知の件名で詳細表示が利用可能になっている")
	}
	if got.Kind() != DetailKindNone {
		t.Errorf("Kind() = %q, want %q", got.Kind(), DetailKindNone)
	}
}

// TestDetailForIncomplete はスナップショット欠落時のエラーを検証する。
func TestDetailForIncomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Notification)
	}{
		{name: "新メンバー通知で従業員がない場合", mutate: func(n *Notification) {
			n.Subject = SubjectNewTeamMember
			n.Employee = nil
		}},
		{name: "休暇申請で従業員がない場合", mutate: func(n *Notification) { n.Employee = nil }},
		{name: "休暇申請で履歴がない場合", mutate: func(n *Notification) { n.TimeOffHistory = nil }},
		{name: "休暇申請で残高がない場合", mutate: func(n *Notification) { n.AnnualTimeOff = nil }},
		{name: "休暇申請でポリシーがない場合", mutate: func(n *Notification) { n.TimeOff = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := timeOffNotification(SubjectTimeOffRequested)
			tt.mutate(&n)
			_, err := DetailFor(n)
			if !errors.Is(err, ErrIncompleteNotification) {
				t.Errorf("err = %v, want ErrIncompleteNotification", err)
			}
		})
	}
}

// TestParseSubject は件名文字列の変換を検証する。
func TestParseSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  Subject
	}{
		{title: "New team member added", want: SubjectNewTeamMember},
		{title: "New time off request", want: SubjectTimeOffRequested},
		{title: "Your time off request has been sent", want: SubjectTimeOffRequestSent},
		{title: "Your time off request has been approved", want: SubjectTimeOffApproved},
		{title: "Your time off request has been rejected", want: SubjectTimeOffRejected},
		{title: "Foo", want: SubjectUnknown},
		{title: "", want: SubjectUnknown},
	}
	for _, tt := range tests {
		if got := ParseSubject(tt.title); got != tt.want {
			t.Errorf("ParseSubject(%q) = %v, want %v", tt.title, got, tt.want)
		}
		if tt.want != SubjectUnknown && tt.want.String() != tt.title {
			t.Errorf("String() = %q, want %q", tt.want.String(), tt.title)
		}
	}
}

// TestFormatDate は日付の表示書式を検証する。
func TestFormatDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "2024-01-03", want: "Jan 3, 2024"},
		{in: "2024-12-25T09:00:00Z", want: "Dec 25, 2024"},
		{in: "2024-02-29 10:00:00", want: "Feb 29, 2024"},
		{in: "来週", want: "来週"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := formatDate(tt.in); got != tt.want {
			t.Errorf("formatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
