package service

import (
	"strings"
	"testing"
	"time"

	"github.com/confecta/confecta/internal/notify/entity"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEvaluateDeadlineNear(t *testing.T) {
	orders := []OrderSnapshot{
		{ID: "o1", Code: "OP-202603-0001", ExpectedDate: datePtr(2026, 3, 17)}, // within window
		{ID: "o2", Code: "OP-202603-0002", ExpectedDate: datePtr(2026, 3, 20)}, // boundary, day 5
		{ID: "o3", Code: "OP-202603-0003", ExpectedDate: datePtr(2026, 3, 21)}, // outside
		{ID: "o4", Code: "OP-202603-0004", ExpectedDate: datePtr(2026, 3, 10)}, // already past
		{ID: "o5", Code: "OP-202603-0005", ExpectedDate: nil},                  // no date
	}

	got := EvaluateDeadlineNear(orders, nil, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %+v", len(got), got)
	}
	if got[0].Metadata["order_code"] != "OP-202603-0001" || got[1].Metadata["order_code"] != "OP-202603-0002" {
		t.Errorf("unexpected order codes: %+v", got)
	}
	for _, n := range got {
		if n.Type != entity.TypeDeadlineNear {
			t.Errorf("wrong type %q", n.Type)
		}
	}
}

func TestEvaluateDeadlineNearDedup(t *testing.T) {
	orders := []OrderSnapshot{
		{ID: "o1", Code: "OP-202603-0001", ExpectedDate: datePtr(2026, 3, 17)},
	}
	unread := []entity.Notification{
		{Type: entity.TypeDeadlineNear, Metadata: entity.Metadata{"order_code": "OP-202603-0001"}},
	}
	if got := EvaluateDeadlineNear(orders, unread, testNow); len(got) != 0 {
		t.Fatalf("unread notification should suppress a duplicate, got %+v", got)
	}

	// A read notification does not suppress: unread list simply won't
	// contain it.
	if got := EvaluateDeadlineNear(orders, nil, testNow); len(got) != 1 {
		t.Fatalf("expected re-notification once previous was read, got %d", len(got))
	}
}

func TestEvaluatePaymentDue(t *testing.T) {
	pendencies := []PendencySnapshot{
		{ID: "p1", OrderCode: "OP-1", FactionName: "Facção A", Amount: 150, DueDate: time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)}, // due soon
		{ID: "p2", OrderCode: "OP-2", FactionName: "Facção B", Amount: 200, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}, // overdue
		{ID: "p3", OrderCode: "OP-3", FactionName: "Facção C", Amount: 300, DueDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)}, // far out
	}

	got := EvaluatePaymentDue(pendencies, nil, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %+v", len(got), got)
	}
	if strings.Contains(got[0].Title, overdueMarker) {
		t.Errorf("due-soon title should not carry the overdue marker: %q", got[0].Title)
	}
	if !strings.Contains(got[1].Title, overdueMarker) {
		t.Errorf("overdue title should carry the overdue marker: %q", got[1].Title)
	}
}

func TestEvaluatePaymentDueOverdueEscalation(t *testing.T) {
	// An unread due-soon notification must not suppress the overdue one
	// once the pendency crosses its due date.
	pendencies := []PendencySnapshot{
		{ID: "p1", OrderCode: "OP-1", FactionName: "Facção A", Amount: 150, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	unread := []entity.Notification{
		{Type: entity.TypePaymentDue, Title: "Pagamento a vencer: Facção A", Metadata: entity.Metadata{"pendency_id": "p1"}},
	}

	got := EvaluatePaymentDue(pendencies, unread, testNow)
	if len(got) != 1 {
		t.Fatalf("expected the overdue escalation, got %d", len(got))
	}
	if !strings.Contains(got[0].Title, overdueMarker) {
		t.Errorf("escalation should be the overdue variant: %q", got[0].Title)
	}

	// But an unread overdue notification suppresses another overdue one.
	unread = append(unread, got[0])
	if again := EvaluatePaymentDue(pendencies, unread, testNow); len(again) != 0 {
		t.Fatalf("unread overdue notification should suppress a duplicate, got %+v", again)
	}
}

func TestEvaluateStageStalled(t *testing.T) {
	old := testNow.AddDate(0, 0, -4)
	recent := testNow.AddDate(0, 0, -1)
	stalled := []StalledStageSnapshot{
		{OrderID: "o1", OrderCode: "OP-1", StageID: "s1", StageName: "Costura", StartedAt: &old},
		{OrderID: "o2", OrderCode: "OP-2", StageID: "s2", StageName: "Corte", StartedAt: &recent},
		{OrderID: "o3", OrderCode: "OP-3", StageID: "s3", StageName: "Acabamento", StartedAt: nil},
	}

	got := EvaluateStageStalled(stalled, nil, testNow)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d: %+v", len(got), got)
	}
	if got[0].Metadata["order_code"] != "OP-1" || got[0].Metadata["stage_name"] != "Costura" {
		t.Errorf("unexpected metadata: %+v", got[0].Metadata)
	}

	// Same (order, stage) unread: suppressed. Same stage name on another
	// order: not suppressed.
	unread := got
	more := []StalledStageSnapshot{
		{OrderID: "o1", OrderCode: "OP-1", StageID: "s1", StageName: "Costura", StartedAt: &old},
		{OrderID: "o9", OrderCode: "OP-9", StageID: "s1", StageName: "Costura", StartedAt: &old},
	}
	got = EvaluateStageStalled(more, unread, testNow)
	if len(got) != 1 || got[0].Metadata["order_code"] != "OP-9" {
		t.Fatalf("expected only OP-9 notification, got %+v", got)
	}
}

func TestBuildOrderCompleted(t *testing.T) {
	n := BuildOrderCompleted("o1", "OP-202603-0001", nil)
	if n == nil {
		t.Fatal("expected a notification")
	}
	if n.Type != entity.TypeOrderCompleted || n.Metadata["order_code"] != "OP-202603-0001" {
		t.Errorf("unexpected notification: %+v", n)
	}

	unread := []entity.Notification{*n}
	if dup := BuildOrderCompleted("o1", "OP-202603-0001", unread); dup != nil {
		t.Errorf("unread completion notification should suppress a duplicate, got %+v", dup)
	}
}
