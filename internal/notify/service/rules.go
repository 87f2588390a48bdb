package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/confecta/confecta/internal/notify/entity"
	"github.com/confecta/confecta/internal/shared/clock"
)

// Rule thresholds, in days.
const (
	deadlineNearDays = 5
	paymentDueDays   = 7
	stageStalledDays = 3
)

// overdueMarker flags an overdue payment notification in its title; a
// pendency that crosses its due date gets a fresh notification even when
// the due-soon one is still unread.
const overdueMarker = "Vencido"

// Snapshots are plain values loaded ahead of evaluation, so every rule is
// a pure function of (snapshots, unread, now) and de-dup is testable
// without a database.

type OrderSnapshot struct {
	ID           string
	Code         string
	ExpectedDate *time.Time
}

type PendencySnapshot struct {
	ID          string
	OrderCode   string
	StageName   string
	FactionName string
	Amount      float64
	DueDate     time.Time
}

type StalledStageSnapshot struct {
	OrderID   string
	OrderCode string
	StageID   string
	StageName string
	StartedAt *time.Time
}

// hasUnread reports whether an unread notification of the given type
// carries the metadata pair.
func hasUnread(unread []entity.Notification, typ, metaKey, metaValue string) bool {
	for i := range unread {
		if unread[i].Type == typ && unread[i].Metadata[metaKey] == metaValue {
			return true
		}
	}
	return false
}

// EvaluateDeadlineNear flags in-production orders whose expected date
// falls within the next five days, today included. One unread
// notification per order code.
func EvaluateDeadlineNear(orders []OrderSnapshot, unread []entity.Notification, now time.Time) []entity.Notification {
	today := clock.Today(now)
	horizon := today.AddDate(0, 0, deadlineNearDays)

	var out []entity.Notification
	for _, o := range orders {
		if o.ExpectedDate == nil {
			continue
		}
		due := clock.Today(*o.ExpectedDate)
		if due.Before(today) || due.After(horizon) {
			continue
		}
		if hasUnread(unread, entity.TypeDeadlineNear, "order_code", o.Code) {
			continue
		}
		days := int(due.Sub(today).Hours() / 24)
		out = append(out, entity.Notification{
			Type:    entity.TypeDeadlineNear,
			Title:   fmt.Sprintf("Prazo próximo: %s", o.Code),
			Message: fmt.Sprintf("A ordem %s tem entrega prevista em %d dia(s).", o.Code, days),
			Link:    fmt.Sprintf("/orders/%s", o.ID),
			Metadata: entity.Metadata{
				"order_id":   o.ID,
				"order_code": o.Code,
			},
		})
	}
	return out
}

// EvaluatePaymentDue flags pendencies due within seven days or already
// past due. The overdue variant is keyed separately so a due-soon
// notification does not suppress the overdue one.
func EvaluatePaymentDue(pendencies []PendencySnapshot, unread []entity.Notification, now time.Time) []entity.Notification {
	today := clock.Today(now)
	horizon := today.AddDate(0, 0, paymentDueDays)

	var out []entity.Notification
	for _, p := range pendencies {
		due := clock.Today(p.DueDate)
		if due.After(horizon) {
			continue
		}
		overdue := due.Before(today)
		if hasUnreadPayment(unread, p.ID, overdue) {
			continue
		}

		n := entity.Notification{
			Type: entity.TypePaymentDue,
			Link: "/finance/pendencies",
			Metadata: entity.Metadata{
				"pendency_id": p.ID,
				"order_code":  p.OrderCode,
			},
		}
		if overdue {
			n.Title = fmt.Sprintf("Pagamento %s: %s", overdueMarker, p.FactionName)
			n.Message = fmt.Sprintf("O pagamento de R$ %.2f à facção %s (%s / %s) venceu em %s.",
				p.Amount, p.FactionName, p.OrderCode, p.StageName, due.Format("02/01/2006"))
		} else {
			n.Title = fmt.Sprintf("Pagamento a vencer: %s", p.FactionName)
			n.Message = fmt.Sprintf("O pagamento de R$ %.2f à facção %s (%s / %s) vence em %s.",
				p.Amount, p.FactionName, p.OrderCode, p.StageName, due.Format("02/01/2006"))
		}
		out = append(out, n)
	}
	return out
}

func hasUnreadPayment(unread []entity.Notification, pendencyID string, overdue bool) bool {
	for i := range unread {
		n := &unread[i]
		if n.Type != entity.TypePaymentDue || n.Metadata["pendency_id"] != pendencyID {
			continue
		}
		if strings.Contains(n.Title, overdueMarker) == overdue {
			return true
		}
	}
	return false
}

// EvaluateStageStalled flags paused stages on in-production orders whose
// work started more than three days ago and then stopped. Keyed on
// (order code, stage name).
func EvaluateStageStalled(stalled []StalledStageSnapshot, unread []entity.Notification, now time.Time) []entity.Notification {
	cutoff := now.AddDate(0, 0, -stageStalledDays)

	var out []entity.Notification
	for _, s := range stalled {
		if s.StartedAt == nil || s.StartedAt.After(cutoff) {
			continue
		}
		key := s.OrderCode + "|" + s.StageName
		if hasUnread(unread, entity.TypeStageStalled, "stall_key", key) {
			continue
		}
		out = append(out, entity.Notification{
			Type:    entity.TypeStageStalled,
			Title:   fmt.Sprintf("Etapa parada: %s", s.StageName),
			Message: fmt.Sprintf("A etapa %s da ordem %s está pausada desde %s.", s.StageName, s.OrderCode, s.StartedAt.Format("02/01/2006")),
			Link:    fmt.Sprintf("/orders/%s", s.OrderID),
			Metadata: entity.Metadata{
				"order_id":   s.OrderID,
				"order_code": s.OrderCode,
				"stage_name": s.StageName,
				"stall_key":  key,
			},
		})
	}
	return out
}

// BuildOrderCompleted is the status-transition hook's notification; nil
// when an unread one for the order code already exists.
func BuildOrderCompleted(orderID, orderCode string, unread []entity.Notification) *entity.Notification {
	if hasUnread(unread, entity.TypeOrderCompleted, "order_code", orderCode) {
		return nil
	}
	return &entity.Notification{
		Type:    entity.TypeOrderCompleted,
		Title:   fmt.Sprintf("Ordem concluída: %s", orderCode),
		Message: fmt.Sprintf("A ordem %s concluiu todas as etapas de produção.", orderCode),
		Link:    fmt.Sprintf("/orders/%s", orderID),
		Metadata: entity.Metadata{
			"order_id":   orderID,
			"order_code": orderCode,
		},
	}
}
