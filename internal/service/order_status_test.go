package service

import (
	"errors"
	"testing"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

func TestTransitionOrderDeliveredEdge(t *testing.T) {
	now := time.Now()
	order := &models.Order{ID: 3, Status: constants.OrderStatusShipped}

	tr, err := TransitionOrder(order, "delivered", now)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if tr.From != constants.OrderStatusShipped || tr.To != constants.OrderStatusDelivered {
		t.Fatalf("unexpected transition: %+v", tr)
	}
	if len(tr.Intents) != 1 {
		t.Fatalf("want 1 intent got %d", len(tr.Intents))
	}
	if intent, ok := tr.Intents[0].(AwardPointsIntent); !ok || intent.OrderID != 3 {
		t.Fatalf("unexpected intent: %#v", tr.Intents[0])
	}
	if _, ok := tr.Updates["delivered_at"]; !ok {
		t.Fatalf("delivered_at should be stamped")
	}
	if order.Status != constants.OrderStatusShipped || order.DeliveredAt != nil {
		t.Fatalf("transition must not touch the input order: %+v", order)
	}

	tr.Apply(order)
	if order.Status != constants.OrderStatusDelivered || order.DeliveredAt == nil || !order.DeliveredAt.Equal(now) {
		t.Fatalf("apply should stamp status and delivered_at: %+v", order)
	}

	again, err := TransitionOrder(order, constants.OrderStatusDelivered, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	if len(again.Intents) != 0 || len(again.Updates) != 0 || again.Changed() {
		t.Fatalf("re-save must be side-effect free: %+v", again)
	}
}

func TestTransitionOrderOtherMoves(t *testing.T) {
	now := time.Now()
	for _, to := range []string{
		constants.OrderStatusProcessing,
		constants.OrderStatusCancelled,
		constants.OrderStatusReturned,
		constants.OrderStatusRefunded,
		constants.OrderStatusPending,
	} {
		order := &models.Order{Status: constants.OrderStatusShipped}
		tr, err := TransitionOrder(order, to, now)
		if err != nil {
			t.Fatalf("%s: transition failed: %v", to, err)
		}
		if len(tr.Intents) != 0 || tr.To != to || !tr.Changed() {
			t.Fatalf("%s: unexpected transition %+v", to, tr)
		}
		if order.Status != constants.OrderStatusShipped {
			t.Fatalf("%s: input order mutated to %s", to, order.Status)
		}
	}

	if _, err := TransitionOrder(&models.Order{}, "teleported", now); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := TransitionOrder(nil, constants.OrderStatusShipped, now); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound got %v", err)
	}
}
