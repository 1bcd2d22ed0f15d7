package paddle

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/accesskit/pkg/subscription"
)

// Paddle notification types handled by ParseEvent.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionTrialing  = "subscription.trialing"
	EventSubscriptionPaused    = "subscription.paused"
	EventSubscriptionPastDue   = "subscription.past_due"
	EventSubscriptionResumed   = "subscription.resumed"
	EventSubscriptionCanceled  = "subscription.canceled"
)

const customDataUserID = "user_id"

type notification struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
}

// ParseEvent decodes a Paddle notification into a subscription.Event.
// Types other than subscription lifecycle events yield subscription.UnknownEvent.
func ParseEvent(payload []byte) (subscription.Event, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("failed to decode paddle notification: %w", err)
	}
	if n.EventType == "" {
		return nil, ErrMissingEventType
	}

	switch n.EventType {
	case EventSubscriptionCreated:
		data, err := subscriptionData(n.Data)
		if err != nil {
			return nil, err
		}
		return subscription.SubscriptionCreated{Data: data}, nil
	case EventSubscriptionUpdated,
		EventSubscriptionActivated,
		EventSubscriptionTrialing,
		EventSubscriptionPaused,
		EventSubscriptionPastDue,
		EventSubscriptionResumed:
		data, err := subscriptionData(n.Data)
		if err != nil {
			return nil, err
		}
		return subscription.SubscriptionUpdated{Type: n.EventType, Data: data}, nil
	case EventSubscriptionCanceled:
		data, err := subscriptionData(n.Data)
		if err != nil {
			return nil, err
		}
		return subscription.SubscriptionCanceled{Data: data}, nil
	default:
		return subscription.UnknownEvent{Type: n.EventType}, nil
	}
}

func subscriptionData(raw map[string]any) (subscription.SubscriptionData, error) {
	var data subscription.SubscriptionData
	if raw == nil {
		return data, errors.New("notification has no data")
	}

	data.ProviderSubscriptionID = stringAt(raw, "id")
	data.ProviderCustomerID = stringAt(raw, "customer_id")
	if st := subscription.Status(stringAt(raw, "status")); st.Valid() {
		data.Status = st
	}
	if custom, ok := raw["custom_data"].(map[string]any); ok {
		data.UserID = stringAt(custom, customDataUserID)
	}

	if items, ok := raw["items"].([]any); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			if price, ok := item["price"].(map[string]any); ok {
				data.PriceID = stringAt(price, "id")
			}
			if data.PriceID == "" {
				data.PriceID = stringAt(item, "price_id")
			}
			if trial, ok := item["trial_dates"].(map[string]any); ok {
				t, err := timeAt(trial, "ends_at")
				if err != nil {
					return data, err
				}
				data.TrialEndDate = t
			}
		}
	}

	if period, ok := raw["current_billing_period"].(map[string]any); ok {
		start, err := timeAt(period, "starts_at")
		if err != nil {
			return data, err
		}
		end, err := timeAt(period, "ends_at")
		if err != nil {
			return data, err
		}
		data.CurrentPeriodStart = start
		data.CurrentPeriodEnd = end
	}

	// A present but null scheduled_change means nothing is scheduled.
	if change, present := raw["scheduled_change"]; present {
		cancel := false
		if m, ok := change.(map[string]any); ok {
			cancel = stringAt(m, "action") == "cancel"
		}
		data.CancelAtPeriodEnd = &cancel
	}

	return data, nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func timeAt(m map[string]any, key string) (*time.Time, error) {
	s := stringAt(m, key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &t, nil
}
