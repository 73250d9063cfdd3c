package policy

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =====================================================
// POLICY SNAPSHOT
// =====================================================

// Snapshot is the point-in-time copy of the refund policy settings embedded
// into a Payment when the charge was taken. Historical refunds are always
// calculated from the snapshot, never from live settings.
//
// Percentages are serialized as strings ("50.00") to keep the values exact
// across the JSONB round trip.
type Snapshot map[string]interface{}

// Snapshot keys. Day-tier keys exist once per track with the
// "cancellation_full_payment_" or "cancellation_deposit_" prefix.
const (
	KeyDepositEnabled = "deposit_enabled"

	TrackPrefixFullPayment = "cancellation_full_payment_"
	TrackPrefixDeposit     = "cancellation_deposit_"

	SuffixFullRefundDays          = "full_refund_days"
	SuffixPartialRefundDays       = "partial_refund_days"
	SuffixPartialRefundPercentage = "partial_refund_percentage"
	SuffixMinimalRefundDays       = "minimal_refund_days"
	SuffixMinimalRefundPercentage = "minimal_refund_percentage"

	KeySalesEnableDepositRefund = "sales_enable_deposit_refund"
	KeySalesEnableGracePeriod   = "sales_enable_deposit_refund_grace_period"
	KeySalesGracePeriodHours    = "sales_deposit_refund_grace_period_hours"
)

// IsEmpty reports whether the snapshot carries no policy at all. An empty
// snapshot fails closed: the engine returns a zero entitlement.
func (s Snapshot) IsEmpty() bool {
	return len(s) == 0
}

// Int reads an integer key, tolerating the float64 that encoding/json
// produces for JSONB numbers. Missing keys read as 0.
func (s Snapshot) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return int(d.IntPart())
	default:
		return 0
	}
}

// Percent reads a percentage key. Percentages travel as strings; numeric
// values are accepted for robustness. Missing keys read as 0.
func (s Snapshot) Percent(key string) decimal.Decimal {
	switch v := s[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Bool reads a boolean key. Missing keys read as false.
func (s Snapshot) Bool(key string) bool {
	v, ok := s[key].(bool)
	return ok && v
}

// TrackPrefix returns the snapshot key prefix for the given track.
func TrackPrefix(depositTrack bool) string {
	if depositTrack {
		return TrackPrefixDeposit
	}
	return TrackPrefixFullPayment
}

// TrackLabel returns the customer-facing track name used in policy strings.
func TrackLabel(depositTrack bool) string {
	if depositTrack {
		return "Deposit Payment Policy"
	}
	return "Full Payment Policy"
}

// FromJSON parses a snapshot out of a raw JSONB column value. A NULL or
// empty column yields an empty snapshot.
func FromJSON(raw []byte) (Snapshot, error) {
	if len(raw) == 0 {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse policy snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}
