package crowdfund

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the terminal outcome of a pledge.
type Status string

const (
	Success  Status = "SUCCESS"
	Rejected Status = "REJECTED"
)

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Success, Rejected:
		return Status(s), nil
	case "success":
		return Success, nil
	case "rejected":
		return Rejected, nil
	default:
		return "", fmt.Errorf("unknown pledge status: %q", s)
	}
}

// Pledge is a single admission attempt, as recorded in the ledger.
//
// Pledges are immutable. A rejected pledge keeps the attempted amount, even
// a non positive one, and the rejection reason.
type Pledge struct {
	ID           int64
	BackerID     int64
	ProjectID    string
	RewardTierID *int64 // nil when no reward tier was requested.
	Amount       decimal.Decimal
	Status       Status
	Reason       string
	CreatedAt    time.Time
}

// HasReward reports whether the pledge selected a reward tier.
func (p Pledge) HasReward() bool { return p.RewardTierID != nil }

// MarshalJSON implements the json.Marshaler interface for Pledge.
func (p Pledge) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("backer", p.BackerID)
	w.Append("project", p.ProjectID)
	w.Optional("rewardTier", p.RewardTierID)
	w.Append("amount", p.Amount)
	w.Append("status", p.Status)
	w.Optional("reason", p.Reason)
	w.Append("createdAt", p.CreatedAt)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Pledge.
func (p *Pledge) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         int64           `json:"id"`
		BackerID   int64           `json:"backer"`
		ProjectID  string          `json:"project"`
		RewardTier json.RawMessage `json:"rewardTier"`
		Amount     decimal.Decimal `json:"amount"`
		Status     string          `json:"status"`
		Reason     string          `json:"reason"`
		CreatedAt  time.Time       `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	status, err := ParseStatus(temp.Status)
	if err != nil {
		return err
	}
	tier, err := decodeOptionalID(temp.RewardTier)
	if err != nil {
		return fmt.Errorf("invalid reward tier reference: %w", err)
	}
	*p = Pledge{
		ID:           temp.ID,
		BackerID:     temp.BackerID,
		ProjectID:    temp.ProjectID,
		RewardTierID: tier,
		Amount:       temp.Amount,
		Status:       status,
		Reason:       temp.Reason,
		CreatedAt:    temp.CreatedAt,
	}
	return nil
}

// decodeOptionalID reads an optional integer reference. Absent, null and ""
// all mean no reference; quoted integers are accepted.
func decodeOptionalID(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return nil, nil
	}
	raw = bytes.Trim(raw, `"`)
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
