package handler

import (
	"callguard/internal/callfilter/models"
	"callguard/internal/callfilter/service/pipeline"
)

type FilterCallResponse struct {
	CallID                 string   `json:"call_id"`
	AllowCall              bool     `json:"allow_call"`
	Reject                 bool     `json:"reject"`
	Silence                bool     `json:"silence"`
	AddToCallLog           bool     `json:"add_to_call_log"`
	ShowNotification       bool     `json:"show_notification"`
	BlockReason            string   `json:"block_reason"`
	AttributingAppName     string   `json:"attributing_app_name,omitempty"`
	AttributingComponentID string   `json:"attributing_component_id,omitempty"`
	DurationMs             int64    `json:"duration_ms"`
	TimedOut               bool     `json:"timed_out,omitempty"`
	Pending                []string `json:"pending,omitempty"`
}

func toFilterCallResponse(call *models.Call, d pipeline.Decision) FilterCallResponse {
	r := d.Result
	return FilterCallResponse{
		CallID:                 call.ID.String(),
		AllowCall:              r.AllowCall,
		Reject:                 r.Reject,
		Silence:                r.Silence,
		AddToCallLog:           r.AddToCallLog,
		ShowNotification:       r.ShowNotification,
		BlockReason:            r.BlockReason.String(),
		AttributingAppName:     r.AttributingAppName,
		AttributingComponentID: r.AttributingComponentID,
		DurationMs:             d.Duration.Milliseconds(),
		TimedOut:               d.TimedOut(),
		Pending:                d.Pending,
	}
}

type BlockedNumbersResponse struct {
	ProfileID string   `json:"profile_id"`
	Numbers   []string `json:"numbers"`
}

type BlockPolicyResponse struct {
	ProfileID          string `json:"profile_id"`
	BlockUnknown       bool   `json:"block_unknown"`
	BlockRestricted    bool   `json:"block_restricted"`
	BlockPayphone      bool   `json:"block_payphone"`
	BlockNotInContacts bool   `json:"block_not_in_contacts"`
}

func toBlockPolicyResponse(profileID string, p models.BlockPolicy) BlockPolicyResponse {
	return BlockPolicyResponse{
		ProfileID:          profileID,
		BlockUnknown:       p.BlockUnknown,
		BlockRestricted:    p.BlockRestricted,
		BlockPayphone:      p.BlockPayphone,
		BlockNotInContacts: p.BlockNotInContacts,
	}
}
