package webhook

import (
	"fmt"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
)

type wireRequest struct {
	CallID          string            `json:"call_id"`
	Handle          string            `json:"handle,omitempty"`
	Presentation    string            `json:"presentation"`
	IsSystemHandler bool              `json:"is_system_handler,omitempty"`
	Extras          map[string]string `json:"extras,omitempty"`
}

func toWireRequest(req models.ScreeningRequest) wireRequest {
	return wireRequest{
		CallID:          req.CallID.String(),
		Handle:          req.Handle.String(),
		Presentation:    string(req.Presentation),
		IsSystemHandler: req.IsSystemHandler,
		Extras:          req.Extras,
	}
}

// wireVerdict is the screener's response body.
type wireVerdict struct {
	CallID           string `json:"call_id"`
	Verdict          string `json:"verdict"`
	Reject           bool   `json:"reject"`
	AddToCallLog     bool   `json:"add_to_call_log"`
	ShowNotification bool   `json:"show_notification"`
	Component        string `json:"component"`
}

func (w wireVerdict) toVerdict() (id.CallID, models.Verdict, error) {
	callID, err := id.ParseCallID(w.CallID)
	if err != nil {
		return id.CallID{}, nil, fmt.Errorf("verdict call id: %w", err)
	}
	switch w.Verdict {
	case "allow":
		return callID, models.Allow{}, nil
	case "silence":
		return callID, models.Silence{}, nil
	case "disallow":
		return callID, models.Disallow{
			Reject:           w.Reject,
			AddToCallLog:     w.AddToCallLog,
			ShowNotification: w.ShowNotification,
			Component:        w.Component,
		}, nil
	default:
		return id.CallID{}, nil, fmt.Errorf("unknown verdict %q", w.Verdict)
	}
}
