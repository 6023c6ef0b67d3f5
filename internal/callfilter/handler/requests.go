package handler

import (
	"strings"
	"time"

	"callguard/internal/callfilter/models"
	id "callguard/pkg/domain"
	dErrors "callguard/pkg/domain-errors"
)

const (
	maxExtras        = 32
	maxExtraValueLen = 1024
	maxDisplayName   = 256
)

type FilterCallRequest struct {
	CallID       string            `json:"call_id"`
	Handle       string            `json:"handle"`
	Presentation string            `json:"presentation"`
	ProfileID    string            `json:"profile_id"`
	Extras       map[string]string `json:"extras,omitempty"`

	call *models.Call
}

// Validate parses the request into a call. A missing call_id gets a fresh
// one.
func (r *FilterCallRequest) Validate() error {
	callID := id.NewCallID()
	if strings.TrimSpace(r.CallID) != "" {
		parsed, err := id.ParseCallID(r.CallID)
		if err != nil {
			return err
		}
		callID = parsed
	}
	profileID, err := id.ParseProfileID(r.ProfileID)
	if err != nil {
		return err
	}
	presentation, err := models.ParsePresentation(r.Presentation)
	if err != nil {
		return err
	}
	handle, err := id.ParseHandle(r.Handle)
	if err != nil {
		return err
	}
	if presentation == models.PresentationAllowed && handle.Normalize().IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "handle is required when presentation is allowed")
	}
	if len(r.Extras) > maxExtras {
		return dErrors.New(dErrors.CodeValidation, "too many extras")
	}
	for k, v := range r.Extras {
		if k == "" || len(v) > maxExtraValueLen {
			return dErrors.New(dErrors.CodeValidation, "invalid extras entry")
		}
	}

	r.call = &models.Call{
		ID:           callID,
		Handle:       handle,
		Presentation: presentation,
		ProfileID:    profileID,
		Extras:       r.Extras,
		ReceivedAt:   time.Now(),
	}
	return nil
}

type BlockPolicyRequest struct {
	BlockUnknown       bool `json:"block_unknown"`
	BlockRestricted    bool `json:"block_restricted"`
	BlockPayphone      bool `json:"block_payphone"`
	BlockNotInContacts bool `json:"block_not_in_contacts"`
}

func (r *BlockPolicyRequest) Validate() error { return nil }

func (r *BlockPolicyRequest) policy() models.BlockPolicy {
	return models.BlockPolicy{
		BlockUnknown:       r.BlockUnknown,
		BlockRestricted:    r.BlockRestricted,
		BlockPayphone:      r.BlockPayphone,
		BlockNotInContacts: r.BlockNotInContacts,
	}
}

type ContactRequest struct {
	DisplayName     string `json:"display_name"`
	SendToVoicemail bool   `json:"send_to_voicemail"`
}

func (r *ContactRequest) Validate() error {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if len(r.DisplayName) > maxDisplayName {
		return dErrors.New(dErrors.CodeValidation, "display_name is too long")
	}
	return nil
}
