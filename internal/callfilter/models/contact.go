package models

import id "callguard/pkg/domain"

// Contact is an address-book entry for a profile.
type Contact struct {
	ProfileID   id.ProfileID
	Handle      id.Handle
	DisplayName string
	// SendToVoicemail routes calls from this contact straight to voicemail.
	SendToVoicemail bool
}
