package domain

// SettingView is what the admin page needs to boot the client bundle
type SettingView struct {
	Value string // stored value or the configured default
	Token string // request token minted for the current caller
}

// SaveRequest holds the raw fields of a display text save call.
// DisplayText is nil when the field was not sent at all.
type SaveRequest struct {
	Nonce       string
	DisplayText *string
}

// AckStatus tells how a successful save ended
type AckStatus string

// ack statuses
const (
	AckSaved      AckStatus = "saved"
	AckAlreadySet AckStatus = "already_set"
)

// Ack is a successful save acknowledgment
type Ack struct {
	Status  AckStatus
	Message string
}
