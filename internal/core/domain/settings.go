package domain

import "fmt"

const unknownDescription = "Unknown"

// DispatchMode selects how messages are handed to the messaging subsystem.
type DispatchMode string

// Available dispatch modes.
const (
	// DispatchModeRecord only marks the message as sent in the record store.
	DispatchModeRecord DispatchMode = "record"

	// DispatchModeSMTP delivers the message over SMTP, then marks it as sent.
	DispatchModeSMTP DispatchMode = "smtp"
)

// IsValid returns true if the dispatch mode is recognised.
func (m DispatchMode) IsValid() bool {
	switch m {
	case DispatchModeRecord, DispatchModeSMTP:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m DispatchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m DispatchMode) Description() string {
	switch m {
	case DispatchModeRecord:
		return "Record only (status update, no delivery)"
	case DispatchModeSMTP:
		return "SMTP (deliver, then record)"
	default:
		return unknownDescription
	}
}

// TLSPolicy controls STARTTLS negotiation with the SMTP server.
type TLSPolicy string

// Available TLS policies.
const (
	TLSOpportunistic TLSPolicy = "opportunistic"
	TLSMandatory     TLSPolicy = "mandatory"
	TLSNone          TLSPolicy = "none"
)

// IsValid returns true if the TLS policy is recognised.
func (p TLSPolicy) IsValid() bool {
	switch p {
	case TLSOpportunistic, TLSMandatory, TLSNone:
		return true
	default:
		return false
	}
}

// RelaySettings holds relay behaviour configuration.
type RelaySettings struct {
	// Rollback is the default partial-failure policy.
	Rollback RollbackPolicy
}

// DispatchSettings holds dispatcher configuration.
type DispatchSettings struct {
	// Mode selects the dispatcher implementation.
	Mode DispatchMode

	// RatePerSecond caps sustained sends. Zero disables rate limiting.
	RatePerSecond float64

	// Burst is the token bucket size.
	Burst int
}

// SMTPSettings holds SMTP delivery configuration.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is used when a message has no sender of its own.
	From string

	TLS TLSPolicy
}

// IsConfigured returns true if a host and sender are set.
func (s SMTPSettings) IsConfigured() bool {
	return s.Host != "" && s.From != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Relay    RelaySettings
	Dispatch DispatchSettings
	SMTP     SMTPSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// SMTP is left unconfigured; the record dispatcher works without it.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Relay: RelaySettings{
			Rollback: RollbackNone,
		},
		Dispatch: DispatchSettings{
			Mode:  DispatchModeRecord,
			Burst: 1,
		},
		SMTP: SMTPSettings{
			Port: 587,
			TLS:  TLSOpportunistic,
		},
	}
}

// Validate checks settings for consistency.
func (s AppSettings) Validate() error {
	if !s.Relay.Rollback.IsValid() {
		return fmt.Errorf("%w: unknown rollback policy %q", ErrInvalidInput, s.Relay.Rollback)
	}
	if !s.Dispatch.Mode.IsValid() {
		return fmt.Errorf("%w: unknown dispatch mode %q", ErrInvalidInput, s.Dispatch.Mode)
	}
	if s.Dispatch.RatePerSecond < 0 {
		return fmt.Errorf("%w: dispatch rate must not be negative", ErrInvalidInput)
	}
	if s.Dispatch.RatePerSecond > 0 && s.Dispatch.Burst < 1 {
		return fmt.Errorf("%w: dispatch burst must be at least 1", ErrInvalidInput)
	}
	if s.Dispatch.Mode == DispatchModeSMTP {
		if !s.SMTP.IsConfigured() {
			return fmt.Errorf("%w: smtp dispatch requires smtp.host and smtp.from", ErrInvalidInput)
		}
		if !s.SMTP.TLS.IsValid() {
			return fmt.Errorf("%w: unknown smtp tls policy %q", ErrInvalidInput, s.SMTP.TLS)
		}
		if s.SMTP.Port <= 0 || s.SMTP.Port > 65535 {
			return fmt.Errorf("%w: smtp port %d out of range", ErrInvalidInput, s.SMTP.Port)
		}
	}
	return nil
}
