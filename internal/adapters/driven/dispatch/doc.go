// Package dispatch provides driven.MessageDispatcher implementations.
//
//   - RecordDispatcher: marks the email as sent (or pending) in the record store
//   - SMTPDispatcher: delivers the email and its attachments over SMTP with
//     github.com/wneessen/go-mail, then records the outcome
//   - RateLimitedDispatcher: token-bucket throttle in front of any dispatcher
//
// New selects and composes them from domain.AppSettings.
package dispatch
