package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/custodia-labs/notecourier/internal/core/domain"
	"github.com/custodia-labs/notecourier/internal/core/ports/driven"
	"github.com/custodia-labs/notecourier/internal/logger"
)

// Ensure SMTPDispatcher implements the interface.
var _ driven.MessageDispatcher = (*SMTPDispatcher)(nil)

// trackingHeader carries the email's tracking token when one is set.
const trackingHeader = "X-Tracking-Token"

// mailSender is the subset of *mail.Client used for delivery.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPDispatcher delivers emails with their attachments over SMTP and then
// records the dispatch in the message store.
type SMTPDispatcher struct {
	messages    driven.MessageStore
	attachments driven.AttachmentStore
	recorder    *RecordDispatcher
	settings    domain.SMTPSettings
	sender      mailSender
}

// NewSMTPDispatcher creates a dispatcher for the configured relay host.
func NewSMTPDispatcher(
	settings domain.SMTPSettings,
	messages driven.MessageStore,
	attachments driven.AttachmentStore,
) (*SMTPDispatcher, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: smtp host and sender address are required", domain.ErrInvalidInput)
	}
	client, err := newClient(settings)
	if err != nil {
		return nil, err
	}
	return newSMTPDispatcher(settings, messages, attachments, client), nil
}

func newSMTPDispatcher(
	settings domain.SMTPSettings,
	messages driven.MessageStore,
	attachments driven.AttachmentStore,
	sender mailSender,
) *SMTPDispatcher {
	return &SMTPDispatcher{
		messages:    messages,
		attachments: attachments,
		recorder:    NewRecordDispatcher(messages),
		settings:    settings,
		sender:      sender,
	}
}

func newClient(settings domain.SMTPSettings) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(settings.Port),
		mail.WithTLSPolicy(tlsPolicy(settings.TLS)),
	}
	if settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}
	client, err := mail.NewClient(settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client for %s: %w", settings.Host, err)
	}
	return client, nil
}

func tlsPolicy(p domain.TLSPolicy) mail.TLSPolicy {
	switch p {
	case domain.TLSMandatory:
		return mail.TLSMandatory
	case domain.TLSNone:
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// Send delivers the email when IssueSend is set; otherwise it only records
// the email as pending.
func (d *SMTPDispatcher) Send(ctx context.Context, req domain.SendRequest) (*domain.SendResponse, error) {
	if !req.IssueSend {
		return d.recorder.Send(ctx, req)
	}
	if req.EmailID == "" {
		return nil, fmt.Errorf("%w: email id is required", domain.ErrInvalidInput)
	}

	msg, err := d.messages.Get(ctx, req.EmailID)
	if err != nil {
		return nil, fmt.Errorf("retrieve email %s: %w", req.EmailID, err)
	}
	atts, err := d.attachments.ListByMessage(ctx, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list attachments for %s: %w", domain.ErrQueryFailed, msg.ID, err)
	}

	token := req.TrackingToken
	if token == "" {
		token = msg.TrackingToken
	}
	m, err := d.buildMessage(msg, atts, token)
	if err != nil {
		return nil, fmt.Errorf("%w: build email %s: %w", domain.ErrDispatchFailed, msg.ID, err)
	}

	if err := d.sender.DialAndSendWithContext(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: deliver email %s via %s: %w", domain.ErrDispatchFailed, msg.ID, d.settings.Host, err)
	}
	logger.Debug("Delivered %s to %d recipients with %d attachments", msg.ID, len(msg.To), len(atts))

	// Delivery is final. A failed status write is reported on the response.
	resp, err := d.recorder.Send(ctx, req)
	if err != nil {
		logger.Warn("Delivered %s but could not record it as sent: %v", msg.ID, err)
		return &domain.SendResponse{
			Subject:   msg.Subject,
			Status:    domain.MessageStatusSent,
			StatusErr: err,
		}, nil
	}
	return resp, nil
}

func (d *SMTPDispatcher) buildMessage(
	msg *domain.Message,
	atts []domain.Attachment,
	token string,
) (*mail.Msg, error) {
	m := mail.NewMsg()

	from := msg.From
	if from == "" {
		from = d.settings.From
	}
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("set sender %q: %w", from, err)
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("%w: email has no recipients", domain.ErrInvalidInput)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Description)
	if token != "" {
		m.SetGenHeader(mail.Header(trackingHeader), token)
	}

	for i, att := range atts {
		var content []byte
		if body, ok := att.Body.Get(); ok {
			decoded, err := base64.StdEncoding.DecodeString(body)
			if err != nil {
				return nil, fmt.Errorf("decode attachment %s: %w", att.ID, err)
			}
			content = decoded
		}
		name := att.FileName.OrElse("")
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}
		var opts []mail.FileOption
		if mt, ok := att.MimeType.Get(); ok && mt != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(mt)))
		}
		if err := m.AttachReader(name, bytes.NewReader(content), opts...); err != nil {
			return nil, fmt.Errorf("attach %s: %w", name, err)
		}
	}

	return m, nil
}
