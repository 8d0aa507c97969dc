package email

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/shared/logger"
	"github.com/orris-inc/tenancy/internal/shared/services/markdown"
	"github.com/orris-inc/tenancy/internal/shared/utils"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier delivers notifications to the tenant's contact address.
type SMTPNotifier struct {
	config   SMTPConfig
	sender   Sender
	tenants  tenant.Repository
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewSMTPNotifier(config SMTPConfig, tenants tenant.Repository, log logger.Interface) *SMTPNotifier {
	return NewSMTPNotifierWithSender(config, gomail.NewDialer(config.Host, config.Port, config.Username, config.Password), tenants, log)
}

func NewSMTPNotifierWithSender(config SMTPConfig, sender Sender, tenants tenant.Repository, log logger.Interface) *SMTPNotifier {
	return &SMTPNotifier{
		config:   config,
		sender:   sender,
		tenants:  tenants,
		renderer: markdown.NewRenderer(),
		logger:   log,
	}
}

func (s *SMTPNotifier) Notify(ctx context.Context, tenantID uint, n notification.Notification) error {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	if t == nil {
		return tenant.ErrTenantNotFound
	}
	if t.ContactEmail() == "" {
		return fmt.Errorf("tenant %d has no contact email", tenantID)
	}

	body, err := s.renderer.ToHTMLSanitized(n.Message)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetAddressHeader("To", t.ContactEmail(), t.Name())
	m.SetHeader("Subject", n.Title)
	m.SetHeader("X-Notification-Kind", string(n.Kind))
	m.SetBody("text/plain", n.Message)
	m.AddAlternative("text/html", htmlDocument(n.Title, body))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debugw("notification email sent",
		"tenant_id", tenantID,
		"kind", n.Kind,
		"to", utils.MaskEmail(t.ContactEmail()),
	)
	return nil
}

func htmlDocument(title, body string) string {
	return fmt.Sprintf(`<html>
<body>
<h2>%s</h2>
%s
</body>
</html>`, html.EscapeString(title), body)
}
