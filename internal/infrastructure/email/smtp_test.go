package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

type tenantStub struct {
	tenants map[uint]*tenant.Tenant
}

func (r *tenantStub) Create(context.Context, *tenant.Tenant) error { return nil }
func (r *tenantStub) GetByID(_ context.Context, id uint) (*tenant.Tenant, error) {
	return r.tenants[id], nil
}
func (r *tenantStub) UpdateProjection(context.Context, *tenant.Tenant) error { return nil }

func newTenantStub(t *testing.T, email string) *tenantStub {
	t.Helper()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tn, err := tenant.ReconstructTenant(1, "Acme", email, tenant.ProjectionInactive, nil, nil, nil, now, now)
	require.NoError(t, err)
	return &tenantStub{tenants: map[uint]*tenant.Tenant{1: tn}}
}

func TestSMTPNotifier_RendersMarkdown(t *testing.T) {
	sender := &captureSender{}
	n := NewSMTPNotifierWithSender(SMTPConfig{FromAddress: "noreply@tenancy.test", FromName: "Tenancy"},
		sender, newTenantStub(t, "owner@acme.test"), logger.NewNopLogger())

	err := n.Notify(context.Background(), 1, notification.Notification{
		Title:   "Subscription expiring",
		Message: "Your **Pro** plan expires in 7 days.",
		Kind:    notification.KindExpiryReminder,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	var buf bytes.Buffer
	_, err = sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "owner@acme.test")
	assert.Contains(t, raw, "Subject: Subscription expiring")
	assert.Contains(t, raw, "X-Notification-Kind: expiry_reminder")
	assert.Contains(t, raw, "<strong>Pro</strong>")
}

func TestSMTPNotifier_Failures(t *testing.T) {
	ctx := context.Background()
	msg := notification.Notification{Title: "t", Message: "m"}

	noEmail := NewSMTPNotifierWithSender(SMTPConfig{}, &captureSender{}, newTenantStub(t, ""), logger.NewNopLogger())
	assert.Error(t, noEmail.Notify(ctx, 1, msg))
	assert.ErrorIs(t, noEmail.Notify(ctx, 2, msg), tenant.ErrTenantNotFound)

	failing := NewSMTPNotifierWithSender(SMTPConfig{}, &captureSender{err: errors.New("refused")},
		newTenantStub(t, "owner@acme.test"), logger.NewNopLogger())
	assert.Error(t, failing.Notify(ctx, 1, msg))
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(logger.NewNopLogger()).Notify(context.Background(), 1, notification.Notification{}))
}
