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

	"github.com/jwalitptl/triage-api/internal/model"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestNewService_NopWithoutHost(t *testing.T) {
	assert.IsType(t, NopService{}, NewService(Config{}))
	assert.IsType(t, NopService{}, NewService(Config{Host: "smtp.local"}))
	assert.IsType(t, &smtpService{}, NewService(Config{Host: "smtp.local", Port: 25, To: []string{"a@b"}}))
}

func TestSendResupplyAlert(t *testing.T) {
	d := &recordingDialer{}
	svc := NewServiceWithDialer(d, "triage@field.local", []string{"logistics@field.local"})
	loc := "tent-b"

	err := svc.SendResupplyAlert(context.Background(), &model.Resource{
		ResourceType:  "oxygen",
		CurrentStock:  4,
		CriticalLevel: 10,
		Location:      &loc,
		LastUpdated:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"Resupply needed: oxygen"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"logistics@field.local"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "oxygen stock is 4")
	assert.Contains(t, buf.String(), "tent-b")
}

func TestSendResupplyAlert_DialError(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	svc := NewServiceWithDialer(d, "a@b", []string{"c@d"})

	err := svc.SendResupplyAlert(context.Background(), &model.Resource{ResourceType: "morphine"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send resupply alert")
}

func TestNopService(t *testing.T) {
	assert.NoError(t, NopService{}.SendResupplyAlert(context.Background(), &model.Resource{}))
}
