package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

var testDoc = []byte("{\n    \"artists\": [\n        {\n            \"id\": \"novo\"\n        }\n    ]\n}\n")

func completeConfig() SMTPConfig {
	return SMTPConfig{Server: "smtp.test", Port: 587, Email: "bot@test", Password: "secret", Recipient: "owner@test"}
}

func newTestNotifier(cfg SMTPConfig, send Sender) *EmailNotifier {
	n := NewEmailNotifier(cfg, nil)
	n.send = send
	n.now = func() time.Time { return time.Date(2026, 5, 4, 9, 8, 7, 0, time.Local) }
	return n
}

func TestEmailNotifier_Sends(t *testing.T) {
	var sent *mail.Msg
	var calls int
	n := newTestNotifier(completeConfig(), func(ctx context.Context, cfg SMTPConfig, msg *mail.Msg) error {
		calls++
		sent = msg
		return nil
	})

	require.NoError(t, n.Notify(context.Background(), testDoc))
	require.Equal(t, 1, calls)

	assert.Equal(t, []string{"Backup Xeitosa Social AI - 2026-05-04 09:08:07"}, sent.GetGenHeader(mail.HeaderSubject))
	assert.NotEmpty(t, sent.GetGenHeader(mail.HeaderMessageID))

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"id": "novo"`)
	assert.Contains(t, buf.String(), "owner@test")
}

func TestEmailNotifier_NotConfigured(t *testing.T) {
	cfg := completeConfig()
	cfg.Password = ""
	called := false
	n := newTestNotifier(cfg, func(context.Context, SMTPConfig, *mail.Msg) error {
		called = true
		return nil
	})

	err := n.Notify(context.Background(), testDoc)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, called)
}

func TestEmailNotifier_AuthFailure(t *testing.T) {
	n := newTestNotifier(completeConfig(), func(context.Context, SMTPConfig, *mail.Msg) error {
		return errors.New("535 5.7.8 Username and Password not accepted")
	})

	err := n.Notify(context.Background(), testDoc)
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorContains(t, err, "apppasswords")
}

func TestEmailNotifier_TransportFailure(t *testing.T) {
	n := newTestNotifier(completeConfig(), func(context.Context, SMTPConfig, *mail.Msg) error {
		return errors.New("connection refused")
	})

	err := n.Notify(context.Background(), testDoc)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuth)
}

func TestBody(t *testing.T) {
	body := Body(testDoc)
	assert.Equal(t, "Adxunto atoparás a última versión de artist-config.json:\n\n"+string(testDoc), body)
}

type fakePut struct {
	key  string
	body []byte
}

func (f *fakePut) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.key = *in.Key
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver(t *testing.T) {
	fake := &fakePut{}
	a := NewS3Archiver(fake, "bucket", nil)
	a.now = func() time.Time { return time.Date(2026, 5, 4, 9, 8, 7, 0, time.UTC) }

	require.NoError(t, a.Notify(context.Background(), testDoc))
	assert.Equal(t, "backups/20260504T090807.000Z.json", fake.key)
	assert.Equal(t, testDoc, fake.body)
}
