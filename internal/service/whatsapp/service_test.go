package whatsapp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/service/commands"
	client "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
)

type fakeClient struct {
	mu   sync.Mutex
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	return &client.SendTextMessageResponse{}, nil
}

type fakeUsers map[string]models.User

func (f fakeUsers) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	u, ok := f[phone]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

type fakeDispatcher struct {
	owner string
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, _ models.Command, owner string) (string, error) {
	f.owner = owner
	return f.reply, f.err
}

type countingRecorder map[string]int

func (c countingRecorder) RecordEvent(event string) { c[event]++ }

func payload(from, text string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: []models.InboundMessage{{
			From: from, ID: "wamid.in", Type: "text", Text: &models.TextContent{Body: text},
		}}}}},
	}}}
}

func newService(c *fakeClient, d *fakeDispatcher, rec countingRecorder) *MetaWhatsAppService {
	users := fakeUsers{"224620000000": {ID: "u-1", WhatsAppPhone: "224620000000"}}
	return NewMetaWhatsAppService(Options{VerifyToken: "verify-me"}, c, users, d, rec, nil)
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := newService(&fakeClient{}, &fakeDispatcher{}, nil)

	got, err := svc.VerifyWebhookToken("subscribe", "verify-me", "12345")
	if err != nil || got != "12345" {
		t.Fatalf("VerifyWebhookToken = %q, %v", got, err)
	}
	for _, tc := range [][2]string{{"", "verify-me"}, {"unsubscribe", "verify-me"}, {"subscribe", "wrong"}} {
		if _, err := svc.VerifyWebhookToken(tc[0], tc[1], "x"); err == nil {
			t.Errorf("VerifyWebhookToken(%q, %q) accepted", tc[0], tc[1])
		}
	}
}

func TestHandleWebhook_AnswersLinkedUser(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{reply: "Stock: all medicines fine."}
	if err := newService(c, d, nil).HandleWebhook(context.Background(), payload("224620000000", "/stock")); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if d.owner != "u-1" {
		t.Errorf("dispatched for %q", d.owner)
	}
	if len(c.sent) != 1 || c.sent[0].To != "224620000000" || c.sent[0].Body != d.reply {
		t.Errorf("sent = %+v", c.sent)
	}
}

func TestHandleWebhook_UnknownSender(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{}
	if err := newService(c, d, nil).HandleWebhook(context.Background(), payload("15550001111", "/milk")); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if d.owner != "" {
		t.Error("dispatcher called for unknown sender")
	}
	if len(c.sent) != 1 || c.sent[0].Body != UnknownSenderReply {
		t.Errorf("sent = %+v", c.sent)
	}
}

func TestHandleWebhook_CommandErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantErr   bool
		wantReply string
	}{
		{"unsupported", commands.ErrUnsupportedCommand, false, "Unknown command."},
		{"bad arguments", commands.ErrInvalidArguments, false, "Could not read that command."},
		{"store failure", errors.New("store down"), true, FailureReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{}
			err := newService(c, &fakeDispatcher{err: tt.err}, nil).HandleWebhook(context.Background(), payload("224620000000", "/x"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v", err)
			}
			if len(c.sent) != 1 || !strings.HasPrefix(c.sent[0].Body, tt.wantReply) {
				t.Errorf("sent = %+v", c.sent)
			}
		})
	}
}

func TestHandleWebhook_IgnoresNonText(t *testing.T) {
	c := &fakeClient{}
	p := payload("224620000000", "")
	p.Entry[0].Changes[0].Value.Messages[0].Text = nil
	if err := newService(c, &fakeDispatcher{}, nil).HandleWebhook(context.Background(), p); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(c.sent) != 0 {
		t.Errorf("sent = %+v", c.sent)
	}
}

func TestSendDigest(t *testing.T) {
	c := &fakeClient{}
	rec := countingRecorder{}
	svc := newService(c, &fakeDispatcher{}, rec)

	if err := svc.SendDigest(context.Background(), models.User{ID: "u-2"}, "digest"); err != nil || len(c.sent) != 0 {
		t.Fatalf("user without phone: err = %v, sent = %v", err, c.sent)
	}
	if err := svc.SendDigest(context.Background(), models.User{ID: "u-1", WhatsAppPhone: "+224 620 00 00 00"}, "digest"); err != nil {
		t.Fatalf("SendDigest: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0].To != "224620000000" || rec[metrics.EventDigestSent] != 1 {
		t.Errorf("sent = %+v, events = %v", c.sent, rec)
	}

	c.err = errors.New("rate limited")
	if err := svc.SendDigest(context.Background(), models.User{ID: "u-1", WhatsAppPhone: "1"}, "digest"); !errors.Is(err, c.err) {
		t.Errorf("error = %v", err)
	}
}
