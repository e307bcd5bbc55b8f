package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig locates the OAuth2 client secret and cached user token.
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	From            Sender
}

// GmailMailer sends through the Gmail API as the authorized user.
type GmailMailer struct {
	service *gmail.Service
	from    Sender
	now     func() time.Time
}

// NewGmailMailer builds a Gmail client from a previously authorized token.
// The token file must already exist; the server never prompts interactively.
func NewGmailMailer(ctx context.Context, cfg GmailConfig) (*GmailMailer, error) {
	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read gmail client secret file")
	}
	oauthCfg, err := google.ConfigFromJSON(secret, gmail.GmailSendScope)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse gmail client secret file")
	}
	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load gmail token %s", cfg.TokenFile)
	}
	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create gmail service")
	}
	return &GmailMailer{service: service, from: cfg.From, now: time.Now}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Send delivers msg as the authorized user.
func (m *GmailMailer) Send(ctx context.Context, msg Message) error {
	raw := base64.URLEncoding.EncodeToString(buildMIME(m.from, msg, m.now()))
	_, err := m.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "gmail: failed to send to %s", msg.ToAddress)
	}
	return nil
}
