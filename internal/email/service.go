package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/redmonkez12/shop-api/internal/config"
	"github.com/redmonkez12/shop-api/internal/logging"
)

// Message is one outgoing email with a plain-text and an HTML part
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the transport selected by cfg.Provider
func NewSender(cfg config.EmailConfig, logger *logging.Logger) (Sender, error) {
	switch cfg.Provider {
	case config.EmailProviderSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From), nil
	case config.EmailProviderSendGrid:
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName), nil
	case config.EmailProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .code {
            font-size: 32px;
            font-weight: bold;
            letter-spacing: 6px;
            color: #4F46E5;
            text-align: center;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Verification code</h1>
    </div>
    <div class="content">
        <p>Enter this code to confirm your email address:</p>
        <p class="code">{{.Code}}</p>
        <p style="margin-top: 30px;">If you didn't ask for a code, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This code will expire in {{.Minutes}} minutes.</p>
    </div>
</body>
</html>
`))

// VerificationCode renders the message carrying a verification code valid for ttl
func VerificationCode(to, code string, ttl time.Duration) (Message, error) {
	minutes := int(math.Ceil(ttl.Minutes()))

	var buf bytes.Buffer
	data := struct {
		Code    string
		Minutes int
	}{
		Code:    code,
		Minutes: minutes,
	}
	if err := verificationTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("execute template: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Your verification code is %s.\n", code)
	fmt.Fprintf(&text, "It expires in %d minutes.\n", minutes)

	return Message{
		To:      to,
		Subject: "Your verification code",
		Text:    text.String(),
		HTML:    buf.String(),
	}, nil
}
