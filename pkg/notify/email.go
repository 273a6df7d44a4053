package notify

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
)

type Notifier interface {
	SendResult(ctx context.Context, to string, result *models.PipelineResult) error
}

// EmailNotifier mails the translation result through MailerSend.
type EmailNotifier struct {
	ms       *mailersend.Mailersend
	fromName string
	from     string
}

func NewEmailNotifier(apiKey, fromName, from string) *EmailNotifier {
	return &EmailNotifier{ms: mailersend.NewMailersend(apiKey), fromName: fromName, from: from}
}

func (n *EmailNotifier) SendResult(ctx context.Context, to string, result *models.PipelineResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	subject, text, htmlBody := Compose(result)

	message := n.ms.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: n.fromName, Email: n.from})
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject(subject)
	message.SetHTML(htmlBody)
	message.SetText(text)

	if _, err := n.ms.Email.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// Compose renders subject, plain text and html bodies for a result.
func Compose(result *models.PipelineResult) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("your translation (%s -> %s)", result.DetectedLanguage, result.DestinationLanguage)
	text = fmt.Sprintf("extracted text (%s):\n%s\n\ntranslated text (%s):\n%s\n",
		result.DetectedLanguage, result.ExtractedText, result.DestinationLanguage, result.TranslatedText)
	htmlBody = fmt.Sprintf("<h1>your translation</h1><h2>extracted text (%s)</h2><p>%s</p><h2>translated text (%s)</h2><p>%s</p>",
		html.EscapeString(result.DetectedLanguage), html.EscapeString(result.ExtractedText),
		html.EscapeString(result.DestinationLanguage), html.EscapeString(result.TranslatedText))
	return subject, text, htmlBody
}
