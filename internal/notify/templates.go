package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

const (
	UserSubject     = "Thank You for Your Feedback"
	OperatorSubject = "New Feedback Received"
)

const detailsPartial = `{{define "details"}}
            <p><strong>Category:</strong> {{.Category}}</p>
            <p><strong>Rating:</strong> {{.Rating}}/5</p>
            <p><strong>Feedback:</strong> {{.Feedback}}</p>
            {{- if .Improvement}}
            <p><strong>Suggestions for Improvement:</strong> {{.Improvement}}</p>
            {{- end}}
{{- end}}`

const userLayout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">
          <h2 style="color: #4B2CA0;">Thank You for Your Feedback!</h2>
          <p>We appreciate you taking the time to share your thoughts with us.</p>
          <div style="background-color: #fff; padding: 20px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #6B3FCF;">Your Feedback Details:</h3>
            {{- template "details" .}}
          </div>
          <p>We value your input and will use it to improve our services.</p>
          <p style="color: #666; font-size: 0.9em;">This is an automated message, please do not reply.</p>
        </div>`

const operatorLayout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">
          <h2 style="color: #4B2CA0;">New Feedback Received</h2>
          <div style="background-color: #fff; padding: 20px; border-radius: 8px; margin: 20px 0;">
            <h3 style="color: #6B3FCF;">Feedback Details:</h3>
            <p><strong>From:</strong> {{.Email}}</p>
            {{- template "details" .}}
            <p><strong>Submitted:</strong> {{.Submitted}}</p>
          </div>
        </div>`

// SubmittedLayout formats the operator alert timestamp.
const SubmittedLayout = "Jan 2, 2006 3:04:05 PM MST"

var (
	userTmpl     = template.Must(template.Must(template.New("user").Parse(detailsPartial)).Parse(userLayout))
	operatorTmpl = template.Must(template.Must(template.New("operator").Parse(detailsPartial)).Parse(operatorLayout))
)

type templateData struct {
	Category    string
	Rating      int
	Feedback    string
	Improvement string
	Email       string
	Submitted   string
}

func newTemplateData(rec models.Feedback) templateData {
	return templateData{
		Category:    rec.Category,
		Rating:      rec.Rating,
		Feedback:    rec.Feedback,
		Improvement: rec.Improvement,
		Email:       rec.Email,
	}
}

// Composer renders the two messages sent for a stored record.
type Composer struct {
	operator string
	location *time.Location
}

// NewComposer returns a Composer addressing alerts to operator and printing
// timestamps in loc (UTC when nil).
func NewComposer(operator string, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{operator: operator, location: loc}
}

// Operator returns the alert recipient.
func (c *Composer) Operator() string { return c.operator }

// UserAcknowledgment reflects the submission back to its author.
func (c *Composer) UserAcknowledgment(rec models.Feedback) (Message, error) {
	body, err := render(userTmpl, newTemplateData(rec))
	if err != nil {
		return Message{}, err
	}
	return Message{To: rec.Email, Subject: UserSubject, HTMLBody: body}, nil
}

// OperatorAlert tells the operator address about a new submission.
func (c *Composer) OperatorAlert(rec models.Feedback) (Message, error) {
	data := newTemplateData(rec)
	data.Submitted = rec.CreatedAt.In(c.location).Format(SubmittedLayout)
	body, err := render(operatorTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: c.operator, Subject: OperatorSubject, HTMLBody: body}, nil
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
