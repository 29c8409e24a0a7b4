package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectFail = "Got It! - A participant needs help"
	subjectPass = "Got It! - A participant has completed the quiz"
)

const layout = `{{define "footer"}}
  <div style="background-color: #f5f5f5; padding: 20px; text-align: center; border-top: 1px solid #eaeaea;">
    <p style="margin: 0; color: #888; font-size: 14px;">&copy; {{.Year}} Got It! All rights reserved.</p>
    <p style="margin: 5px 0 0; color: #888; font-size: 14px;">This is an automated notification from the Got It platform.</p>
  </div>
{{end}}

{{define "fail"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #eaeaea; border-radius: 8px; overflow: hidden;">
  <div style="padding: 30px 25px;">
    <h2 style="color: #333; margin-top: 0;">Quiz Assistance Needed</h2>
    <p style="color: #555; line-height: 1.5;">A participant, <strong>{{.Participant}}</strong>, got the quiz "<strong>{{.QuizTitle}}</strong>" wrong and may need clarification.</p>
    <p style="color: #555; line-height: 1.5;">You might want to reach out to provide additional explanation on this topic.</p>
    <div style="margin-top: 30px; padding: 15px; background-color: #f9f9f9; border-radius: 5px; border-left: 4px solid #0070f3;">
      <p style="margin: 0; color: #666;">Providing timely feedback helps participants better understand the material.</p>
    </div>
  </div>
{{template "footer" .}}</div>{{end}}

{{define "pass"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #eaeaea; border-radius: 8px; overflow: hidden;">
  <div style="padding: 30px 25px;">
    <h2 style="color: #333; margin-top: 0;">Quiz Completed</h2>
    <p style="color: #555; line-height: 1.5;">A participant, <strong>{{.Participant}}</strong>, has completed the quiz "<strong>{{.QuizTitle}}</strong>".</p>
  </div>
  <div style="margin-top: 30px; padding: 15px; background-color: #f9f9f9; border-radius: 5px; border-left: 4px solid #0070f3;">
    <p style="margin: 0; color: #666;">Why not try congratulating them on their completion of the quiz?</p>
  </div>
{{template "footer" .}}</div>{{end}}`

var templates = template.Must(template.New("notify").Parse(layout))

type templateData struct {
	Participant string
	QuizTitle   string
	Year        int
}

// render builds the message for n. Unknown outcomes are rejected.
func render(n Notification, year int) (Message, error) {
	var name, subject string
	switch n.Outcome {
	case OutcomePass:
		name, subject = "pass", subjectPass
	case OutcomeFail:
		name, subject = "fail", subjectFail
	default:
		return Message{}, fmt.Errorf("unknown outcome %q", n.Outcome)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, templateData{
		Participant: n.Participant,
		QuizTitle:   n.QuizTitle,
		Year:        year,
	}); err != nil {
		return Message{}, fmt.Errorf("execute template: %w", err)
	}

	return Message{
		To:      n.Recipient,
		Subject: subject,
		HTML:    body.String(),
	}, nil
}
