package notify

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// Entries with 0-1 business days left get the high-urgency row treatment;
// exactly 2 days gets the attention treatment.
const (
	urgentRowColor    = "#d4edda"
	attentionRowColor = "#fff3cd"
	urgentDeadlineMsg = "🚨 DUE TODAY/TOMORROW!"
	attentionMsg      = "⏳ 2 business days"
)

var digestTmpl = template.Must(template.New("digest").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; border: 1px solid #eee; padding: 20px; border-radius: 8px;">
        <h2 style="color: #0044cc; text-align: center;">📅 Bid Digest</h2>
        <p>Hello, <b>{{.Name}}</b>!</p>
        <p>Here is the updated digest of your bids marked <b>APPROVED</b> for the coming days.</p>

        <table style="width: 100%; border-collapse: collapse; margin-top: 20px; font-size: 14px;">
            <thead>
                <tr style="background-color: #0044cc; color: white;">
                    <th style="padding: 10px; text-align: left;">Organization / Object</th>
                    <th style="padding: 10px;">Date / Time</th>
                    <th style="padding: 10px;">Platform</th>
                    <th style="padding: 10px;">Deadline</th>
                </tr>
            </thead>
            <tbody>
{{- range .Rows}}
                <tr style="background-color: {{.RowColor}}; border-bottom: 1px solid #ddd;">
                    <td style="padding: 10px;"><b>{{.Organization}}</b><br><span style="font-size:12px; color:#555">{{.Object}}</span></td>
                    <td style="padding: 10px; text-align:center;"><b>{{.Date}}</b><br>{{.Time}}</td>
                    <td style="padding: 10px; text-align:center;">{{.Platform}}</td>
                    <td style="padding: 10px; text-align:center; font-weight:bold; color:#d9534f;">{{.DeadlineMsg}}</td>
                </tr>
{{- end}}
            </tbody>
        </table>

        <div style="text-align: center; margin-top: 30px; margin-bottom: 20px;">
            <a href="{{.AppBaseURL}}" target="_blank"
               style="background-color: #0044cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold; font-size: 14px;">
               Open LicitaHub
            </a>
        </div>

        <p style="margin-top: 30px; font-size: 12px; color: #888; text-align: center;">
            This digest is generated automatically at 08:00 and 16:00.<br>
            Urbano - Bid Intelligence
        </p>
    </div>
</body>
</html>
`))

type digestRow struct {
	Organization string
	Object       string
	Date         string
	Time         string
	Platform     string
	RowColor     string
	DeadlineMsg  string
}

type digestData struct {
	Name       string
	Rows       []digestRow
	AppBaseURL string
}

// RenderDigest builds the aggregated HTML digest for one owner.
func RenderDigest(name string, entries []models.DeadlineEntry, appBaseURL string) (string, error) {
	data := digestData{Name: name, AppBaseURL: appBaseURL}
	for _, e := range entries {
		row := digestRow{
			Organization: e.Organization,
			Object:       e.Object,
			Date:         e.Date,
			Time:         e.Time,
			Platform:     e.Platform,
			RowColor:     attentionRowColor,
			DeadlineMsg:  attentionMsg,
		}
		if e.BusinessDaysLeft <= 1 {
			row.RowColor = urgentRowColor
			row.DeadlineMsg = urgentDeadlineMsg
		}
		data.Rows = append(data.Rows, row)
	}

	var b strings.Builder
	if err := digestTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

// DigestSubject includes the number of urgent entries in the subject line.
func DigestSubject(count int) string {
	return fmt.Sprintf("📅 Bid Digest: %d opportunities closing soon", count)
}
