package alerts

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

const testPrefix = "[TEST] "

// slackEscaper escapes the characters Slack mrkdwn reserves for links and mentions.
var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// MessageOptions carries the recipient and run context of one message.
type MessageOptions struct {
	RecipientName string
	SlackUserID   *string
	Now           time.Time
	DashboardURL  string
	Test          bool
}

func (o MessageOptions) firstName() string {
	first := domain.FirstName(o.RecipientName)
	if first == "" {
		return "equipo"
	}

	return cases.Title(language.Spanish).String(first)
}

func (o MessageOptions) prefix() string {
	if o.Test {
		return testPrefix
	}

	return ""
}

// FormatSlackMessage renders alerts, already sorted by the caller, as Slack mrkdwn.
// Companies without deviations are skipped and do not consume a rank.
func FormatSlackMessage(opts MessageOptions, alerts []CompanyAlert) string {
	var sb strings.Builder

	sb.WriteString(opts.prefix())
	sb.WriteString("Hola ")
	sb.WriteString(slackEscaper.Replace(opts.firstName()))
	sb.WriteString(",")

	if opts.SlackUserID != nil && *opts.SlackUserID != "" {
		sb.WriteString(" <@")
		sb.WriteString(*opts.SlackUserID)
		sb.WriteString(">")
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "*Alertas del %s*\n", DateLabel(opts.Now))

	rank := 0

	for _, a := range alerts {
		if len(a.Deviations) == 0 {
			continue
		}

		rank++
		sev := SeverityForScore(a.Score)

		fmt.Fprintf(&sb, "\n%d. *%s* %s %s (%d)\n", rank, slackEscaper.Replace(a.Name), sev.Marker(), sev, a.Score)

		for _, d := range a.Deviations {
			fmt.Fprintf(&sb, "   • %s: %s (umbral %s)\n",
				slackEscaper.Replace(d.Label), slackEscaper.Replace(d.Value), slackEscaper.Replace(d.Threshold))
		}
	}

	if rank == 0 {
		sb.WriteString("\nSin alertas para tus marcas.\n")
	}

	if opts.DashboardURL != "" {
		fmt.Fprintf(&sb, "\n<%s|Ver en TPHub>\n", opts.DashboardURL)
	}

	return sb.String()
}

// EmailSubject returns the subject line for an alert email.
func EmailSubject(opts MessageOptions, alerts []CompanyAlert) string {
	n := 0

	for _, a := range alerts {
		if len(a.Deviations) > 0 {
			n++
		}
	}

	return fmt.Sprintf("%sTPHub: %d alertas del %s", opts.prefix(), n, DateLabel(opts.Now))
}

// FormatEmailHTML renders the same content as FormatSlackMessage as an HTML body.
func FormatEmailHTML(opts MessageOptions, alerts []CompanyAlert) string {
	var sb strings.Builder

	sb.WriteString("<div style=\"font-family:Arial,sans-serif;font-size:14px\">")
	fmt.Fprintf(&sb, "<p>%sHola %s,</p>", html.EscapeString(opts.prefix()), html.EscapeString(opts.firstName()))
	fmt.Fprintf(&sb, "<p><strong>Alertas del %s</strong></p>", html.EscapeString(DateLabel(opts.Now)))

	rank := 0

	for _, a := range alerts {
		if len(a.Deviations) == 0 {
			continue
		}

		rank++
		sev := SeverityForScore(a.Score)

		fmt.Fprintf(&sb, "<h3>%d. %s <span style=\"color:%s\">%s (%d)</span></h3><ul>",
			rank, html.EscapeString(a.Name), sev.Color(), sev, a.Score)

		for _, d := range a.Deviations {
			fmt.Fprintf(&sb, "<li>%s: %s (umbral %s)</li>",
				html.EscapeString(d.Label), html.EscapeString(d.Value), html.EscapeString(d.Threshold))
		}

		sb.WriteString("</ul>")
	}

	if rank == 0 {
		sb.WriteString("<p>Sin alertas para tus marcas.</p>")
	}

	if opts.DashboardURL != "" {
		fmt.Fprintf(&sb, "<p><a href=\"%s\">Ver en TPHub</a></p>", html.EscapeString(opts.DashboardURL))
	}

	sb.WriteString("</div>")

	return sb.String()
}
