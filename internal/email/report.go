package email

import (
	"fmt"
	"html"
	"strings"

	"bidpilot/internal/bidding"
	"bidpilot/internal/config"
)

// Notifier mails bid pass summaries to the configured recipients.
type Notifier struct {
	service *Service
	cfg     *config.Config
}

// NewNotifier creates a new report notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service: NewService(cfg),
		cfg:     cfg,
	}
}

// NotifyBidReport mails a summary of one finished bid pass. No-op when
// email or recipients are not configured.
func (n *Notifier) NotifyBidReport(report *bidding.Report) {
	recipients := n.cfg.ReportRecipients()
	if !n.service.IsEnabled() || len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("Bid pass for %s: %d changed, %d held", report.Target, report.Changed, report.Held)
	n.service.SendAsync(recipients, subject, reportHTML(report), reportText(report))
}

func reportText(r *bidding.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bid pass %s over %s\n", r.ID, r.Target)
	fmt.Fprintf(&b, "Started %s, finished %s\n\n", r.StartedAt.Format("2006-01-02 15:04:05"), r.FinishedAt.Format("15:04:05"))
	fmt.Fprintf(&b, "Scanned: %d  Changed: %d  Held: %d  Failed: %d\n\n", r.Scanned, r.Changed, r.Held, r.Failed)

	for _, d := range r.Decisions {
		if d.Action == bidding.ActionHold {
			continue
		}
		fmt.Fprintf(&b, "%-6s %s: %d -> %d (%s)\n", d.Action, d.Keyword, d.OldBid, d.NewBid, d.Reason)
	}
	return b.String()
}

func reportHTML(r *bidding.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Bid pass over %s</h2>", html.EscapeString(r.Target))
	fmt.Fprintf(&b, "<p>Scanned %d keywords: <b>%d changed</b>, %d held, %d failed.</p>",
		r.Scanned, r.Changed, r.Held, r.Failed)

	b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Keyword</th><th>Action</th><th>Old</th><th>New</th><th>Reason</th></tr>")
	for _, d := range r.Decisions {
		if d.Action == bidding.ActionHold {
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(d.Keyword), d.Action, d.OldBid, d.NewBid, html.EscapeString(d.Reason))
	}
	b.WriteString("</table>")
	return b.String()
}
