package email

import (
	"html/template"
	"strings"
	"time"
)

// Loan-specific email composition. Templates are compiled once at package
// init; rendering them against plain structs cannot fail at runtime, so the
// constructors return ready-to-send parameters.

var (
	assignmentTmpl = template.Must(template.New("assignment").Parse(`<html><body>
<p>Hi {{.UserName}},</p>
<p>The book <strong>{{.BookTitle}}</strong> has been assigned to you.
Please return it by <strong>{{.DueDate}}</strong>.</p>
<p>Happy reading!</p>
</body></html>`))

	overdueTmpl = template.Must(template.New("overdue").Parse(`<html><body>
<p>Hi {{.UserName}},</p>
<p>The book <strong>{{.BookTitle}}</strong> was due on <strong>{{.DueDate}}</strong>
and is now {{.DaysOverdue}} day{{if ne .DaysOverdue 1}}s{{end}} overdue.
Please return it as soon as possible.</p>
</body></html>`))
)

type loanMailData struct {
	UserName    string
	BookTitle   string
	DueDate     string
	DaysOverdue int
}

func renderLoanMail(tmpl *template.Template, data loanMailData) string {
	var sb strings.Builder
	// Errors are impossible here: the template is static and the data is a
	// flat struct.
	_ = tmpl.Execute(&sb, data)
	return sb.String()
}

// AssignmentEmail builds the confirmation sent when a book is assigned.
func AssignmentEmail(sendTo, userName, bookTitle string, dueAt time.Time) SendEmailParams {
	return SendEmailParams{
		SendTo:  sendTo,
		Subject: "Book assigned: " + bookTitle,
		BodyHTML: renderLoanMail(assignmentTmpl, loanMailData{
			UserName:  userName,
			BookTitle: bookTitle,
			DueDate:   dueAt.Format("Jan 2, 2006"),
		}),
		Tag: "loan-assignment",
	}
}

// OverdueEmail builds the escalation sent when a loan goes overdue.
func OverdueEmail(sendTo, userName, bookTitle string, dueAt time.Time, daysOverdue int) SendEmailParams {
	return SendEmailParams{
		SendTo:  sendTo,
		Subject: "Overdue book: " + bookTitle,
		BodyHTML: renderLoanMail(overdueTmpl, loanMailData{
			UserName:    userName,
			BookTitle:   bookTitle,
			DueDate:     dueAt.Format("Jan 2, 2006"),
			DaysOverdue: daysOverdue,
		}),
		Tag: "loan-overdue",
	}
}
