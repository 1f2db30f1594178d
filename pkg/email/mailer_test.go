package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "reader@example.com",
		Subject:  "Book due soon",
		BodyHTML: "<p>hi</p>",
	}

	tests := []struct {
		name    string
		mutate  func(p *email.SendEmailParams)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *email.SendEmailParams) {}},
		{name: "missing recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, wantErr: true},
		{name: "malformed recipient", mutate: func(p *email.SendEmailParams) { p.SendTo = "not-an-email" }, wantErr: true},
		{name: "missing subject", mutate: func(p *email.SendEmailParams) { p.Subject = "" }, wantErr: true},
		{name: "missing body", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	params := email.SendEmailParams{
		SendTo:   "reader@example.com",
		Subject:  "Book assigned",
		BodyHTML: "<p>enjoy</p>",
		Tag:      "loan-assignment",
	}
	require.NoError(t, sender.SendEmail(context.Background(), params))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".html" {
			htmlFile = e.Name()
		}
	}
	require.NotEmpty(t, htmlFile)
	assert.Contains(t, htmlFile, "loan-assignment")

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<p>enjoy</p>", string(body))
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	sender := email.NewDevSender(t.TempDir())
	err := sender.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestAssignmentEmail(t *testing.T) {
	t.Parallel()

	dueAt := time.Date(2026, time.March, 25, 18, 0, 0, 0, time.UTC)
	params := email.AssignmentEmail("reader@example.com", "Alice", "The Go Programming Language", dueAt)

	require.NoError(t, params.Validate())
	assert.Equal(t, "Book assigned: The Go Programming Language", params.Subject)
	assert.Contains(t, params.BodyHTML, "Hi Alice,")
	assert.Contains(t, params.BodyHTML, "Mar 25, 2026")
}

func TestOverdueEmail(t *testing.T) {
	t.Parallel()

	dueAt := time.Date(2026, time.March, 8, 18, 0, 0, 0, time.UTC)

	t.Run("plural days", func(t *testing.T) {
		t.Parallel()

		params := email.OverdueEmail("reader@example.com", "Alice", "Dune", dueAt, 3)
		require.NoError(t, params.Validate())
		assert.Contains(t, params.BodyHTML, "3 days overdue")
	})

	t.Run("single day", func(t *testing.T) {
		t.Parallel()

		params := email.OverdueEmail("reader@example.com", "Alice", "Dune", dueAt, 1)
		assert.Contains(t, params.BodyHTML, "1 day overdue")
		assert.False(t, strings.Contains(params.BodyHTML, "1 days overdue"))
	})
}
