// Package email provides a provider-agnostic interface for sending the
// transactional emails the loan tracker produces, with built-in support
// for Postmark and a filesystem-backed sender for local development.
//
// The package is built around the EmailSender interface, allowing different
// providers to be swapped without changing application code:
//   - PostmarkClient for production delivery with open/click tracking
//   - DevSender for local development (saves emails to disk)
//
// All implementations validate parameters before sending and report
// failures through the package sentinel errors.
//
// # Usage
//
//	sender, err := email.NewPostmarkClient(email.Config{
//	    PostmarkServerToken:  "your-server-token",
//	    PostmarkAccountToken: "your-account-token",
//	    SenderEmail:          "noreply@example.com",
//	    SupportEmail:         "support@example.com",
//	})
//	if err != nil {
//	    return err
//	}
//
//	err = sender.SendEmail(ctx, email.AssignmentEmail("reader@example.com", "Alice", "The Go Programming Language", dueAt))
//
// For development, use DevSender to inspect rendered emails on disk:
//
//	sender := email.NewDevSender("./tmp/emails")
package email
