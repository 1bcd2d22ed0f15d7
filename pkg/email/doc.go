// Package email delivers the transactional mail of the credential flows.
//
// Sender is the transport: PostmarkSender for production and DevSender,
// which writes each message to disk as an HTML file plus JSON metadata, for
// local development. NewSender picks one from Config.
//
// AuthMailer implements credential.EmailSender on top of any Sender. It
// renders the verification and password reset messages from the templ
// components in the templates subpackage.
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//		return err
//	}
//	mailer := email.NewAuthMailer(sender, email.WithProductName("Acme"))
package email
