package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// ActionEmail is the data of a single call-to-action message.
type ActionEmail struct {
	Product   string
	Heading   string
	Intro     string
	Action    string
	URL       string
	ExpiresIn time.Duration
	Footer    string
}

// VerifyEmail asks the user to confirm their address.
func VerifyEmail(product, url string, expiresIn time.Duration) templ.Component {
	return Action(ActionEmail{
		Product:   product,
		Heading:   "Confirm your email address",
		Intro:     "Thanks for signing up for " + product + ". Confirm your email address to finish setting up your account.",
		Action:    "Confirm email",
		URL:       url,
		ExpiresIn: expiresIn,
		Footer:    "If you did not create an account, you can ignore this message.",
	})
}

// ResetPassword carries the password reset link.
func ResetPassword(product, url string, expiresIn time.Duration) templ.Component {
	return Action(ActionEmail{
		Product:   product,
		Heading:   "Reset your password",
		Intro:     "We received a request to reset the password of your " + product + " account.",
		Action:    "Choose a new password",
		URL:       url,
		ExpiresIn: expiresIn,
		Footer:    "If you did not ask for a reset, your password stays unchanged.",
	})
}

// Action renders a minimal inline-styled message with one button.
func Action(data ActionEmail) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := templ.EscapeString[string]
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body style="margin:0;padding:24px;background:#f5f5f5;font-family:Arial,sans-serif;color:#222">
<table role="presentation" width="100%%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#fff;border-radius:8px;padding:32px">
<tr><td><h1 style="font-size:20px;margin:0 0 16px">%s</h1>
<p style="font-size:15px;line-height:22px;margin:0 0 24px">%s</p>
<p style="margin:0 0 24px"><a href="%s" style="display:inline-block;padding:12px 20px;background:#2563eb;color:#fff;text-decoration:none;border-radius:6px">%s</a></p>
<p style="font-size:13px;color:#555;margin:0 0 8px">Or paste this link into your browser:<br>%s</p>
%s<p style="font-size:13px;color:#555;margin:16px 0 0">%s</p>
<p style="font-size:12px;color:#999;margin:24px 0 0">%s</p>
</td></tr></table></td></tr></table>
</body></html>`,
			e(data.Heading),
			e(data.Heading),
			e(data.Intro),
			e(data.URL),
			e(data.Action),
			e(data.URL),
			expiry(data.ExpiresIn),
			e(data.Footer),
			e(data.Product),
		)
		return err
	})
}

func expiry(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf(`<p style="font-size:13px;color:#555;margin:0">This link expires in %s.</p>`, templ.EscapeString(humanDuration(d)))
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 48*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%d days", d/(24*time.Hour))
	case d == 24*time.Hour:
		return "24 hours"
	case d >= 2*time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d == time.Hour:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", int(d.Round(time.Minute)/time.Minute))
	}
}
