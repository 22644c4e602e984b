package email

import (
	"bytes"
	"html/template"
)

// resetEmailHTML is the fixed transactional template. The only variable is
// the reset link, injected twice: once behind the button and once as a
// copyable fallback.
const resetEmailHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Reset Your Password</title>
  </head>
  <body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f5f5f5;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
      <tr>
        <td align="center" style="padding: 40px 0;">
          <table role="presentation" style="width: 600px; border-collapse: collapse; background-color: #ffffff; border-radius: 8px;">
            <tr>
              <td style="padding: 40px 40px 20px 40px; text-align: center; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); border-radius: 8px 8px 0 0;">
                <h1 style="margin: 0; color: #ffffff; font-size: 28px; font-weight: 600;">Reset Your Password</h1>
              </td>
            </tr>
            <tr>
              <td style="padding: 40px;">
                <p style="margin: 0 0 20px 0; color: #333333; font-size: 16px; line-height: 24px;">Hello,</p>
                <p style="margin: 0 0 20px 0; color: #333333; font-size: 16px; line-height: 24px;">
                  We received a request to reset the password for your account. Click the button below to create a new password:
                </p>
                <table role="presentation" style="margin: 30px 0;">
                  <tr>
                    <td align="center">
                      <a href="{{.ResetLink}}" style="display: inline-block; padding: 16px 32px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600; font-size: 16px;">Reset Password</a>
                    </td>
                  </tr>
                </table>
                <p style="margin: 20px 0; color: #666666; font-size: 14px; line-height: 20px;">Or copy and paste this link into your browser:</p>
                <p style="margin: 0 0 20px 0; padding: 12px; background-color: #f5f5f5; border-radius: 4px; word-break: break-all; font-size: 12px; color: #666666;">{{.ResetLink}}</p>
                <p style="margin: 20px 0 0 0; color: #666666; font-size: 14px; line-height: 20px;">This link will expire in 60 minutes for security reasons.</p>
                <p style="margin: 20px 0 0 0; color: #666666; font-size: 14px; line-height: 20px;">If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

var resetTemplate = template.Must(template.New("reset").Parse(resetEmailHTML))

// RenderResetEmail fills the reset template with the link.
func RenderResetEmail(resetLink string) ([]byte, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct{ ResetLink string }{ResetLink: resetLink})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
