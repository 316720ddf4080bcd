package mailer

// linkData feeds both link-bearing templates.
type linkData struct {
	Username string
	Link     string
	AppName  string
}

const emailTemplates = `
{{define "verification"}}
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Confirm your email</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 12px;
            padding: 40px;
        }
        h1 {
            color: #1a1a1a;
            font-size: 24px;
            text-align: center;
        }
        .message {
            color: #666;
            font-size: 16px;
            text-align: center;
            margin-bottom: 30px;
        }
        .button-container {
            text-align: center;
            margin: 30px 0;
        }
        .button {
            display: inline-block;
            background-color: #4F46E5;
            color: #ffffff !important;
            text-decoration: none;
            padding: 16px 40px;
            border-radius: 8px;
            font-size: 16px;
            font-weight: 600;
        }
        .link-text {
            background-color: #F3F4F6;
            border-radius: 8px;
            padding: 15px;
            margin: 20px 0;
            word-break: break-all;
            font-size: 14px;
            color: #666;
        }
        .footer {
            text-align: center;
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            color: #999;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Confirm your email</h1>

        <p class="message">
            Hi {{.Username}}, thanks for signing up. Click the button below to
            confirm your email address and activate your account.
        </p>

        <div class="button-container">
            <a href="{{.Link}}" class="button">Confirm email</a>
        </div>

        <p style="text-align: center; color: #999; font-size: 14px;">
            Or copy this link:
        </p>
        <div class="link-text">
            {{.Link}}
        </div>

        <div class="footer">
            <p>If you did not create an account, you can safely ignore this message.</p>
            <p>&copy; {{.AppName}}</p>
        </div>
    </div>
</body>
</html>
{{end}}

{{define "password_reset"}}
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Reset your password</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 12px;
            padding: 40px;
        }
        h1 {
            color: #1a1a1a;
            font-size: 24px;
            text-align: center;
        }
        .message {
            color: #666;
            font-size: 16px;
            text-align: center;
            margin-bottom: 30px;
        }
        .button-container {
            text-align: center;
            margin: 30px 0;
        }
        .button {
            display: inline-block;
            background-color: #4F46E5;
            color: #ffffff !important;
            text-decoration: none;
            padding: 16px 40px;
            border-radius: 8px;
            font-size: 16px;
            font-weight: 600;
        }
        .link-text {
            background-color: #F3F4F6;
            border-radius: 8px;
            padding: 15px;
            margin: 20px 0;
            word-break: break-all;
            font-size: 14px;
            color: #666;
        }
        .warning {
            background-color: #FEF3C7;
            border-left: 4px solid #F59E0B;
            padding: 15px;
            margin-top: 30px;
            border-radius: 0 8px 8px 0;
        }
        .warning p {
            margin: 0;
            color: #92400E;
            font-size: 14px;
        }
        .footer {
            text-align: center;
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            color: #999;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Reset your password</h1>

        <p class="message">
            Hi {{.Username}}, we received a request to reset your password.
            Click the button below to choose a new one.
        </p>

        <div class="button-container">
            <a href="{{.Link}}" class="button">Reset password</a>
        </div>

        <p style="text-align: center; color: #999; font-size: 14px;">
            Or copy this link:
        </p>
        <div class="link-text">
            {{.Link}}
        </div>

        <div class="warning">
            <p>The link expires in one hour. If you did not request a reset, ignore this message.</p>
        </div>

        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
            <p>&copy; {{.AppName}}</p>
        </div>
    </div>
</body>
</html>
{{end}}
`
