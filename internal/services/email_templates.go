package services

// InviteEmailData is rendered into inviteEmailTemplate
type InviteEmailData struct {
	InviterName string
	InviteLink  string
}

const inviteEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            margin: 0;
            padding: 0;
            background-color: #f7f4ef;
        }
        .container {
            max-width: 560px;
            margin: 40px auto;
            background: white;
            border-radius: 8px;
            overflow: hidden;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
        }
        .header {
            background: #b4533a;
            color: white;
            padding: 32px 30px;
            text-align: center;
        }
        .header h1 {
            margin: 0;
            font-size: 26px;
            font-weight: 600;
        }
        .content {
            padding: 32px 30px;
        }
        .content p {
            margin: 0 0 20px 0;
            font-size: 16px;
            color: #4a5568;
        }
        .button-container {
            text-align: center;
            margin: 28px 0;
        }
        .button {
            display: inline-block;
            background: #b4533a;
            color: white;
            padding: 14px 32px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 600;
        }
        .footer {
            padding: 20px 30px;
            font-size: 13px;
            color: #a0aec0;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>You're invited</h1>
        </div>
        <div class="content">
            <p>{{.InviterName}} invited you to share gift lists on Boone Gifts.</p>
            <div class="button-container">
                <a class="button" href="{{.InviteLink}}">Create your account</a>
            </div>
            <p>If the button does not work, paste this link into your browser:<br>{{.InviteLink}}</p>
        </div>
        <div class="footer">
            This invitation expires. If you were not expecting it, you can ignore this email.
        </div>
    </div>
</body>
</html>`
