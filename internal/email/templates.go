package email

import (
	"fmt"
	"html"
)

// MagicLink builds the sign-in email. ttlMinutes is shown to the reader.
func MagicLink(to, link string, ttlMinutes int) Message {
	link = html.EscapeString(link)
	return Message{
		To:       to,
		Subject:  "Your sign-in link",
		Category: CategoryMagicLink,
		HTML: fmt.Sprintf(
			`<p>Click the link below to sign in (expires in %d minutes):</p><p><a href="%s">%s</a></p>`,
			ttlMinutes, link, link,
		),
	}
}

// NewFollower builds the follow notification. The subject is plain text; the
// body escapes the username.
func NewFollower(to, username, profileURL string) Message {
	return Message{
		To:       to,
		Subject:  username + " started following you",
		Category: CategoryFollow,
		HTML: fmt.Sprintf(
			`<p><a href="%s">%s</a> is now following your pastes.</p>`,
			html.EscapeString(profileURL), html.EscapeString(username),
		),
	}
}
