// Package smtp is a thin wrapper around the outbound mail transport.
package smtp

import (
	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

type Client struct {
	dialer *gomail.Dialer
	from   string
}

func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one plain-text message.
func (c *Client) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := c.dialer.DialAndSend(m); err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	return nil
}
