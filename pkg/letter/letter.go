// Package letter turns RFC 5322 message sources into post office sends.
package letter

import (
	"io"
	"strings"

	"github.com/jhillyerd/enmime/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

// stripTags removes all markup from HTML-only bodies.
var stripTags = bluemonday.StrictPolicy()

// Letter holds the parts of a parsed message the post office cares about.
type Letter struct {
	Sender string
	Title  string
	Body   string
}

// Read parses a message source.  The sender is the display name of the first From address,
// falling back to the bare address, then to the raw header.  The body is the plain text part, or
// the HTML part stripped of markup when no text part is present.
func Read(r io.Reader) (*Letter, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}
	for _, perr := range env.Errors {
		log.Debug().Str("module", "letter").Err(perr).Msg("Parse problem")
	}

	sender := env.GetHeader("From")
	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		if addrs[0].Name != "" {
			sender = addrs[0].Name
		} else {
			sender = addrs[0].Address
		}
	}

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body = stripTags.Sanitize(env.HTML)
	}

	return &Letter{
		Sender: sender,
		Title:  env.GetHeader("Subject"),
		Body:   strings.TrimRight(body, "\r\n"),
	}, nil
}
