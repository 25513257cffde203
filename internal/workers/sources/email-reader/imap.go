package emailreader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Fetcher retrieves raw messages received since a point in time.
type Fetcher interface {
	Fetch(ctx context.Context, since time.Time, limit int) ([]RawMessage, error)
}

// IMAPFetcher reads a mailbox over implicit TLS without marking messages seen.
type IMAPFetcher struct {
	config *Config
}

func NewIMAPFetcher(cfg *Config) *IMAPFetcher {
	return &IMAPFetcher{config: cfg}
}

func (f *IMAPFetcher) Fetch(ctx context.Context, since time.Time, limit int) ([]RawMessage, error) {
	c, err := client.DialTLS(f.config.Address(), nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", f.config.Address(), err)
	}
	c.Timeout = f.config.Timeout
	defer c.Logout()

	// go-imap has no context support; closing the connection unblocks it.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Terminate()
		case <-stop:
		}
	}()

	if err := c.Login(f.config.Username, f.config.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select(f.config.Mailbox, true); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", f.config.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var out []RawMessage
	for msg := range messages {
		raw := RawMessage{UID: msg.Uid}
		if env := msg.Envelope; env != nil {
			raw.Subject = env.Subject
			raw.Date = env.Date
			if len(env.From) > 0 {
				raw.From = formatAddress(env.From[0])
			}
		}
		if body := msg.GetBody(section); body != nil {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, body); err == nil {
				raw.Body = buf.Bytes()
			}
		}
		out = append(out, raw)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	// Newest first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func formatAddress(a *imap.Address) string {
	addr := a.Address()
	if a.PersonalName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", a.PersonalName, addr)
}
