package imap

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	orderdomain "sellerops-backend/internal/order/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"golang.org/x/oauth2"
)

// Service implements the MailProvider interface over plain IMAP for accounts
// that are not connected through Google. Message ids are mailbox UIDs.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) connect(creds orderdomain.Credential) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", creds.IMAPServer, creds.IMAPPort)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to IMAP server: %v", err)
	}

	if err := c.Login(creds.IMAPUsername, creds.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %v", err)
	}

	return c, nil
}

// ListMessageIDs searches INBOX for recent messages. IMAP SEARCH has no
// full-text query comparable to Gmail's, so the recency window is applied
// server-side and the keyword filtering is left to the classifier.
func (s *Service) ListMessageIDs(ctx context.Context, creds orderdomain.Credential, query string, maxResults int64, _ orderdomain.TokenUpdateFunc) ([]orderdomain.MessageRef, error) {
	c, err := s.connect(creds)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("unable to select INBOX: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = sinceFromQuery(query)

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %v", err)
	}

	// UIDs ascend with arrival order; keep the newest maxResults
	if maxResults > 0 && int64(len(uids)) > maxResults {
		uids = uids[int64(len(uids))-maxResults:]
	}

	refs := make([]orderdomain.MessageRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, orderdomain.MessageRef{ID: strconv.FormatUint(uint64(uid), 10)})
	}
	return refs, nil
}

// GetFullMessage fetches one message by UID and extracts its plain-text body
func (s *Service) GetFullMessage(ctx context.Context, creds orderdomain.Credential, id string, _ orderdomain.TokenUpdateFunc) (*orderdomain.EmailMessage, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid IMAP message id %q: %v", id, err)
	}

	c, err := s.connect(creds)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("unable to select INBOX: %v", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, []imap.FetchItem{section.FetchItem(), imap.FetchUid}, messages)
	}()

	msg := <-messages
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %v", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message %s not found", id)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %s has no body", id)
	}

	return parseMessage(id, body)
}

// RefreshCredential is part of the MailProvider interface; IMAP accounts
// authenticate with a stored password and have nothing to refresh.
func (s *Service) RefreshCredential(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return nil, fmt.Errorf("credential refresh not supported for IMAP accounts")
}

func parseMessage(id string, body io.Reader) (*orderdomain.EmailMessage, error) {
	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, fmt.Errorf("unable to parse message: %v", err)
	}

	email := &orderdomain.EmailMessage{ID: id}

	header := mr.Header
	email.Subject, _ = header.Subject()
	if date, err := header.Date(); err == nil {
		email.ReceivedAt = date
	} else {
		email.ReceivedAt = time.Now()
	}
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
		email.FromName = from[0].Name
		if email.FromName != "" {
			email.From = fmt.Sprintf("%s <%s>", email.FromName, from[0].Address)
		}
	}
	if to, err := header.AddressList("To"); err == nil && len(to) > 0 {
		email.To = to[0].Address
	}

	var plainBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if h, ok := part.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := h.ContentType()
			data, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			switch contentType {
			case "text/plain":
				if plainBody == "" {
					plainBody = string(data)
				}
			case "text/html":
				if htmlBody == "" {
					htmlBody = string(data)
				}
			}
		}
	}

	if plainBody == "" && htmlBody != "" {
		plainBody = stripHTML(htmlBody)
	}
	email.BodyText = plainBody
	email.BodyHTML = htmlBody
	return email, nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(html string) string {
	text := htmlTagRe.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return strings.Join(strings.Fields(text), " ")
}

// sinceFromQuery lifts the recency window out of a Gmail-style
// "newer_than:Nd" token so both providers honor the same bound.
func sinceFromQuery(query string) time.Time {
	days := 30
	for _, field := range strings.Fields(query) {
		if strings.HasPrefix(field, "newer_than:") && strings.HasSuffix(field, "d") {
			if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(field, "newer_than:"), "d")); err == nil && n > 0 {
				days = n
			}
		}
	}
	return time.Now().AddDate(0, 0, -days)
}
