package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	orderdomain "sellerops-backend/internal/order/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = orderdomain.TokenUpdateFunc

// Service implements the MailProvider interface against the Gmail API
type Service struct {
	clientID     string
	clientSecret string
}

// notifyTokenSource wraps an oauth2 TokenSource and invokes the callback
// whenever the access token changes, so rotated tokens get persisted.
type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// getGmailService creates a Gmail client for the account's credentials
func (s *Service) getGmailService(ctx context.Context, creds orderdomain.Credential, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       creds.Expiry,
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// ListMessageIDs returns lightweight refs for messages matching the query,
// capped at maxResults. Only ids come back from listing; full content is
// fetched per message after the caller's pre-checks.
func (s *Service) ListMessageIDs(ctx context.Context, creds orderdomain.Credential, query string, maxResults int64, onTokenRefresh TokenUpdateFunc) ([]orderdomain.MessageRef, error) {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	if maxResults <= 0 {
		maxResults = 50
	}
	if maxResults > 500 {
		maxResults = 500 // Gmail API maximum
	}

	listQuery := srv.Users.Messages.List("me").MaxResults(maxResults)
	if query != "" {
		listQuery = listQuery.Q(query)
	}

	resp, err := listQuery.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %v", err)
	}

	refs := make([]orderdomain.MessageRef, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		refs = append(refs, orderdomain.MessageRef{ID: msg.Id, ThreadID: msg.ThreadId})
	}
	return refs, nil
}

// GetFullMessage retrieves one message with decoded body text
func (s *Service) GetFullMessage(ctx context.Context, creds orderdomain.Credential, id string, onTokenRefresh TokenUpdateFunc) (*orderdomain.EmailMessage, error) {
	srv, err := s.getGmailService(ctx, creds, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	return convertGmailMessage(msg), nil
}

// RefreshCredential exchanges a refresh token for a fresh access token
func (s *Service) RefreshCredential(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	source := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("unable to refresh credential: %v", err)
	}
	return token, nil
}

// Helper functions

func convertGmailMessage(msg *gmail.Message) *orderdomain.EmailMessage {
	from := getHeader(msg.Payload.Headers, "From")
	fromName := ""
	// Extract name from "Name <email@example.com>" format
	if idx := strings.Index(from, "<"); idx > 0 {
		fromName = strings.Trim(strings.TrimSpace(from[:idx]), `"`)
	}

	bodyHTML, bodyText := getEmailBody(msg.Payload)
	if bodyText == "" && bodyHTML != "" {
		bodyText = stripHTML(bodyHTML)
	}

	return &orderdomain.EmailMessage{
		ID:         msg.Id,
		Subject:    getHeader(msg.Payload.Headers, "Subject"),
		From:       from,
		FromName:   fromName,
		To:         getHeader(msg.Payload.Headers, "To"),
		Snippet:    msg.Snippet,
		BodyText:   bodyText,
		BodyHTML:   bodyHTML,
		ReceivedAt: time.Unix(msg.InternalDate/1000, 0),
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// getEmailBody walks the MIME tree collecting the html and plain variants
func getEmailBody(payload *gmail.MessagePart) (html string, plain string) {
	// If the payload itself is the body
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			if payload.MimeType == "text/html" {
				return string(data), ""
			}
			return "", string(data)
		}
	}

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.MimeType == "text/html" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						html = string(data)
					}
				}
			} else if part.MimeType == "text/plain" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						plain = string(data)
					}
				}
			}

			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}

	findBody(payload.Parts)
	return html, plain
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(html string) string {
	text := htmlTagRe.ReplaceAllString(html, " ")
	// Unescape HTML entities (basic ones)
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")

	// Collapse multiple spaces into one
	return strings.Join(strings.Fields(text), " ")
}
