package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mutasiku/internal/pipeline"
)

// maxPageSize is the Gmail API's cap on messages.list page size.
const maxPageSize = 500

// Client wraps the Gmail API for the account being watched. All calls act on
// the authorized user ("me").
type Client struct {
	svc *gmail.Service
	log zerolog.Logger
}

var _ pipeline.MailSource = (*Client)(nil)

// NewClient creates a Gmail client from a token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource, log zerolog.Logger) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("NewClient: gmail service: %w", err)
	}
	return &Client{svc: svc, log: log}, nil
}

// ResolveLabelID finds the label id for a human-readable label name. Label
// names are matched case-insensitively.
func (c *Client) ResolveLabelID(ctx context.Context, name string) (string, error) {
	resp, err := c.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("ResolveLabelID: list labels: %w", err)
	}
	for _, label := range resp.Labels {
		if strings.EqualFold(label.Name, name) {
			return label.Id, nil
		}
	}
	return "", fmt.Errorf("ResolveLabelID: label %q not found", name)
}

// ListMessageIDs returns up to max message ids carrying the label, newest
// first, following page tokens as needed.
func (c *Client) ListMessageIDs(ctx context.Context, labelID string, max int64) ([]string, error) {
	if max <= 0 {
		max = 100
	}

	var ids []string
	pageToken := ""
	for int64(len(ids)) < max {
		call := c.svc.Users.Messages.List("me").Context(ctx)
		if labelID != "" {
			call = call.LabelIds(labelID)
		}
		pageSize := max - int64(len(ids))
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		call = call.MaxResults(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("ListMessageIDs: list page: %w", err)
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	if int64(len(ids)) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// FetchMessage downloads one message in full and decodes its subject, HTML
// and plain-text bodies.
func (c *Client) FetchMessage(ctx context.Context, id string) (*pipeline.Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("FetchMessage: get %s: %w", id, err)
	}
	return decodeMessage(msg), nil
}

// decodeMessage maps a Gmail API message onto the pipeline's message type.
// Decoding problems degrade to empty bodies; the extractor copes with those.
func decodeMessage(msg *gmail.Message) *pipeline.Message {
	out := &pipeline.Message{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}
	if msg.Payload != nil {
		out.Subject = header(msg.Payload, "Subject")
		extractBodies(msg.Payload, &out.HTML, &out.PlainText)
	}
	if raw, err := json.Marshal(msg); err == nil {
		out.Raw = raw
	}
	return out
}

// header returns the named header value from a message part.
func header(p *gmail.MessagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBodies walks the MIME part tree depth-first and keeps the first
// text/html and text/plain bodies it finds.
func extractBodies(p *gmail.MessagePart, html, plain *string) {
	if p == nil {
		return
	}
	if p.Body != nil && p.Body.Data != "" {
		switch p.MimeType {
		case "text/html":
			if *html == "" {
				*html = decodeBody(p.Body.Data)
			}
		case "text/plain":
			if *plain == "" {
				*plain = decodeBody(p.Body.Data)
			}
		}
	}
	for _, part := range p.Parts {
		extractBodies(part, html, plain)
	}
}

// decodeBody decodes Gmail's base64url body data. Payloads arrive both with
// and without padding.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
