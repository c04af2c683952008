// Package joinlink builds and parses the URLs customers reach a queue
// through. The admin dashboard renders the URL as a scannable code; the
// customer client decodes it and reads the queue id back out.
package joinlink

import (
	"fmt"
	"net/url"

	"queueflow/internal/core/domain"
)

// queryParam carries the queue id in a join link
const queryParam = "id"

// Build returns the customer join URL for a queue
func Build(clientBaseURL, queueID string) (string, error) {
	base, err := url.Parse(clientBaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid client base url", domain.ErrValidation)
	}
	base.Path = "/user"
	q := base.Query()
	q.Set(queryParam, queueID)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// Parse extracts the queue id from a scanned join link
func Parse(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: malformed join link", domain.ErrValidation)
	}
	queueID := parsed.Query().Get(queryParam)
	if queueID == "" {
		return "", fmt.Errorf("%w: join link carries no queue id", domain.ErrValidation)
	}
	return queueID, nil
}
