package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/muhammedb99/eBookLibraryService/util/httpx"
)

type httpSender struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTP(apiURL, apiKey, from string) Sender {
	return &httpSender{apiURL: apiURL, apiKey: apiKey, from: from, client: httpx.Client()}
}

func (s *httpSender) Send(ctx context.Context, m Mail) error {
	body := map[string]any{
		"from":    s.from,
		"to":      m.To,
		"subject": m.Subject,
		"html":    m.HTML,
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api send failed: %s", resp.Status)
	}
	return nil
}
