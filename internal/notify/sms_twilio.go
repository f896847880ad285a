package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OforTech-LLC/Leads-Funnel-sub012/internal/pkg/httpretry"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioSender sends SMS notifications through the Twilio Messages API.
type TwilioSender struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient httpretry.HTTPDoer
}

// NewTwilioSender creates a Twilio SMS sender. from is the sending phone
// number or messaging-service short code.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		baseURL:    twilioBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 15 * time.Second,
		}, 3),
	}
}

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SendSMS posts one message to the Twilio Messages endpoint and returns the
// message SID.
func (t *TwilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	// Twilio uses Basic Auth with the account SID as username
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var msg twilioMessageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return "", fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio API error (status %d, code %d): %s", resp.StatusCode, msg.Code, msg.Message)
	}
	return msg.SID, nil
}
