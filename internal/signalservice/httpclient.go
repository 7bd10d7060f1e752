package signalservice

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// HTTPClient communicates with the Signal server REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewHTTPClient creates a new HTTP client for the Signal API. tlsConf and
// logger may both be nil, in which case defaults are used.
func NewHTTPClient(baseURL string, tlsConf *tls.Config, logger *log.Logger) *HTTPClient {
	client := &http.Client{}
	if tlsConf != nil {
		client.Transport = &http.Transport{TLSClientConfig: tlsConf}
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, auth *BasicAuth) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: read response: %w", err)
	}
	logf(c.logger, "http %s %s -> %d", method, path, resp.StatusCode)
	return respBody, resp.StatusCode, nil
}

// UploadPreKeys calls PUT /v2/keys?identity={aci|pni} to upload pre-keys.
func (c *HTTPClient) UploadPreKeys(ctx context.Context, identity string, keys *PreKeyUpload, auth BasicAuth) error {
	body, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("httpclient: marshal pre-keys: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPut, "/v2/keys?identity="+identity, body, &auth)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("httpclient: upload keys: status %d: %s", status, respBody)
	}
	return nil
}

// CreateVerificationSession calls POST /v1/verification/session to begin
// verifying ownership of a phone number.
func (c *HTTPClient) CreateVerificationSession(ctx context.Context, number string) (*VerificationSessionResponse, error) {
	body, err := json.Marshal(&VerificationSessionRequest{Number: number})
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal session request: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPost, "/v1/verification/session", body, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: create session: status %d: %s", status, respBody)
	}

	var result VerificationSessionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("httpclient: unmarshal session: %w", err)
	}
	return &result, nil
}

// UpdateSession calls PATCH /v1/verification/session/{id} to submit a CAPTCHA
// token or push challenge response.
func (c *HTTPClient) UpdateSession(ctx context.Context, sessionID string, req *UpdateSessionRequest) (*VerificationSessionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal update session: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPatch, "/v1/verification/session/"+sessionID, body, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: update session: status %d: %s", status, respBody)
	}

	var result VerificationSessionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("httpclient: unmarshal session: %w", err)
	}
	return &result, nil
}

// RequestVerificationCode calls POST /v1/verification/session/{id}/code to
// have the server send an SMS or voice verification code.
func (c *HTTPClient) RequestVerificationCode(ctx context.Context, sessionID, transport string) (*VerificationSessionResponse, error) {
	body, err := json.Marshal(&RequestVerificationCodeRequest{
		Transport: transport,
		Client:    "signal-go",
	})
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal code request: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPost, "/v1/verification/session/"+sessionID+"/code", body, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: request code: status %d: %s", status, respBody)
	}

	var result VerificationSessionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("httpclient: unmarshal session: %w", err)
	}
	return &result, nil
}

// SubmitVerificationCode calls PUT /v1/verification/session/{id}/code with the
// code the user received.
func (c *HTTPClient) SubmitVerificationCode(ctx context.Context, sessionID, code string) (*VerificationSessionResponse, error) {
	body, err := json.Marshal(&SubmitVerificationCodeRequest{Code: code})
	if err != nil {
		return nil, fmt.Errorf("httpclient: marshal code: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPut, "/v1/verification/session/"+sessionID+"/code", body, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: submit code: status %d: %s", status, respBody)
	}

	var result VerificationSessionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("httpclient: unmarshal session: %w", err)
	}
	return &result, nil
}

// LockedResponse is the JSON body of a 423 Locked response from
// POST /v1/registration, returned when the account carries a registration
// lock PIN the caller has not yet satisfied.
type LockedResponse struct {
	TimeRemainingSeconds int64  `json:"timeRemaining"`
	SVR2Username         string `json:"svr2Username"`
	SVR2Password         string `json:"svr2Password"`
}

// RegisterPrimaryDevice calls POST /v1/registration to create a new account
// after a verification session has been verified. A 423 response is
// unmarshaled into a *LockedResponse and returned with a nil error and a nil
// *PrimaryRegistrationResponse.
func (c *HTTPClient) RegisterPrimaryDevice(ctx context.Context, req *PrimaryRegistrationRequest, auth BasicAuth) (*PrimaryRegistrationResponse, *LockedResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("httpclient: marshal registration request: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPost, "/v1/registration", body, &auth)
	if err != nil {
		return nil, nil, err
	}
	if status == http.StatusLocked {
		var locked LockedResponse
		if err := json.Unmarshal(respBody, &locked); err != nil {
			return nil, nil, fmt.Errorf("httpclient: unmarshal locked response: %w", err)
		}
		return nil, &locked, nil
	}
	if status != http.StatusOK {
		return nil, nil, fmt.Errorf("httpclient: register: status %d: %s", status, respBody)
	}

	var result PrimaryRegistrationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, nil, fmt.Errorf("httpclient: unmarshal registration response: %w", err)
	}
	return &result, nil, nil
}

// SetAccountAttributes calls PUT /v1/accounts/attributes/ to resubmit account
// attributes, used to silently reactivate an account that already holds an
// ACI from a prior registration.
func (c *HTTPClient) SetAccountAttributes(ctx context.Context, attrs *AccountAttributes, auth BasicAuth) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("httpclient: marshal account attributes: %w", err)
	}

	respBody, status, err := c.do(ctx, http.MethodPut, "/v1/accounts/attributes/", body, &auth)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("httpclient: set account attributes: status %d: %s", status, respBody)
	}
	return nil
}
