package kbs

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// mrenclave is the expected enclave measurement. It is sent in the body of
// each restore request; no remote attestation is performed, so it is never
// compared with a value reported by the enclave before the PIN is sent.
const mrenclave = "a4c7ba1e94445dabb6812a01113ad0dd" // placeholder measurement

// HTTPEnclaveClient talks to the KBS enclave's HTTP front door over the TLS
// configuration it was built with. It performs no noise or attestation
// handshake: the PIN travels in the JSON request body of a plain HTTPS
// request, and this client only shapes that request and its response.
type HTTPEnclaveClient struct {
	baseURL   string
	serviceID string
	client    *http.Client
}

// NewHTTPEnclaveClient creates a client for the enclave at baseURL,
// identified by serviceID, communicating over tlsConf.
func NewHTTPEnclaveClient(baseURL, serviceID string, tlsConf *tls.Config) *HTTPEnclaveClient {
	c := &http.Client{}
	if tlsConf != nil {
		c.Transport = &http.Transport{TLSClientConfig: tlsConf}
	}
	return &HTTPEnclaveClient{baseURL: baseURL, serviceID: serviceID, client: c}
}

type restoreRequest struct {
	Pin       string `json:"pin"`
	ServiceID string `json:"serviceId"`
	MREnclave string `json:"mrenclave"`
}

type restoreResponse struct {
	Status         string `json:"status"` // "ok" | "wrong_pin" | "no_data"
	MasterKey      string `json:"masterKey,omitempty"`
	TriesRemaining int    `json:"triesRemaining,omitempty"`
}

// RestoreMasterKey implements EnclaveClient.
func (c *HTTPEnclaveClient) RestoreMasterKey(ctx context.Context, creds Credentials, pin string) ([]byte, error) {
	body, err := json.Marshal(restoreRequest{Pin: pin, ServiceID: c.serviceID, MREnclave: mrenclave})
	if err != nil {
		return nil, fmt.Errorf("kbs: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/v1/backup/auth", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("kbs: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.Username, creds.Password)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kbs: request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kbs: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kbs: status %d: %s", resp.StatusCode, respBody)
	}

	var result restoreResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("kbs: unmarshal response: %w", err)
	}

	switch result.Status {
	case "ok":
		key, err := decodeMasterKey(result.MasterKey)
		if err != nil {
			return nil, err
		}
		return key, nil
	case "wrong_pin":
		return nil, PinError{TriesRemaining: result.TriesRemaining}
	case "no_data":
		return nil, NoDataError{}
	default:
		return nil, fmt.Errorf("kbs: unexpected status %q", result.Status)
	}
}

func decodeMasterKey(b64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("kbs: decode master key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("kbs: master key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
