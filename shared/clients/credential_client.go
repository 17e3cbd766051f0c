package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CurrentUser is the identity the credential service resolves a bearer token
// to. Company is nil until the user selects one; guards and the resolver
// always operate against the company embedded in the presented credential.
type CurrentUser struct {
	UUID        uuid.UUID  `json:"uuid"`
	Company     *uuid.UUID `json:"company"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

// SignRequest asks the credential service to mint a token for an identity.
type SignRequest struct {
	UUID    uuid.UUID  `json:"uuid"`
	Company *uuid.UUID `json:"company"`
}

// AddFieldsRequest reissues a credential with an updated company context.
type AddFieldsRequest struct {
	Company uuid.UUID `json:"company"`
}

type credentialEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token       string     `json:"token"`
		UUID        uuid.UUID  `json:"uuid"`
		Company     *uuid.UUID `json:"company"`
		Email       string     `json:"email"`
		DisplayName string     `json:"displayName"`
	} `json:"data"`
}

// CredentialClient handles communication with the external credential service
type CredentialClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCredentialClient creates a new credential service client
func NewCredentialClient(baseURL string) *CredentialClient {
	return &CredentialClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Sign mints a new credential for the given identity
func (cc *CredentialClient) Sign(req SignRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	resp, err := cc.httpClient.Post(
		fmt.Sprintf("%s/api/v1/credential", cc.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("credential service returned status: %d", resp.StatusCode)
	}

	var result credentialEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}

	return result.Data.Token, nil
}

// Verify validates a bearer credential and returns the identity it carries
func (cc *CredentialClient) Verify(authorization string) (*CurrentUser, error) {
	httpReq, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/v1/credential/verify", cc.baseURL), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", authorization)

	resp, err := cc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("credential service returned status: %d", resp.StatusCode)
	}

	var result credentialEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}

	return &CurrentUser{
		UUID:        result.Data.UUID,
		Company:     result.Data.Company,
		Email:       result.Data.Email,
		DisplayName: result.Data.DisplayName,
	}, nil
}

// AddFields reissues the presented credential with an updated company field
func (cc *CredentialClient) AddFields(authorization string, req AddFieldsRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodPatch,
		fmt.Sprintf("%s/api/v1/credential/add-fields", cc.baseURL),
		bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", authorization)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := cc.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("credential service returned status: %d", resp.StatusCode)
	}

	var result credentialEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}

	return result.Data.Token, nil
}

// TokenClaims reads the uuid and company claims out of a minted credential
// without verifying it. Verification stays with the credential service; this
// is only used to echo the context a fresh token carries.
func TokenClaims(token string) (*CurrentUser, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	user := &CurrentUser{}
	if raw, ok := claims["uuid"].(string); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid claim: %v", err)
		}
		user.UUID = id
	}
	if raw, ok := claims["company"].(string); ok && raw != "" {
		company, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid company claim: %v", err)
		}
		user.Company = &company
	}

	return user, nil
}

// Global credential client instance
var defaultClient *CredentialClient

// InitCredentialClient initializes the global credential client
func InitCredentialClient(baseURL string) {
	defaultClient = NewCredentialClient(baseURL)
}

// GetCredentialClient returns the global credential client
func GetCredentialClient() *CredentialClient {
	return defaultClient
}
