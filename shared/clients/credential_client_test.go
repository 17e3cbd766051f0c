package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	userID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/credential", r.URL.Path)

		var req SignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, userID, req.UUID)
		assert.Nil(t, req.Company)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"signed-token"}}`))
	}))
	defer server.Close()

	client := NewCredentialClient(server.URL)
	token, err := client.Sign(SignRequest{UUID: userID})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestVerify(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/credential/verify", r.URL.Path)
		assert.Equal(t, "Bearer some-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"uuid":        userID,
				"company":     companyID,
				"email":       "user@example.com",
				"displayName": "User",
			},
		})
	}))
	defer server.Close()

	client := NewCredentialClient(server.URL)
	user, err := client.Verify("Bearer some-token")
	require.NoError(t, err)
	assert.Equal(t, userID, user.UUID)
	require.NotNil(t, user.Company)
	assert.Equal(t, companyID, *user.Company)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewCredentialClient(server.URL)
	user, err := client.Verify("Bearer broken")
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestAddFields(t *testing.T) {
	companyID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/credential/add-fields", r.URL.Path)
		assert.Equal(t, "Bearer old-token", r.Header.Get("Authorization"))

		var req AddFieldsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, companyID, req.Company)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"new-token"}}`))
	}))
	defer server.Close()

	client := NewCredentialClient(server.URL)
	token, err := client.AddFields("Bearer old-token", AddFieldsRequest{Company: companyID})
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestTokenClaims(t *testing.T) {
	userID := uuid.New()
	companyID := uuid.New()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uuid":    userID.String(),
		"company": companyID.String(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	user, err := TokenClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, user.UUID)
	require.NotNil(t, user.Company)
	assert.Equal(t, companyID, *user.Company)
}

func TestTokenClaimsWithoutCompany(t *testing.T) {
	userID := uuid.New()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uuid": userID.String(),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	user, err := TokenClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, user.UUID)
	assert.Nil(t, user.Company)
}

func TestTokenClaimsGarbage(t *testing.T) {
	_, err := TokenClaims("not.a.token")
	assert.Error(t, err)
}
