package cli

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mschot/dbcalm-open-backend/internal/api/dto"
	"github.com/mschot/dbcalm-open-backend/internal/core/domain"
	"github.com/mschot/dbcalm-open-backend/pkg/config"
)

// tempClientLabel marks the throwaway client the cron commands create for a
// single API round trip.
const tempClientLabel = "temp-system-cron"

const processPollInterval = 2 * time.Second

// apiBaseURL derives the local API address from config. A bind address of
// 0.0.0.0 is not dialable, so it maps to loopback.
func apiBaseURL(cfg *config.Config) string {
	scheme := "http"
	if cfg.SSLCert != "" && cfg.SSLKey != "" {
		scheme = "https"
	}

	host := cfg.APIHost
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, host, cfg.APIPort)
}

// newAPIClient returns an HTTP client for talking to the local API. The
// server usually runs with a self-signed certificate, so verification is off.
func newAPIClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}

// ensureTempClient replaces any leftover temp client with a fresh one and
// returns its id and plain secret.
func ensureTempClient(ctx context.Context, services *Services) (string, string, error) {
	clients, err := services.ClientRepo.List(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to list clients: %w", err)
	}

	for _, client := range clients {
		if client.Label == tempClientLabel {
			if err := services.ClientRepo.Delete(ctx, client.ID); err != nil {
				return "", "", fmt.Errorf("failed to delete stale temp client: %w", err)
			}
		}
	}

	secret := uuid.New().String()
	hashedSecret, err := services.AuthService.HashPassword(secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash client secret: %w", err)
	}

	client := domain.NewClient(tempClientLabel, hashedSecret, []string{"all"})
	if err := services.ClientRepo.Create(ctx, client); err != nil {
		return "", "", fmt.Errorf("failed to create temp client: %w", err)
	}

	return client.ID, secret, nil
}

// deleteTempClient is best effort; a leftover temp client is replaced on the
// next run anyway.
func deleteTempClient(ctx context.Context, services *Services, clientID string) {
	if clientID == "" {
		return
	}
	if err := services.ClientRepo.Delete(ctx, clientID); err != nil {
		log.Printf("failed to delete temp client %s: %v", clientID, err)
	}
}

// fetchToken exchanges client credentials for a bearer token.
func fetchToken(httpClient *http.Client, baseURL, clientID, clientSecret string) (string, error) {
	body, err := json.Marshal(dto.TokenRequest{
		GrantType:    "client_credentials",
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Post(baseURL+"/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to authenticate: %s", readErrorMessage(resp))
	}

	var tokenResp dto.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	return tokenResp.AccessToken, nil
}

// postJSON sends an authenticated POST and decodes the accepted async
// response. Any non-2xx status becomes an error carrying the API's message.
func postJSON(httpClient *http.Client, baseURL, path, token string, payload interface{}) (*dto.AsyncResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed: %s", readErrorMessage(resp))
	}

	var asyncResp dto.AsyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&asyncResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &asyncResp, nil
}

// waitForProcessCompletion polls the status endpoint until the process
// reaches a terminal state or the timeout elapses.
func waitForProcessCompletion(httpClient *http.Client, baseURL, token, commandID string, timeout time.Duration) (*dto.ProcessResponse, error) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/status/"+commandID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to check process status: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			msg := readErrorMessage(resp)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to check process status: %s", msg)
		}

		var status dto.ProcessResponse
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode process status: %w", err)
		}

		switch status.Status {
		case string(domain.ProcessStatusSuccess):
			return &status, nil
		case string(domain.ProcessStatusFailed):
			errMsg := "unknown error"
			if status.Error != nil && *status.Error != "" {
				errMsg = *status.Error
			}
			return nil, fmt.Errorf("process failed: %s", errMsg)
		}

		time.Sleep(processPollInterval)
	}

	return nil, fmt.Errorf("process %s timed out after %s", commandID, timeout)
}

func readErrorMessage(resp *http.Response) string {
	var errResp dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	return resp.Status
}
