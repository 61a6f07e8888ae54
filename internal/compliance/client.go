package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"server/config"
	"server/internal/catalog"
	"server/internal/logger"
	"server/internal/models"
)

// Client talks to the external compliance engine that owns all of the
// nondiscrimination arithmetic. This service never computes results
// itself.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

func NewClient(config config.Config) *Client {
	return &Client{
		baseURL: config.ComplianceAPIURL,
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
		log: logger.New("complianceClient"),
	}
}

// SubmitCensus posts the census file to the compliance engine and
// returns the normalized result object for the requested test.
func (c *Client) SubmitCensus(
	ctx context.Context,
	token string,
	def catalog.TestDefinition,
	planYear *int,
	fileName string,
	fileData []byte,
) (models.TestResult, error) {
	log := c.log.Function("SubmitCensus")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, log.Err("failed to create multipart file field", err)
	}
	if _, err := part.Write(fileData); err != nil {
		return nil, log.Err("failed to write multipart file data", err)
	}

	if err := writer.WriteField("selected_tests", def.Key); err != nil {
		return nil, log.Err("failed to write selected_tests field", err)
	}
	if planYear != nil {
		if err := writer.WriteField("plan_year", strconv.Itoa(*planYear)); err != nil {
			return nil, log.Err("failed to write plan_year field", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, log.Err("failed to finalize multipart body", err)
	}

	url := fmt.Sprintf("%s/upload-csv/%s", c.baseURL, def.Key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, log.Err("failed to build upload request", err, "url", url)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, log.Err("compliance API unreachable", err, "test", def.Key)
	}
	defer resp.Body.Close()

	payload, err := decodeBody(resp)
	if err != nil {
		return nil, log.Err("failed to decode compliance response", err, "test", def.Key)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, log.Error("compliance API rejected submission",
			"test", def.Key,
			"status", resp.StatusCode,
			"detail", errorDetail(payload))
	}

	result, err := NormalizeResult(payload, def)
	if err != nil {
		return nil, log.Err("unexpected compliance response shape", err, "test", def.Key)
	}

	return result, nil
}

type aiReviewRequest struct {
	TestType  string            `json:"testType"`
	TestData  models.TestResult `json:"testData"`
	Signature string            `json:"signature"`
}

type aiReviewResponse struct {
	Analysis string `json:"analysis"`
}

// AIReview requests the AI-generated corrective-action narrative for a
// completed test.
func (c *Client) AIReview(
	ctx context.Context,
	token string,
	testType string,
	testData models.TestResult,
	signature string,
) (string, error) {
	log := c.log.Function("AIReview")

	reqBody, err := json.Marshal(aiReviewRequest{
		TestType:  testType,
		TestData:  testData,
		Signature: signature,
	})
	if err != nil {
		return "", log.Err("failed to marshal ai review request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/ai-review", bytes.NewReader(reqBody))
	if err != nil {
		return "", log.Err("failed to build ai review request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", log.Err("ai review endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := decodeBody(resp)
		return "", log.Error("ai review request failed",
			"status", resp.StatusCode,
			"detail", errorDetail(payload))
	}

	var review aiReviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&review); err != nil {
		return "", log.Err("failed to decode ai review response", err)
	}
	if review.Analysis == "" {
		return "", log.ErrMsg("ai review response contained no analysis")
	}

	return review.Analysis, nil
}

type checkoutRequest struct {
	TestItems []models.CartItem `json:"testItems"`
	UserID    string            `json:"userId"`
}

type checkoutResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
}

// CreateCheckoutSession asks the backend to open a Stripe checkout
// session for the cart and returns the session id for the client-side
// redirect.
func (c *Client) CreateCheckoutSession(
	ctx context.Context,
	userID string,
	items []models.CartItem,
) (string, error) {
	log := c.log.Function("CreateCheckoutSession")

	reqBody, err := json.Marshal(checkoutRequest{TestItems: items, UserID: userID})
	if err != nil {
		return "", log.Err("failed to marshal checkout request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/create-checkout-session", bytes.NewReader(reqBody))
	if err != nil {
		return "", log.Err("failed to build checkout request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", log.Err("checkout endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := decodeBody(resp)
		return "", log.Error("checkout session request failed",
			"status", resp.StatusCode,
			"detail", errorDetail(payload))
	}

	var session checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", log.Err("failed to decode checkout response", err)
	}

	if session.ID != "" {
		return session.ID, nil
	}
	if session.SessionID != "" {
		return session.SessionID, nil
	}
	return "", log.ErrMsg("checkout response contained no session id")
}

func decodeBody(resp *http.Response) (map[string]any, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("non-JSON response (%d bytes): %w", len(data), err)
	}
	return payload, nil
}

func errorDetail(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if detail, ok := payload[key].(string); ok && detail != "" {
			return detail
		}
	}
	return ""
}
