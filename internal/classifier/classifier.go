package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rishee01/smartfix/internal/model"
)

// Prediction is the oracle's output: a category label and a confidence in
// [0,1].
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier is the category oracle. The rest of the system depends only on
// this shape, never on how the prediction is produced.
type Classifier interface {
	Classify(ctx context.Context, filename string, photo io.Reader) (*Prediction, error)
}

// Stub is a fake classifier for environments without an inference service.
// A filename containing a known category keyword forces that label at high
// confidence; anything else gets a random label with confidence in
// [0.70, 0.95).
type Stub struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStub(seed int64) *Stub {
	return &Stub{rng: rand.New(rand.NewSource(seed))}
}

func (s *Stub) Classify(ctx context.Context, filename string, photo io.Reader) (*Prediction, error) {
	lower := strings.ToLower(filename)
	for _, label := range model.Categories {
		if strings.Contains(lower, label) {
			return &Prediction{Label: label, Confidence: 0.95}, nil
		}
	}

	s.mu.Lock()
	label := model.Categories[s.rng.Intn(len(model.Categories))]
	confidence := 0.70 + s.rng.Float64()*0.25
	s.mu.Unlock()

	return &Prediction{
		Label:      label,
		Confidence: math.Round(confidence*100) / 100,
	}, nil
}

// HTTP delegates classification to an external inference service.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *HTTP) Classify(ctx context.Context, filename string, photo io.Reader) (*Prediction, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return nil, err
	}
	if photo != nil {
		if _, err := io.Copy(part, photo); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/infer", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}
