// Package aihttp holds the HTTP plumbing shared by the AI provider clients.
package aihttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// DescribePrompt asks a vision model for a short, filename-friendly description.
const DescribePrompt = `Analyze this image and provide a concise 5-8 word description focusing on:
1. Main subject (person, object, scene)
2. Art style (realistic, anime, abstract, fantasy, etc.)
3. Key visual elements (colors, mood, setting)

Format: [subject] [style] [key_elements]
Examples:
- "woman cyberpunk neon purple hair portrait"
- "dragon fantasy mountain castle sunset scene"
- "abstract geometric colorful swirl pattern"
- "anime girl school uniform pink hair"

Description:`

// maxErrorBody bounds how much of a failed response body is quoted in errors.
const maxErrorBody = 512

// PostJSON sends in as JSON to url and decodes a 200 response into out.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return ClassifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", models.ErrProviderUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", models.ErrInvalidResponse, err)
	}
	return nil
}

// ClassifyError maps transport-level errors to sentinel errors.
func ClassifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// ReadImage returns the file's base64 encoding and sniffed content type.
func ReadImage(path string) (encoded, contentType string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), http.DetectContentType(data), nil
}
