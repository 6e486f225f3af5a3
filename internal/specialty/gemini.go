package specialty

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

const geminiPrompt = `Bạn là trợ lý phân loại triệu chứng của một phòng khám.
Dựa trên mô tả triệu chứng dưới đây, trả về DUY NHẤT tên chuyên khoa phù hợp
nhất, không giải thích gì thêm.

Các chuyên khoa hiện có: Tim mạch, Cơ xương khớp, Tai mũi họng, Da liễu,
Răng hàm mặt, Đa khoa.

Nếu không chắc chắn, trả về "Đa khoa".

Triệu chứng: %s`

// GeminiClassifier asks Gemini for the department matching a symptom text.
type GeminiClassifier struct {
	client  *genai.Client
	modelID string
}

func NewGeminiClassifier(ctx context.Context, apiKey, modelID string) (*GeminiClassifier, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("specialty: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("specialty: create gemini client: %w", err)
	}

	return &GeminiClassifier{
		client:  client,
		modelID: modelID,
	}, nil
}

func (c *GeminiClassifier) Classify(ctx context.Context, symptom string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(geminiPrompt, symptom)))
	if err != nil {
		return "", fmt.Errorf("specialty: gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("specialty: gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("specialty: gemini returned empty content")
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}

	return strings.TrimSpace(out.String()), nil
}

func (c *GeminiClassifier) Close() error {
	return c.client.Close()
}
