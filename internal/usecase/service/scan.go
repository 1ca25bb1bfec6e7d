package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/usecase"

	"github.com/labstack/gommon/log"
)

// documentScanPrompt перечисляет восемь категорий утечек и требует от модели
// строго один JSON-объект фиксированной схемы
const documentScanPrompt = `You are a security scanner that reviews document content for leaked credentials before the document is stored.

Look for the following categories of leaks:
1. SSH_KEY - SSH private keys
2. AWS_CREDENTIALS - cloud provider credentials (access keys, secret keys)
3. API_KEY - API keys and bearer tokens
4. PASSWORD - plaintext passwords
5. DATABASE_CREDENTIALS - database connection strings with credentials
6. OAUTH_TOKEN - OAuth tokens and client secrets
7. CERTIFICATE - private certificates
8. OTHER - any other secrets

Reply with strictly one JSON object and nothing else, matching this schema:
{"isSafe": <boolean>, "warnings": [{"type": "<one of the 8 tags above>", "description": "<string>", "location": "<string>"}]}

If the document contains no leaked credentials, reply {"isSafe": true, "warnings": []}.`

type Scan struct {
	gatewayURL string
	apiKey     string
	model      string
}

func NewScan(gatewayURL, apiKey, model string) usecase.Scan {
	return &Scan{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
	}
}

func failOpenVerdict() *entity.ScanVerdict {
	return &entity.ScanVerdict{
		IsSafe:   true,
		Warnings: []entity.ScanWarning{},
	}
}

func isImageType(fileType string) bool {
	return strings.HasPrefix(fileType, "image/")
}

func (s *Scan) CheckDocument(content, fileName, fileType string) (*entity.ScanVerdict, error) {
	// Содержимое изображений не инспектируется: вердикт для них безопасен
	// по построению, запрос к модели не делается
	if isImageType(fileType) {
		return failOpenVerdict(), nil
	}

	var payload struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		Temperature int           `json:"temperature"`
	}
	payload.Model = s.model
	payload.Messages = []chatMessage{
		{Role: "system", Content: documentScanPrompt},
		{Role: "user", Content: fmt.Sprintf("File: %s\n\n%s", fileName, content)},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return failOpenVerdict(), err
	}
	req, err := http.NewRequest("POST", s.gatewayURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return failOpenVerdict(), err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	// Один запрос на скан: без ретраев и без клиентского таймаута
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return failOpenVerdict(), err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch {
		case resp.StatusCode == http.StatusPaymentRequired:
			return failOpenVerdict(), usecase.ErrQuotaExhausted
		case resp.StatusCode == http.StatusTooManyRequests && bytes.Contains(body, []byte("insufficient_quota")):
			return failOpenVerdict(), usecase.ErrQuotaExhausted
		case resp.StatusCode == http.StatusTooManyRequests:
			return failOpenVerdict(), usecase.ErrRateLimited
		}
		return failOpenVerdict(), fmt.Errorf("model gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return failOpenVerdict(), err
	}
	if len(completion.Choices) == 0 {
		return failOpenVerdict(), nil
	}

	verdict := extractVerdict(completion.Choices[0].Message.Content)
	if !verdict.IsSafe {
		log.Infof("модель пометила файл %q как небезопасный: %d предупреждений", fileName, len(verdict.Warnings))
	}
	return verdict, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// stripCodeFences убирает обрамление ```json ... ```, которым модели любят
// оборачивать ответ
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractVerdict вытаскивает вердикт из свободного текста ответа модели.
// Берётся жадный диапазон от первой '{' до последней '}'. Если диапазона нет
// или он не парсится, возвращается fail-open вердикт: сбой скана никогда
// не блокирует загрузку.
func extractVerdict(reply string) *entity.ScanVerdict {
	reply = stripCodeFences(reply)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return failOpenVerdict()
	}
	var verdict entity.ScanVerdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &verdict); err != nil {
		return failOpenVerdict()
	}
	if verdict.Warnings == nil {
		verdict.Warnings = []entity.ScanWarning{}
	}
	// Неизвестные теги приводим к OTHER, чтобы наружу уходил только
	// фиксированный набор из восьми значений
	for i := range verdict.Warnings {
		if !entity.KnownWarningType(verdict.Warnings[i].Type) {
			verdict.Warnings[i].Type = entity.WarningOther
		}
	}
	return &verdict
}
