package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// Мок шлюза модели для локальной разработки. Ищет в содержимом документа
// типовые маркеры утечек и заворачивает JSON-вердикт в произвольный текст,
// чтобы прогнать путь извлечения вердикта из ответа модели.

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type warning struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

var markers = []struct {
	substring   string
	warningType string
	description string
}{
	{"PRIVATE KEY-----", "SSH_KEY", "Найден приватный ключ"},
	{"AKIA", "AWS_CREDENTIALS", "Найден ключ доступа AWS"},
	{"api_key=", "API_KEY", "Найден API-ключ"},
	{"password=", "PASSWORD", "Найден пароль в открытом виде"},
	{"postgres://", "DATABASE_CREDENTIALS", "Найдена строка подключения к базе данных"},
	{"client_secret=", "OAUTH_TOKEN", "Найден секрет OAuth-клиента"},
}

func handler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var content string
	for _, message := range req.Messages {
		if message.Role == "user" {
			content = message.Content
		}
	}

	var warnings []warning
	for _, marker := range markers {
		if strings.Contains(content, marker.substring) {
			warnings = append(warnings, warning{
				Type:        marker.warningType,
				Description: marker.description,
				Location:    marker.substring,
			})
		}
	}

	verdict := map[string]any{
		"isSafe":   len(warnings) == 0,
		"warnings": warnings,
	}
	if warnings == nil {
		verdict["warnings"] = []warning{}
	}
	verdictJSON, _ := json.Marshal(verdict)

	// Вердикт нарочно обернут в текст: настоящая модель отвечает не чистым JSON
	reply := fmt.Sprintf("Вот результат проверки документа:\n%s\nНадеюсь, это поможет.", verdictJSON)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": reply}},
		},
	})
}

func main() {
	http.HandleFunc("/v1/chat/completions", handler)
	log.Println("Mock model gateway is running on port 8081")
	log.Fatal(http.ListenAndServe(":8081", nil))
}
