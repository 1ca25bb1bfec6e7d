package entity

// WarningType — тип утечки, обнаруженной моделью в содержимом документа
type WarningType string

const (
	WarningSSHKey              WarningType = "SSH_KEY"
	WarningAWSCredentials      WarningType = "AWS_CREDENTIALS"
	WarningAPIKey              WarningType = "API_KEY"
	WarningPassword            WarningType = "PASSWORD"
	WarningDatabaseCredentials WarningType = "DATABASE_CREDENTIALS"
	WarningOAuthToken          WarningType = "OAUTH_TOKEN"
	WarningCertificate         WarningType = "CERTIFICATE"
	WarningOther               WarningType = "OTHER"
)

// KnownWarningType проверяет, что тег входит в фиксированный набор из восьми значений
func KnownWarningType(t WarningType) bool {
	switch t {
	case WarningSSHKey, WarningAWSCredentials, WarningAPIKey, WarningPassword,
		WarningDatabaseCredentials, WarningOAuthToken, WarningCertificate, WarningOther:
		return true
	}
	return false
}

type ScanWarning struct {
	Type        WarningType `json:"type"`
	Description string      `json:"description"`
	Location    string      `json:"location,omitempty"`
}

// ScanVerdict — вердикт модели по одной попытке загрузки. Нигде не персистится.
type ScanVerdict struct {
	IsSafe   bool          `json:"isSafe"`
	Warnings []ScanWarning `json:"warnings"`
}

type ScanRequest struct {
	Content  string `json:"content"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}
