package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки с векторами
	ErrEmptyVectors      = fmt.Errorf("empty vectors")
	ErrDimensionMismatch = fmt.Errorf("feature dimension mismatch")
	ErrEmptyGallery      = fmt.Errorf("gallery is empty")
	ErrZeroVector        = fmt.Errorf("zero-magnitude vector")
	ErrImageSizeMismatch = fmt.Errorf("image size mismatch")

	// Ошибки обработки изображений
	ErrFeatureExtraction    = fmt.Errorf("Error extracting features from one or both images")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrImageDecode          = fmt.Errorf("cannot decode image")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrInvalidInput         = fmt.Errorf("Invalid input")
	ErrNoImages             = fmt.Errorf("No images provided")
	ErrNoFilePart           = fmt.Errorf("No file part")
	ErrNoSelectedFile       = fmt.Errorf("No selected file")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrMissingCredentials   = fmt.Errorf("Missing username, password, or role")
	ErrInvalidEmail         = fmt.Errorf("Invalid email format")
	ErrInvalidRole          = fmt.Errorf("Invalid role. Must be 'customer' or 'seller'")
	ErrUserAlreadyExists    = fmt.Errorf("username already exists")
	ErrInvalidCredentials   = fmt.Errorf("Invalid username, password, or role")
	ErrMissingArticleType   = fmt.Errorf("Missing 'articleType' in request body")
	ErrInvalidArticleType   = fmt.Errorf("Invalid articleType")
	ErrCredentialNotFound   = fmt.Errorf("credential not found")
	ErrChatServiceDisabled  = fmt.Errorf("chat service is not configured")
	ErrCatalogColumnMissing = fmt.Errorf("catalog column missing")

	// 404 Not Found
	ErrNoItemsFound = fmt.Errorf("No items found for the given article type.")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
