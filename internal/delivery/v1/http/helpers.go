package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/goccy/go-json"
)

// ErrorResponse — тело ответа с ошибкой: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse — тело ответа с сообщением: {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Message: message}
}

// badRequestErrors отдают клиенту текст самой ошибки-сентинела.
var badRequestErrors = []error{
	e.ErrInvalidInput,
	e.ErrNoImages,
	e.ErrNoFilePart,
	e.ErrNoSelectedFile,
	e.ErrMissingCredentials,
	e.ErrInvalidEmail,
	e.ErrInvalidRole,
	e.ErrInvalidCredentials,
	e.ErrMissingArticleType,
	e.ErrInvalidArticleType,
	e.ErrFileTooLarge,
}

// ToHTTPResponse сопоставляет ошибку статусу и тексту ответа.
// Для 404 текст отдаётся в поле message, для остальных кодов в поле error.
// Неизвестные ошибки отдаются как 500 с исходным текстом.
func ToHTTPResponse(err error) (int, string) {
	var conflict *usecase.ConflictError
	if errors.As(err, &conflict) {
		return http.StatusBadRequest, conflict.Error()
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrNoItemsFound):
		return http.StatusNotFound, e.ErrNoItemsFound.Error()
	case errors.Is(err, e.ErrFeatureExtraction):
		return http.StatusInternalServerError, e.ErrFeatureExtraction.Error()
	case errors.Is(err, e.ErrChatServiceDisabled):
		return http.StatusServiceUnavailable, e.ErrChatServiceDisabled.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	if code == http.StatusNotFound {
		WriteSuccess(w, code, NewMessageResponse(msg))
		return
	}
	WriteSuccess(w, code, NewErrorResponse(msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSONObject читает тело как непустой JSON-объект.
func decodeJSONObject(r *http.Request, maxBytes int64) (map[string]json.RawMessage, error) {
	obj, err := decodeJSONBody(r, maxBytes)
	if err != nil || len(obj) == 0 {
		return nil, e.ErrInvalidInput
	}
	return obj, nil
}

// decodeJSONBody читает тело как JSON-объект, пустой объект допустим.
func decodeJSONBody(r *http.Request, maxBytes int64) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil || int64(len(body)) > maxBytes {
		return nil, e.ErrInvalidInput
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil || obj == nil {
		return nil, e.ErrInvalidInput
	}
	return obj, nil
}

// stringField возвращает строковое поле объекта. Второй результат ложен, если поля нет,
// оно null или не является строкой.
func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", false
	}
	return *s, true
}

// parseMultipart разбирает multipart-форму. Превышение лимита тела возвращается как
// ErrFileTooLarge, прочие ошибки разбора не фатальны: вызывающий код проверяет наличие
// нужных полей и сам выбирает ответ.
func parseMultipart(r *http.Request, maxMemory int64) error {
	if r.MultipartForm != nil {
		return nil
	}

	err := r.ParseMultipartForm(maxMemory)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return e.Wrap("multipart", e.ErrFileTooLarge)
	}
	return nil
}

// formFile возвращает заголовок файла поля или nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func readUpload(field string, fh *multipart.FileHeader, maxSize int64) (*usecase.UploadImage, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, e.Wrap(field, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, e.Wrap(field, err)
	}
	if int64(len(data)) > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return usecase.NewUploadImage(data, mimeType, int64(len(data)), field), nil
}
