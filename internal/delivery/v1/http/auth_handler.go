package http

import (
	"net/http"

	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// CredentialsRequest — тело запросов регистрации и входа.
type CredentialsRequest struct {
	ID       string `json:"id" example:"user@example.com"`
	Password string `json:"password"`
	Role     string `json:"role" example:"customer"`
}

// register
//
//	@Summary		Регистрация пользователя
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Учётные данные"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/register [post]
func (a *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	req, err := parseCredentials(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.authUsecase.Register(r.Context(), req)
	if err != nil {
		a.logger.Warnf("register failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse(res.Message))
}

// login
//
//	@Summary		Вход пользователя
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Учётные данные"
//	@Success		200		{object}	MessageResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/login [post]
func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	req, err := parseCredentials(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := a.authUsecase.Login(r.Context(), req)
	if err != nil {
		a.logger.Warnf("login failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse(res.Message))
}

// parseCredentials читает id, password и role. Нестроковые значения считаются отсутствующими.
func parseCredentials(r *http.Request) (*usecase.CredentialsReq, error) {
	obj, err := decodeJSONObject(r, maxJSONBody)
	if err != nil {
		return nil, err
	}

	id, _ := stringField(obj, "id")
	password, _ := stringField(obj, "password")
	role, _ := stringField(obj, "role")

	return usecase.NewCredentialsReq(id, password, role), nil
}
