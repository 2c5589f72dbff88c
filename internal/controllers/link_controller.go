package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/services"
	"github.com/gin-gonic/gin"
)

// hostnameRegex в соответствии с `RFC 1123` за исключением - исключает корневые доменные имена (без зоны).
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)+([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

// reservedCodes совпадают с маршрутами роутера, такой алиас нельзя было бы открыть.
var reservedCodes = []string{"api", "expand", "ping", "metrics"} //nolint:gochecknoglobals

var errReservedAlias = errors.New("custom short URL is reserved, please choose another name")

type ShortURLController struct {
	linkService LinkResolver
	baseURL     *url.URL
}

func NewShortURLController(linkService LinkResolver, baseURL *url.URL) *ShortURLController {
	return &ShortURLController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

type shortenRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"custom_code"`
	ForceNew   bool   `json:"force_new"`
}

type shortenResponse struct {
	Result         string `json:"result"`
	Code           string `json:"code"`
	AlreadyExisted bool   `json:"already_existed"`
}

type expandRequest struct {
	ShortURL string `json:"short_url"`
}

type expandResponse struct {
	URL string `json:"url"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// Redirect GET /:code. 307 на оригинальный URL или 404.
func (s *ShortURLController) Redirect(ctx *gin.Context) {
	link, err := s.resolve(ctx, ctx.Param("code"))
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.String(status, msg)
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// Expand GET /expand/:code. Оригинальный URL текстом или 404.
func (s *ShortURLController) Expand(ctx *gin.Context) {
	link, err := s.resolve(ctx, ctx.Param("code"))
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.String(status, msg)
		return
	}

	ctx.String(http.StatusOK, link.OriginalURL)
}

// CreateShortURL POST /. Принимает html форму или plain запрос со ссылкой.
//
// Поля формы:
//   - url: ссылка для сокращения
//   - custom_short_url: пользовательский алиас
//   - new_short_url: любое непустое значение отключает поиск существующей ссылки
//   - short_url: короткая ссылка для разворачивания, используется если url пуст
//
// Запрос с Content-Type application/json обрабатывается как CreateShortURLJSON.
// Ответ plain текстом: 201 новая ссылка, 200 существующая, 409 алиас занят, 422 некорректный ввод.
func (s *ShortURLController) CreateShortURL(ctx *gin.Context) {
	if isJSONRequest(ctx) {
		s.CreateShortURLJSON(ctx)
		return
	}

	var params services.RegisterParams
	if isFormRequest(ctx) {
		params = services.RegisterParams{
			OriginalURL: ctx.PostForm("url"),
			CustomCode:  ctx.PostForm("custom_short_url"),
			ForceNew:    ctx.PostForm("new_short_url") != "",
		}
		if strings.TrimSpace(params.OriginalURL) == "" {
			s.expandForm(ctx, ctx.PostForm("short_url"))
			return
		}
	} else {
		body, readErr := io.ReadAll(ctx.Request.Body)
		if readErr != nil {
			_ = ctx.Error(fmt.Errorf("read body: %w", readErr))
			ctx.String(http.StatusInternalServerError, ErrInternal.Error())
			return
		}
		params.OriginalURL = string(body)
	}

	res, err := s.register(ctx, params)
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.String(status, msg)
		return
	}

	ctx.String(createdStatus(res), s.getShortURL(ctx.Request, res.Link.Code))
}

func (s *ShortURLController) expandForm(ctx *gin.Context, shortURL string) {
	if strings.TrimSpace(shortURL) == "" {
		ctx.String(http.StatusUnprocessableEntity, "url or short_url is required")
		return
	}
	link, err := s.resolve(ctx, shortURL)
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.String(status, msg)
		return
	}
	ctx.String(http.StatusOK, link.OriginalURL)
}

// CreateShortURLJSON POST /api/shorten. Принимает shortenRequest, статусы как у CreateShortURL.
func (s *ShortURLController) CreateShortURLJSON(ctx *gin.Context) {
	var req shortenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorJSON{Error: "invalid json"})
		return
	}

	res, err := s.register(ctx, services.RegisterParams{
		OriginalURL: req.URL,
		CustomCode:  req.CustomCode,
		ForceNew:    req.ForceNew,
	})
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.JSON(status, errorJSON{Error: msg})
		return
	}

	ctx.JSON(createdStatus(res), shortenResponse{
		Result:         s.getShortURL(ctx.Request, res.Link.Code),
		Code:           res.Link.Code,
		AlreadyExisted: res.AlreadyExisted,
	})
}

// ExpandJSON POST /api/expand. Принимает expandRequest с кодом или короткой ссылкой.
func (s *ShortURLController) ExpandJSON(ctx *gin.Context) {
	var req expandRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorJSON{Error: "invalid json"})
		return
	}

	link, err := s.resolve(ctx, req.ShortURL)
	if err != nil {
		status, msg := s.handleError(ctx, err)
		ctx.JSON(status, errorJSON{Error: msg})
		return
	}
	ctx.JSON(http.StatusOK, expandResponse{URL: link.OriginalURL})
}

// register валидирует ввод и вызывает сервис.
func (s *ShortURLController) register(
	ctx *gin.Context,
	params services.RegisterParams,
) (*services.RegisterResult, error) {
	// Сохраняется исходная строка, validateURL только проверяет ее.
	params.OriginalURL = strings.TrimSpace(params.OriginalURL)
	if _, parseErr := validateURL(params.OriginalURL); parseErr != nil {
		return nil, &validationError{err: parseErr}
	}

	params.CustomCode = strings.TrimSpace(params.CustomCode)
	if slices.Contains(reservedCodes, strings.ToLower(params.CustomCode)) {
		return nil, &validationError{err: errReservedAlias}
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()
	return s.linkService.Register(reqCtx, params) //nolint:wrapcheck
}

func (s *ShortURLController) resolve(ctx *gin.Context, input string) (*models.Link, error) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()
	return s.linkService.Resolve(reqCtx, input) //nolint:wrapcheck
}

// handleError статус и текст ответа. Внутренние ошибки попадают в лог через ctx.Error.
func (s *ShortURLController) handleError(ctx *gin.Context, err error) (int, string) {
	var vErr *validationError
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity, vErr.Error()
	}
	status, msg := errorResponse(err)
	if status == http.StatusInternalServerError {
		_ = ctx.Error(err)
	}
	return status, msg
}

// getShortURL вспомогательный метод который создает короткую ссылку.
func (s *ShortURLController) getShortURL(r *http.Request, code string) string {
	var scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if s.baseURL == nil {
		return fmt.Sprintf("%s://%s/%s", scheme, r.Host, code)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, code)
}

func createdStatus(res *services.RegisterResult) int {
	if res.AlreadyExisted {
		return http.StatusOK
	}
	return http.StatusCreated
}

type validationError struct {
	err error
}

func (v *validationError) Error() string { return v.err.Error() }
func (v *validationError) Unwrap() error { return v.err }

// validateURL проверяет, является ли строка корректным URL.
func validateURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)

	if err != nil {
		return nil, errors.New("invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New("URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return nil, errors.New("URL must have a host")
	}

	if parsedURL.Hostname() != "localhost" && !hostnameRegex.MatchString(parsedURL.Hostname()) {
		return nil, errors.New("invalid hostname")
	}

	return parsedURL, nil
}
