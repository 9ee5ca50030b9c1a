package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sol1corejz/scoring-api/internal/auth"
	"github.com/sol1corejz/scoring-api/internal/models"
	"github.com/sol1corejz/scoring-api/internal/scoring"
)

// AdminScore - скор, который всегда получает администратор.
const AdminScore = 42

// RequestContext - сведения о запросе, которые обработчики дописывают для лога.
type RequestContext map[string]any

type methodFunc func(ctx context.Context, req *models.MethodRequest, rctx RequestContext) (any, int, error)

// MethodHandler разбирает конверт запроса, проверяет токен и вызывает метод API.
type MethodHandler struct {
	store   scoring.Store
	now     func() time.Time
	methods map[string]methodFunc
}

func NewMethodHandler(store scoring.Store) *MethodHandler {
	h := &MethodHandler{store: store, now: time.Now}
	h.methods = map[string]methodFunc{
		models.MethodOnlineScore:      h.onlineScore,
		models.MethodClientsInterests: h.clientsInterests,
	}
	return h
}

// Handle возвращает ответ и код. Ошибка означает непредвиденный сбой
// (например, недоступное хранилище) и превращается в 500 выше по стеку.
func (h *MethodHandler) Handle(ctx context.Context, body map[string]any, rctx RequestContext) (any, int, error) {
	req, errs := models.ParseMethodRequest(body)
	if errs != nil {
		return strings.Join(errs, ","), http.StatusUnprocessableEntity, nil
	}
	if !auth.CheckAuth(req, h.now()) {
		return "", http.StatusForbidden, nil
	}

	method, ok := h.methods[req.Method]
	if !ok {
		return "", http.StatusNotFound, nil
	}
	return method(ctx, req, rctx)
}

func (h *MethodHandler) onlineScore(ctx context.Context, req *models.MethodRequest, rctx RequestContext) (any, int, error) {
	args, errs := models.ParseOnlineScoreRequest(req.Arguments)
	if errs != nil {
		return strings.Join(errs, ","), http.StatusUnprocessableEntity, nil
	}
	rctx["has"] = args.Has

	if req.IsAdmin() {
		return models.ScoreResponse{Score: AdminScore}, http.StatusOK, nil
	}
	return models.ScoreResponse{Score: scoring.GetScore(ctx, h.store, args)}, http.StatusOK, nil
}

func (h *MethodHandler) clientsInterests(ctx context.Context, req *models.MethodRequest, rctx RequestContext) (any, int, error) {
	args, errs := models.ParseClientsInterestsRequest(req.Arguments)
	if errs != nil {
		return strings.Join(errs, ","), http.StatusUnprocessableEntity, nil
	}
	rctx["nclients"] = len(args.ClientIDs)

	resp := make(models.InterestsResponse, len(args.ClientIDs))
	for _, cid := range args.ClientIDs {
		interests, err := scoring.GetInterests(ctx, h.store, cid)
		if err != nil {
			return nil, 0, fmt.Errorf("interests of client %d: %w", cid, err)
		}
		resp[strconv.Itoa(cid)] = interests
	}
	return resp, http.StatusOK, nil
}
