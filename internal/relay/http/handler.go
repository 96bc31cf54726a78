package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localink/localink-backend/internal/logging"
	"github.com/localink/localink-backend/internal/metrics"
	"github.com/localink/localink-backend/internal/relay/domain"
	"github.com/localink/localink-backend/internal/relay/repository"
	"go.uber.org/zap"
)

const (
	BusinessPath = "/functions/v1/dashboard-webhook-proxy"
	ConsumerPath = "/functions/v1/consumer-dashboard"
)

// CORS headers sent on every relay response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// Variant binds one relay endpoint to its record type.
type Variant[T any] struct {
	Name          string
	Slot          *repository.Slot[T]
	Normalize     func(raw map[string]any, now time.Time) (T, domain.Outcome)
	Default       func(now time.Time) T
	StoredMessage string
	EmptyMessage  string
	StoreError    string
	FetchError    string
}

type Options struct {
	RequireAuth        bool
	RateLimitPerMinute int
	Now                func() time.Time
}

// Handler serves one relay endpoint. All methods share a single route and are
// dispatched on the request method.
type Handler[T any] struct {
	variant     Variant[T]
	requireAuth bool
	limiter     *clientLimiter
	now         func() time.Time
}

func NewHandler[T any](v Variant[T], opts Options) *Handler[T] {
	h := &Handler[T]{
		variant:     v,
		requireAuth: opts.RequireAuth,
		now:         opts.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if opts.RateLimitPerMinute > 0 {
		h.limiter = newClientLimiter(opts.RateLimitPerMinute)
	}
	return h
}

// NewBusinessHandler serves the business dashboard relay.
func NewBusinessHandler(store repository.Store, opts Options) *Handler[domain.Record] {
	return NewHandler(Variant[domain.Record]{
		Name:          "business",
		Slot:          repository.NewSlot[domain.Record](store, repository.SlotBusiness),
		Normalize:     domain.NormalizeBusiness,
		Default:       domain.DefaultRecord,
		StoredMessage: "Webhook data received and stored",
		EmptyMessage:  "No webhook data available yet - showing default content",
		StoreError:    "Failed to store webhook data",
		FetchError:    "Failed to fetch webhook data",
	}, opts)
}

// NewConsumerHandler serves the consumer dashboard relay.
func NewConsumerHandler(store repository.Store, opts Options) *Handler[domain.ConsumerRecord] {
	return NewHandler(Variant[domain.ConsumerRecord]{
		Name:          "consumer",
		Slot:          repository.NewSlot[domain.ConsumerRecord](store, repository.SlotConsumer),
		Normalize:     domain.NormalizeConsumer,
		Default:       domain.DefaultConsumerRecord,
		StoredMessage: "Consumer data received and stored",
		EmptyMessage:  "No consumer data available yet - showing default content",
		StoreError:    "Failed to store consumer data",
		FetchError:    "Failed to fetch consumer data",
	}, opts)
}

// Register mounts the handler for every method on path.
func (h *Handler[T]) Register(r gin.IRoutes, path string) {
	r.Any(path, h.Serve)
}

func (h *Handler[T]) Serve(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", AllowOrigin)
	c.Header("Access-Control-Allow-Headers", AllowHeaders)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
	case http.MethodPost:
		h.write(c)
	case http.MethodGet:
		h.read(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func (h *Handler[T]) write(c *gin.Context) {
	log := logging.FromContext(c.Request.Context()).With(zap.String("variant", h.variant.Name))

	if h.requireAuth && !hasBearerToken(c.GetHeader("Authorization")) {
		log.Warn("relay write rejected: missing authorization")
		metrics.IncRelayWrite(h.variant.Name, "unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		metrics.IncRelayWrite(h.variant.Name, "rate_limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests"})
		return
	}

	raw, err := decodeObject(c.Request.Body)
	if err != nil {
		log.Warn("relay write rejected: invalid payload", zap.Error(err))
		metrics.IncRelayWrite(h.variant.Name, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON payload", "details": err.Error()})
		return
	}

	now := h.now()
	rec, out := h.variant.Normalize(raw, now)

	if err := h.variant.Slot.Put(c.Request.Context(), rec, now); err != nil {
		log.Error("relay store failed", zap.Error(err))
		metrics.IncRelayWrite(h.variant.Name, "store_error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": h.variant.StoreError, "details": err.Error()})
		return
	}

	log.Info("relay record stored",
		zap.Bool("text_found", out.TextFound),
		zap.Bool("image_found", out.ImageFound),
	)
	metrics.IncRelayWrite(h.variant.Name, "ok")

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          h.variant.StoredMessage,
		"transformedData":  rec,
		"imageProcessed":   out.ImageFound,
		"textProcessed":    out.TextFound,
		"realContentFound": out.RealContentFound(),
	})
}

func (h *Handler[T]) read(c *gin.Context) {
	rec, updatedAt, err := h.variant.Slot.Get(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("relay load failed",
			zap.String("variant", h.variant.Name), zap.Error(err))
		metrics.IncRelayRead(h.variant.Name, "error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": h.variant.FetchError, "details": err.Error()})
		return
	}

	if rec == nil {
		metrics.IncRelayRead(h.variant.Name, "default")
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"data":       h.variant.Default(h.now()),
			"hasNewData": false,
			"message":    h.variant.EmptyMessage,
		})
		return
	}

	metrics.IncRelayRead(h.variant.Name, "ok")
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        rec,
		"hasNewData":  true,
		"lastUpdated": domain.FormatTimestamp(updatedAt),
	})
}

// hasBearerToken only checks presence; the token value is not verified.
func hasBearerToken(header string) bool {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	return ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != ""
}

func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", domain.ErrInvalidPayload)
	}
	return raw, nil
}
