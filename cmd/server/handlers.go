package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-training/discord-oauth/pkg/config"
	"github.com/go-training/discord-oauth/pkg/core"
	"github.com/go-training/discord-oauth/pkg/flow"

	sloggin "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// defaultOutcomeLimit bounds the /outcomes listing when no limit is given.
const defaultOutcomeLimit = 20

type server struct {
	cfg   config.Config
	flow  *flow.Flow
	audit core.AuditStore
}

// newRouter wires the gin engine: middleware, the OAuth callback, health,
// and the audit listing.
func newRouter(cfg config.Config, fl *flow.Flow, audit core.AuditStore, callbackPath string) *gin.Engine {
	s := &server{
		cfg:   cfg,
		flow:  fl,
		audit: audit,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sloggin.SetLogger())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	router.GET(callbackPath, s.handleCallback)
	router.GET("/healthz", s.handleHealthz)
	router.GET("/outcomes", s.handleOutcomes)

	return router
}

// handleCallback runs the authorization-code exchange flow and maps the
// outcome to the response contract.
func (s *server) handleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	out := s.flow.Run(ctx, c.Query("code"))
	s.recordOutcome(ctx, out)

	switch out.Kind {
	case flow.OutcomeRedirectToAuthorize:
		c.Redirect(http.StatusFound, out.AuthorizeURL)
	case flow.OutcomeConfigurationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(out.Kind),
			"message": out.Message,
		})
	case flow.OutcomeExchangeFailed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           string(out.Kind),
			"message":         out.Message,
			"upstream_status": out.UpstreamStatus,
			"upstream_body":   out.UpstreamBody,
			"retry":           out.AuthorizeURL,
		})
	case flow.OutcomeScopesMissing:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    string(out.Kind),
			"required": out.Required,
			"granted":  out.Granted,
			"missing":  out.Missing,
			"retry":    out.AuthorizeURL,
		})
	case flow.OutcomeSuccess:
		resp := gin.H{
			"access_token": out.Token.AccessToken,
			"token_type":   out.Token.TokenType,
			"expires_in":   out.Token.ExpiresIn,
			"scope":        out.Token.Scope,
			"continue":     s.cfg.SuccessRedirect,
		}
		if out.Token.RefreshToken != "" {
			resp["refresh_token"] = out.Token.RefreshToken
		}
		if out.User != nil {
			resp["user"] = out.User
		}
		c.JSON(http.StatusOK, resp)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(flow.OutcomeUnexpectedError),
			"message": out.Message,
			"retry":   out.AuthorizeURL,
		})
	}
}

func (s *server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleOutcomes lists recent flow audit records, newest first.
func (s *server) handleOutcomes(c *gin.Context) {
	limit := defaultOutcomeLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := s.audit.ListRecords(c.Request.Context(), limit)
	if err != nil {
		core.LoggerFromCtx(c.Request.Context()).Error("Failed to list flow records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list outcomes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": records})
}

// recordOutcome persists a non-sensitive audit record and annotates the
// active span. Failures are logged and never affect the response.
func (s *server) recordOutcome(ctx context.Context, out flow.Outcome) {
	record := &core.FlowRecord{
		ID:             core.RequestIDFromContext(ctx),
		Outcome:        string(out.Kind),
		UpstreamStatus: out.UpstreamStatus,
		RequiredScopes: out.Required,
		GrantedScopes:  out.Granted,
		MissingScopes:  out.Missing,
		CreatedAt:      time.Now().Unix(),
	}
	if out.Kind == flow.OutcomeSuccess && out.Token != nil {
		record.GrantedScopes = core.SplitScopes(out.Token.Scope)
		record.RequiredScopes = core.SplitScopes(s.cfg.RequiredScopes)
	}
	if out.User != nil {
		record.UserID = out.User.ID
		record.Username = out.User.Username
	}

	addOutcomeAttributes(ctx,
		attribute.String("flow.outcome", string(out.Kind)),
		attribute.Int("flow.upstream_status", out.UpstreamStatus),
	)

	if err := s.audit.SaveRecord(ctx, record); err != nil {
		core.LoggerFromCtx(ctx).Error("Failed to save flow record", "error", err)
	}
}
