// Package web provides HTTP handlers and REST API endpoints for the assistant.
package web

import (
	"log/slog"
	"net/http"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/registry"
	"github.com/dukex/operion-assistant/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	sessionService *services.Session
	validator      *validator.Validate
	registry       *registry.Registry
	logger         *slog.Logger
}

func NewAPIHandlers(
	sessionService *services.Session,
	validator *validator.Validate,
	registry *registry.Registry,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		sessionService: sessionService,
		validator:      validator,
		registry:       registry,
		logger:         logger.With("module", "web"),
	}
}

// Register mounts every assistant route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	s := router.Group("/agents/:agentId/sessions/:sessionId")
	s.Post("/messages", h.SendMessage)
	s.Get("/", h.GetSession)
	s.Delete("/", h.ResetSession)

	n := router.Group("/node-types")
	n.Get("/", h.ListNodeTypes)
	n.Get("/:type", h.GetNodeType)

	router.Get("/health", h.HealthCheck)
}

func sessionKey(c fiber.Ctx) models.SessionKey {
	return models.SessionKey{AgentID: c.Params("agentId"), SessionID: c.Params("sessionId")}
}

func (h *APIHandlers) SendMessage(c fiber.Ctx) error {
	key := sessionKey(c)

	var req SendMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.sessionService.SendMessage(c.Context(), models.Request{
		AgentID:      key.AgentID,
		SessionID:    key.SessionID,
		AgentContext: toAgentContext(req.AgentContext),
		UserText:     req.Message,
	})
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(MessageResponse{
		AgentID:   key.AgentID,
		SessionID: key.SessionID,
		Text:      resp.Text(),
		Response:  resp,
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.sessionService.GetSession(c.Context(), sessionKey(c))
	if err != nil {
		return h.serviceError(c, err)
	}

	var missing []string
	for _, m := range h.registry.MissingParameters(session.PendingGraph) {
		missing = append(missing, m.Key())
	}

	var complete []string

	if session.PendingGraph != nil {
		for _, node := range session.PendingGraph.Actions() {
			if h.registry.IsComplete(node) {
				complete = append(complete, node.ID)
			}
		}
	}

	return c.JSON(SessionResponse{
		AgentID:      session.Key.AgentID,
		SessionID:    session.Key.SessionID,
		State:        session.State,
		Turns:        session.Turns,
		Scratchpad:   session.Scratchpad,
		PendingGraph: session.PendingGraph,
		Missing:      missing,
		Complete:     complete,
		UpdatedAt:    session.UpdatedAt,
	})
}

func (h *APIHandlers) ResetSession(c fiber.Ctx) error {
	err := h.sessionService.ResetSession(c.Context(), sessionKey(c))
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ListNodeTypes(c fiber.Ctx) error {
	specs := h.sessionService.ListNodeTypes()

	nodeTypes := make([]NodeTypeResponse, 0, len(specs))
	for _, spec := range specs {
		nodeTypes = append(nodeTypes, toNodeTypeResponse(spec, nil))
	}

	return c.JSON(fiber.Map{
		"node_types":  nodeTypes,
		"total_count": len(nodeTypes),
	})
}

func (h *APIHandlers) GetNodeType(c fiber.Ctx) error {
	spec, schema, err := h.sessionService.GetNodeType(c.Params("type"))
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(toNodeTypeResponse(spec, schema))
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	persistenceCheck, perOk := h.sessionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Operion Assistant is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && perOk {
		status = "healthy"
		message = "Operion Assistant is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"persistence": persistenceCheck,
		},
	})
}

func (h *APIHandlers) serviceError(c fiber.Ctx, err error) error {
	if !services.IsValidationError(err) && !services.IsNotFoundError(err) {
		h.logger.ErrorContext(c.Context(), "Request failed", "path", c.Path(), "error", err)
	}

	return handleServiceError(c, err)
}
