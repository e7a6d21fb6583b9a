package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
	"github.com/dukex/operion-assistant/pkg/registry"
)

// MaxMessageLength bounds a single user turn.
const MaxMessageLength = 4000

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Processor runs one user turn.
type Processor interface {
	Process(ctx context.Context, req models.Request) models.Response
}

type Session struct {
	processor   Processor
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewSession creates a new session service.
func NewSession(processor Processor, persistence persistence.Persistence, registry *registry.Registry) *Session {
	return &Session{
		processor:   processor,
		persistence: persistence,
		registry:    registry,
	}
}

// HealthCheck checks the health of the persistence layer and the node type catalog.
func (s *Session) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	if message, ok := s.registry.HealthCheck(); !ok {
		return message, false
	}

	return "Persistence layer is healthy", true
}

// SendMessage validates req and hands it to the processor.
func (s *Session) SendMessage(ctx context.Context, req models.Request) (models.Response, error) {
	req.UserText = strings.TrimSpace(req.UserText)

	err := validateKey("SendMessage", req.Key())
	if err != nil {
		return models.Response{}, err
	}

	if req.UserText == "" {
		return models.Response{}, NewValidationError("SendMessage", "empty_message", "message cannot be empty", ErrEmptyMessage)
	}

	if len(req.UserText) > MaxMessageLength {
		return models.Response{}, NewValidationError("SendMessage", "message_too_long", "message is too long", ErrInvalidRequest)
	}

	return s.processor.Process(ctx, req), nil
}

// GetSession returns the stored conversation of key.
func (s *Session) GetSession(ctx context.Context, key models.SessionKey) (*models.SessionContext, error) {
	err := validateKey("GetSession", key)
	if err != nil {
		return nil, err
	}

	session, err := s.persistence.GetContext(ctx, key)
	if err != nil {
		if persistence.IsSessionNotFound(err) {
			return nil, NewNotFoundError("GetSession", "session_not_found", ErrSessionNotFound)
		}

		return nil, err
	}

	return session, nil
}

// ResetSession forgets the conversation and any pending automation of key. A turn in
// flight for the same session may still store its result afterwards.
func (s *Session) ResetSession(ctx context.Context, key models.SessionKey) error {
	err := validateKey("ResetSession", key)
	if err != nil {
		return err
	}

	return s.persistence.DeleteContext(ctx, key)
}

// ListNodeTypes returns the node type catalog in registration order.
func (s *Session) ListNodeTypes() []*models.NodeTypeSpec {
	return s.registry.List()
}

// GetNodeType returns one node type with its parameter schema.
func (s *Session) GetNodeType(typeName string) (*models.NodeTypeSpec, map[string]any, error) {
	spec, err := s.registry.GetSpec(typeName)
	if err != nil {
		return nil, nil, NewNotFoundError("GetNodeType", "node_type_not_found", ErrNodeTypeNotFound)
	}

	schema, err := s.registry.Schema(typeName)
	if err != nil {
		return nil, nil, err
	}

	return spec, schema, nil
}

func validateKey(op string, key models.SessionKey) error {
	if key.SessionID == "" {
		return NewValidationError(op, "empty_session_id", "session ID cannot be empty", ErrEmptySessionID)
	}

	if !idPattern.MatchString(key.SessionID) || (key.AgentID != "" && !idPattern.MatchString(key.AgentID)) {
		return NewValidationError(op, "invalid_session_id", "IDs may only contain letters, digits, '.', '_' and '-'", ErrSessionIDChars)
	}

	return nil
}
