// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"

	"github.com/dukex/operion-assistant/pkg/nodes/automation"
	"github.com/dukex/operion-assistant/pkg/nodes/emailsend"
	"github.com/dukex/operion-assistant/pkg/nodes/httprequest"
	"github.com/dukex/operion-assistant/pkg/nodes/openai"
	"github.com/dukex/operion-assistant/pkg/nodes/trigger"
	"github.com/dukex/operion-assistant/pkg/registry"
)

// NodeOptions carries what the native node factories need at run time.
type NodeOptions struct {
	HTTPClient  *http.Client
	Chatter     openai.Chatter
	Sender      emailsend.Sender
	DefaultFrom string
}

func registerNativeNodes(reg *registry.Registry, logger *slog.Logger, opts NodeOptions) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	reg.RegisterNode(trigger.NewManualTriggerNodeFactory())
	reg.RegisterNode(httprequest.NewHTTPRequestNodeFactory(client))
	reg.RegisterNode(emailsend.NewEmailSendNodeFactory(opts.Sender, opts.DefaultFrom))
	reg.RegisterNode(automation.NewAutomationNodeFactory(logger))

	if opts.Chatter != nil {
		reg.RegisterNode(openai.NewOpenAINodeFactory(opts.Chatter))
	}
}

// NewRegistry loads the built-in node type catalog and registers the native node
// factories. Node types without a factory are reported but can still be planned.
func NewRegistry(logger *slog.Logger, opts NodeOptions) (*registry.Registry, error) {
	reg, err := registry.NewDefaultRegistry(logger)
	if err != nil {
		return nil, err
	}

	registerNativeNodes(reg, logger, opts)

	if missing := reg.MissingFactories(); len(missing) > 0 {
		logger.Warn("Node types cannot be executed in this configuration", "node_types", missing)
	}

	return reg, nil
}
