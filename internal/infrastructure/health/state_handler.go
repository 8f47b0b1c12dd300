package health

import (
	"context"
	"net/http"
	"strings"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/infrastructure/document"

	"github.com/sirupsen/logrus"
)

// StateReader returns the current network state, optionally filtered by kernel name
type StateReader interface {
	Execute(ctx context.Context, names []string) (*entities.CurrentState, error)
}

// StateHandler serves the current network state as YAML.
// Interfaces can be selected with repeated or comma separated iface parameters.
type StateHandler struct {
	reader StateReader
	logger *logrus.Logger
}

// NewStateHandler creates a new StateHandler
func NewStateHandler(reader StateReader, logger *logrus.Logger) *StateHandler {
	return &StateHandler{
		reader: reader,
		logger: logger,
	}
}

// ServeHTTP handles GET /state
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var names []string
	for _, value := range r.URL.Query()["iface"] {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	state, err := h.reader.Execute(r.Context(), names)
	if err != nil {
		h.logger.WithError(err).Error("failed to read current network state")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	body, err := document.EncodeCurrent(state)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode current network state")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.WithError(err).Error("failed to write current network state")
	}
}
