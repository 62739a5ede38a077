package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"git.home.luguber.info/inful/blogsync/internal/deploy"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/server/responses"
)

// Deployer is what the deploy endpoint needs from the orchestrator.
type Deployer interface {
	Deploy(ctx context.Context, target string) deploy.Result
	Targets() []string
}

// DeployHandlers triggers deployments.
type DeployHandlers struct {
	deployer     Deployer
	errorAdapter *ferrors.HTTPErrorAdapter
}

func NewDeployHandlers(deployer Deployer) *DeployHandlers {
	return &DeployHandlers{
		deployer:     deployer,
		errorAdapter: ferrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleDeploy runs a deployment for the {target} path value and answers
// with its result: 200 when it succeeded, 500 when a stage failed.
//
// The run is detached from the request context: a client hanging up must
// not abort a half-finished publish.
func (h *DeployHandlers) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, h.errorAdapter, http.MethodPost) {
		return
	}

	target := r.PathValue("target")
	if !slices.Contains(h.deployer.Targets(), target) {
		err := ferrors.NotFoundError("unknown deployment target").
			WithContext("target", target).
			WithContext("available", h.deployer.Targets()).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	res := h.deployer.Deploy(context.WithoutCancel(r.Context()), target)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	body := responses.DeployResponse{
		Success:    res.Success,
		Message:    res.Message,
		RunID:      res.RunID,
		BlogURL:    res.BlogURL,
		Target:     res.Target,
		Kind:       string(res.Kind),
		Changes:    res.Changes,
		Commit:     res.Commit,
		DurationMS: res.Duration.Milliseconds(),
	}
	if err := writeJSON(w, status, body); err != nil {
		internalErr := ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode deploy response").Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
