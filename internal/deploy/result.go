package deploy

import (
	"time"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// Kind classifies how a deployment ended.
type Kind string

const (
	KindDeployed          Kind = "deployed"
	KindNoChanges         Kind = "no_changes"
	KindContentSyncFailed Kind = "content_sync_failed"
	KindImageSyncFailed   Kind = "image_sync_failed"
	KindBuildFailed       Kind = "build_failed"
	KindGitFailed         Kind = "git_operations_failed"
	KindInvalidTarget     Kind = "invalid_target"
)

// Result messages. Failure messages are followed by ": <cause>".
const (
	MsgDeployed          = "Deployment completed successfully"
	MsgNoChanges         = "No changes to deploy"
	MsgContentSyncFailed = "Content sync failed"
	MsgImageSyncFailed   = "Image sync failed"
	MsgBuildFailed       = "Hugo build failed"
	MsgGitFailed         = "Git operations failed"
	MsgInvalidTarget     = "Unknown deployment target"
)

// Result is what a deployment reports to its caller.
type Result struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Kind     Kind          `json:"kind"`
	Target   string        `json:"target"`
	RunID    string        `json:"run_id"`
	Changes  bool          `json:"changes"`
	Commit   string        `json:"commit,omitempty"`
	BlogURL  string        `json:"blog_url,omitempty"`
	Title    string        `json:"title,omitempty"`
	Counts   Counts        `json:"counts"`
	Duration time.Duration `json:"-"`
}

// failure builds the message for a failed stage.
func failure(msg string, err error) string {
	return msg + ": " + describe(err)
}

// describe renders an error for humans, dropping the [category:severity]
// prefix ClassifiedError adds.
func describe(err error) string {
	if c, ok := err.(*ferrors.ClassifiedError); ok {
		if c.Cause() == nil {
			return c.Message()
		}
		return c.Message() + ": " + describe(c.Cause())
	}
	return err.Error()
}
