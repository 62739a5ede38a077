package images

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Action is a mirror step.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Step is one planned mirror operation on a file name.
type Step struct {
	Name   string
	Action Action
}

// PlanMirror compares the regular files directly inside src and dst. Files
// missing in dst are added, files whose size or mtime differ are updated and
// files absent from src are deleted. Steps are sorted by name.
func PlanMirror(src, dst string) ([]Step, error) {
	srcFiles, err := listFiles(src)
	if err != nil {
		return nil, err
	}
	dstFiles, err := listFiles(dst)
	if err != nil {
		return nil, err
	}

	var plan []Step
	for name, si := range srcFiles {
		di, ok := dstFiles[name]
		switch {
		case !ok:
			plan = append(plan, Step{Name: name, Action: ActionAdd})
		case si.Size() != di.Size() || !si.ModTime().Equal(di.ModTime()):
			plan = append(plan, Step{Name: name, Action: ActionUpdate})
		}
	}
	for name := range dstFiles {
		if _, ok := srcFiles[name]; !ok {
			plan = append(plan, Step{Name: name, Action: ActionDelete})
		}
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Name < plan[j].Name })
	return plan, nil
}

func (s *Syncer) mirrorAI(ctx context.Context, run Run) error {
	plan, err := PlanMirror(s.paths.AIImagesSource, s.paths.AIImagesDest)
	if err != nil {
		return err
	}

	for _, step := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(s.paths.AIImagesDest, step.Name)
		switch step.Action {
		case ActionAdd, ActionUpdate:
			if err := copyFile(filepath.Join(s.paths.AIImagesSource, step.Name), dst); err != nil {
				return err
			}
			run.AddCopied(1)
		case ActionDelete:
			if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return ferrors.FileSystemError("remove stale AI image").
					WithCause(err).
					WithContext("path", dst).
					Build()
			}
			run.AddDeleted(1)
		}
		slog.Info("Mirrored AI image", logfields.Image(step.Name), slog.String("action", string(step.Action)))
	}
	if len(plan) > 0 {
		run.MarkChanged("ai images mirrored")
	}
	slog.Info("AI image mirror complete", logfields.Count(len(plan)))
	return nil
}

func listFiles(dir string) (map[string]fs.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferrors.FileSystemError("list image directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	out := make(map[string]fs.FileInfo, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, ferrors.FileSystemError("stat image").
				WithCause(err).
				WithContext("path", filepath.Join(dir, e.Name())).
				Build()
		}
		out[e.Name()] = info
	}
	return out, nil
}
