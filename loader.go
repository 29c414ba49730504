package qsteg

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/theapemachine/errnie"
)

/*
Loader reads the text under inspection. A missing file is bootstrapped with
the fixed demo content; an existing file is read as-is, whatever it holds.
*/
type Loader struct {
	fs      afero.Fs
	path    string
	content string
}

func NewLoader(fs afero.Fs, path, content string) *Loader {
	return &Loader{
		fs:      fs,
		path:    path,
		content: content,
	}
}

func (l *Loader) Path() string {
	return l.path
}

// Load returns the file contents and whether the file had to be created.
func (l *Loader) Load() (string, bool, error) {
	exists, err := afero.Exists(l.fs, l.path)
	if err != nil {
		return "", false, AtStage(StageLoad, errors.Wrapf(ErrInput, "stat %s: %v", l.path, err))
	}

	created := false
	if !exists {
		if err := afero.WriteFile(l.fs, l.path, []byte(l.content), 0o644); err != nil {
			return "", false, AtStage(StageLoad, errors.Wrapf(ErrInput, "creating %s: %v", l.path, err))
		}
		errnie.Info("created demo file %s", l.path)
		created = true
	}

	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return "", created, AtStage(StageLoad, errors.Wrapf(ErrInput, "reading %s: %v", l.path, err))
	}

	return string(data), created, nil
}
