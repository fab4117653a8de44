package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/macrorunner/internal/macro"
)

// NewMacro saves the starter template as name and returns its path and the
// byte offset where editing should begin. An existing macro is only
// replaced when force is set.
func (app *Application) NewMacro(name string, force bool) (string, int, error) {
	if !force && app.store.Exists(name) {
		return "", 0, NewOperationError("new", name, ErrMacroExists)
	}

	source, cursor := macro.Template()
	if err := app.store.Save(name, source); err != nil {
		return "", 0, err
	}

	path, err := app.store.Path(name)
	if err != nil {
		return "", 0, err
	}
	app.logger.Info("created macro %s", path)
	return path, cursor, nil
}

// SaveMacro validates source and stores it as name.
func (app *Application) SaveMacro(name, source string, force bool) (string, error) {
	if err := macro.Validate(name, source); err != nil {
		return "", err
	}
	if !force && app.store.Exists(name) {
		return "", NewOperationError("save", name, ErrMacroExists)
	}
	if err := app.store.Save(name, source); err != nil {
		return "", err
	}

	path, err := app.store.Path(name)
	if err != nil {
		return "", err
	}
	app.logger.Info("saved macro %s", path)
	return path, nil
}

// ImportMacro reads file and saves it as name. An empty name uses the
// file's base name.
func (app *Application) ImportMacro(name, file string, force bool) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", NewOperationError("read", file, err)
	}
	if name == "" {
		name = filepath.Base(file)
	}
	return app.SaveMacro(name, string(data), force)
}

// LoadMacro returns the source of a saved macro.
func (app *Application) LoadMacro(name string) (string, error) {
	return app.store.Load(name)
}

// ResolveMacro returns the display name and source of ref. ref is read as
// a file when one exists at that path, otherwise as a saved macro name.
func (app *Application) ResolveMacro(ref string) (string, string, error) {
	if info, err := os.Stat(ref); err == nil && info.Mode().IsRegular() {
		data, err := os.ReadFile(ref)
		if err != nil {
			return "", "", NewOperationError("read", ref, err)
		}
		return filepath.Base(ref), string(data), nil
	}

	source, err := app.store.Load(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", NewOperationError("resolve", ref, err).
				WithContext("no such file or saved macro")
		}
		return "", "", err
	}
	return macro.FileName(ref), source, nil
}

// RemoveMacro deletes a saved macro.
func (app *Application) RemoveMacro(name string) error {
	if err := app.store.Delete(name); err != nil {
		return err
	}
	app.logger.Info("removed macro %s", name)
	return nil
}

// ListMacros returns the saved macro file names.
func (app *Application) ListMacros() ([]string, error) {
	return app.store.List()
}
