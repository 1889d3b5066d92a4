package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/sidkik/lessonsync/pkg/errors"
)

// fs is replaced with afero.NewMemMapFs() by the unit tests.
var fs = afero.NewOsFs()

// malformedUserFileTemplate is shown when ~/.lessonsync.yaml isn't valid.
// ghodss/yaml flattens its errors into strings, so the parser's message is
// all we have to point the user at the offending field.
const malformedUserFileTemplate = "%q is not a valid lessonsync config.\n" +
	"Check that every field has the right type and that there are no " +
	"unknown fields, or run `lessonsync config` to regenerate it.\n\n" +
	"Parser error: %s"

// VersionMismatchError is returned when the config file was written for a
// different config format than the one this binary understands.
type VersionMismatchError struct {
	Path      string
	Want, Got string
}

func (err VersionMismatchError) Error() string {
	return fmt.Sprintf("config %s: want version %q, got %q",
		err.Path, err.Want, err.Got)
}

// FriendlyMessage implements errors.FriendlyError.
func (err VersionMismatchError) FriendlyMessage() string {
	return fmt.Sprintf("%q uses config version %q, but this version of "+
		"lessonsync only reads %q.\n"+
		"Run `lessonsync config` to rewrite it.", err.Path, err.Got, err.Want)
}

// readUserFile decodes the user config at path. The version is checked before
// the strict decode so that an old file reports a version mismatch rather
// than complaining about fields that were renamed.
func readUserFile(path string) (User, error) {
	raw, err := afero.ReadFile(fs, path)
	switch {
	case os.IsNotExist(err):
		return User{}, errors.FileNotFound{Path: path}
	case err != nil:
		return User{}, errors.WithContext(err, "read file")
	}

	var header struct {
		Version string `json:"version"`
	}
	if err := yaml.Unmarshal(raw, &header); err != nil {
		return User{}, errors.NewFriendlyError(malformedUserFileTemplate, path, err)
	}
	if header.Version == "" {
		header.Version = InitialUserConfigVersion
	}
	if header.Version != SupportedUserConfigVersion {
		return User{}, VersionMismatchError{
			Path: path,
			Want: SupportedUserConfigVersion,
			Got:  header.Version,
		}
	}

	user := User{Version: header.Version}
	if err := yaml.UnmarshalStrict(raw, &user, yaml.DisallowUnknownFields); err != nil {
		return User{}, errors.NewFriendlyError(malformedUserFileTemplate, path, err)
	}
	return user, nil
}
