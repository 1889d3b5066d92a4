package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/lessonsync/pkg/errors"
)

func TestParseUser(t *testing.T) {
	const path = ".lessonsync.yaml"
	malformed := func(parserErr string) error {
		return errors.WithContext(errors.NewFriendlyError(
			malformedUserFileTemplate, path, errors.New(parserErr)), "parse")
	}
	wrongVersion := func(got string) error {
		return errors.WithContext(VersionMismatchError{
			Path: path,
			Want: SupportedUserConfigVersion,
			Got:  got,
		}, "parse")
	}

	tests := []struct {
		name     string
		file     string
		expUser  User
		expError error
	}{
		{
			name: "MissingVersionDefaultsToInitial",
			file: "url: https://school.example.com\nemail: instructor@example.com\n",
			expUser: User{
				Version: InitialUserConfigVersion,
				URL:     "https://school.example.com",
				Email:   "instructor@example.com",
			},
		},
		{
			name: "AllFields",
			file: `
version: v1alpha1
url: https://school.example.com
email: instructor@example.com
password: hunter2
cachePath: ~/.cache/lessonsync.json
timeoutSeconds: 10
retries: 5
`,
			expUser: User{
				Version:        SupportedUserConfigVersion,
				URL:            "https://school.example.com",
				Email:          "instructor@example.com",
				Password:       "hunter2",
				CachePath:      "~/.cache/lessonsync.json",
				TimeoutSeconds: 10,
				Retries:        5,
			},
		},
		{
			name:    "EmptyFile",
			file:    "",
			expUser: User{Version: InitialUserConfigVersion},
		},
		{
			name:     "WrongVersion",
			file:     "version: v2\nurl: https://school.example.com\n",
			expError: wrongVersion("v2"),
		},
		{
			name: "UnknownField",
			file: "version: v1alpha1\nextra: fields\n",
			expError: malformed("error unmarshaling JSON: while decoding JSON: " +
				`json: unknown field "extra"`),
		},
		{
			name: "WrongVersionWinsOverUnknownField",
			file: "version: incorrect_version\nextra: fields\n",
			expError: wrongVersion("incorrect_version"),
		},
	}

	fs = afero.NewMemMapFs()
	homedirExpand = func(string) (string, error) { return path, nil }
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, afero.WriteFile(fs, path, []byte(test.file), 0600))

			user, err := ParseUser()
			assert.Equal(t, test.expError, err)
			assert.Equal(t, test.expUser, user)
		})
	}
}

func TestParseUserMissing(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(_ string) (string, error) {
		return ".lessonsync.yaml", nil
	}

	_, err := ParseUser()
	assert.Equal(t, errors.FileNotFound{Path: ".lessonsync.yaml"}, err)
}

func TestParseWrittenUser(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(_ string) (string, error) {
		return ".lessonsync.yaml", nil
	}

	user := User{
		URL:            "https://school.example.com",
		Email:          "instructor@example.com",
		Password:       "hunter2",
		TimeoutSeconds: 10,
	}

	// Write the user to disk, and assert that we get the same user config when
	// we parse it.
	assert.NoError(t, WriteUser(user))

	parsed, err := ParseUser()
	assert.NoError(t, err)

	user.Version = SupportedUserConfigVersion
	assert.Equal(t, user, parsed)
}

func TestVersionMismatchFriendlyMessage(t *testing.T) {
	err := errors.WithContext(VersionMismatchError{
		Path: "/home/me/.lessonsync.yaml",
		Want: SupportedUserConfigVersion,
		Got:  "v0",
	}, "parse")

	msg, ok := errors.GetFriendlyMessage(err)
	assert.True(t, ok)
	assert.Contains(t, msg, `"v0"`)
	assert.Contains(t, msg, "lessonsync config")
}
