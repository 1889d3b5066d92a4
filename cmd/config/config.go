package config

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/lessonsync/cmd/util"
	"github.com/sidkik/lessonsync/pkg/config"
	"github.com/sidkik/lessonsync/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout          io.Writer = os.Stdout
	stdin           io.Reader = os.Stdin
	parseUserConfig           = config.ParseUser
	writeUserConfig           = config.WriteUser
	getenv                    = os.Getenv
)

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts config.User
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the lessonsync user configuration",
		Long: "Setup the lessonsync user configuration.\n\n" +
			"The configuration is stored in " + config.UserConfigPath + ". " +
			"Settings that aren't passed as flags are prompted for.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&cliOpts.URL, "url", "u", "",
		"Set the Mavenseed site URL in the config. "+
			"Optional: If not set, `lessonsync config` will interactively prompt.")
	cmd.Flags().StringVarP(&cliOpts.Email, "email", "e", "",
		"Set the email of the Mavenseed admin account in the config. "+
			"Optional: If not set, `lessonsync config` will interactively prompt.")
	cmd.Flags().StringVarP(&cliOpts.Password, "password", "p", "",
		"Store the password of the Mavenseed admin account in the config. "+
			"Optional: If not set, the password is requested when publishing.")
	cmd.Flags().StringVar(&cliOpts.CachePath, "cache", "",
		"Set the path of the course cache in the config. "+
			"Optional: If not set, `lessonsync config` will interactively prompt.")

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.User) string
	}

	getters := []getterSpec{
		{
			use:   "get-url",
			short: "Get the currently configured Mavenseed URL",
			fn:    func(cfg config.User) string { return cfg.URL },
		},
		{
			use:   "get-email",
			short: "Get the currently configured Mavenseed email",
			fn:    func(cfg config.User) string { return cfg.Email },
		},
		{
			use:   "get-cache",
			short: "Get the currently configured course cache path",
			fn:    func(cfg config.User) string { return cfg.CachePath },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseUserConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig fills in the settings missing from cliOpts by prompting the
// user, and writes the result to the user config.
func SetupConfig(cliOpts config.User) error {
	cfg, err := generateConfig(cliOpts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeUserConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func urlValidationFn(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "The URL must be an absolute http or https URL, " +
			"such as https://courses.example.com.", false
	}
	return "", true
}

func emailValidationFn(email string) (string, bool) {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return "Please enter a valid email address.", false
	}
	return "", true
}

type prompt struct {
	helpString, prompt, defaultAnswer, currAnswer string
	field                                         *string
	validationFn                                  func(string) (string, bool)
}

// generateConfig interacts with the user to decide what the user's desired
// configuration is. Settings from the environment are offered as the
// recommended answers.
func generateConfig(cliOpts config.User) (config.User, error) {
	currConfig, err := parseUserConfig()
	if err != nil {
		currConfig = config.User{}
		log.WithError(err).Debug("Failed to read current config")
	}

	cfg := cliOpts
	if cfg.Password == "" {
		cfg.Password = currConfig.Password
	}
	cfg.TimeoutSeconds = currConfig.TimeoutSeconds
	cfg.Retries = currConfig.Retries

	var prompts []prompt
	if cliOpts.URL == "" {
		prompts = append(prompts, prompt{
			helpString:    "Enter the URL of the Mavenseed site to publish to.",
			prompt:        "Mavenseed URL",
			defaultAnswer: getenv(config.URLEnvKey),
			currAnswer:    currConfig.URL,
			field:         &cfg.URL,
			validationFn:  urlValidationFn,
		})
	}

	if cliOpts.Email == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the email of the Mavenseed admin account.\n" +
				"The account must be allowed to edit courses.",
			prompt:        "Mavenseed email",
			defaultAnswer: getenv(config.EmailEnvKey),
			currAnswer:    currConfig.Email,
			field:         &cfg.Email,
			validationFn:  emailValidationFn,
		})
	}

	if cliOpts.CachePath == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the path of the course cache.\n" +
				"Relative paths are resolved from the directory lessonsync is run in.",
			prompt:        "Course cache path",
			defaultAnswer: config.DefaultCachePath,
			currAnswer:    currConfig.CachePath,
			field:         &cfg.CachePath,
		})
	}

	for _, prompt := range prompts {
		var resp string
		for {
			resp, err = promptUser(prompt.helpString, prompt.prompt,
				prompt.defaultAnswer, prompt.currAnswer)
			if err != nil {
				return config.User{}, errors.WithContext(err, "read response")
			}

			if prompt.validationFn == nil {
				break
			}

			validationErr, ok := prompt.validationFn(resp)
			if ok {
				break
			}

			fmt.Fprintln(stdout, validationErr)
		}

		*prompt.field = resp
	}

	return cfg, nil
}

// promptUser asks for a single setting. When a default or current answer
// exists it is offered as a numbered choice, otherwise the answer is read
// directly.
func promptUser(helpString, prompt, defaultAnswer, currAnswer string) (string, error) {
	defer fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s\n%s:\n", helpString, prompt)

	in := bufio.NewReader(stdin)
	choices := answerChoices(defaultAnswer, currAnswer)
	if len(choices) != 0 {
		answer, ok, err := chooseAnswer(in, choices)
		if err != nil || ok {
			return answer, err
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	return readLine(in)
}

// answerChoices lists the distinct non-empty answers, recommended first.
func answerChoices(defaultAnswer, currAnswer string) []string {
	var choices []string
	for _, answer := range []string{defaultAnswer, currAnswer} {
		if answer == "" || (len(choices) == 1 && choices[0] == answer) {
			continue
		}
		choices = append(choices, answer)
	}
	return choices
}

// chooseAnswer prints the choices followed by a manual entry option, and
// loops until the user picks one. An empty line picks the recommended
// choice. ok is false when the user wants to enter the answer manually.
func chooseAnswer(in *bufio.Reader, choices []string) (answer string, ok bool, err error) {
	manual := len(choices) + 1

	fmt.Fprintln(stdout)
	for i, choice := range choices {
		if i == 0 {
			choice += " (recommended)"
		}
		fmt.Fprintf(stdout, "\t%d. %s\n", i+1, choice)
	}
	fmt.Fprintf(stdout, "\t%d. (Enter manually)\n\n", manual)

	for {
		fmt.Fprintf(stdout, "Please choose one [1-%d]: ", manual)
		line, err := in.ReadString('\n')
		if err != nil {
			return "", false, err
		}

		n := 1
		if line = strings.TrimSpace(line); line != "" {
			n, err = strconv.Atoi(line)
			if err != nil || n < 1 || n > manual {
				continue
			}
		}

		if n == manual {
			return "", false, nil
		}
		return choices[n-1], true, nil
	}
}

// readLine reads one answer. A final line without a newline is accepted.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
