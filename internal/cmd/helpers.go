package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/dryrun"
	"github.com/arabah/arabah-cli/internal/iocontext"
	"github.com/arabah/arabah-cli/internal/outfmt"
	"github.com/arabah/arabah-cli/internal/validation"
)

// RunE wraps a command body: errors are printed once, as text or JSON, and
// come back as a handledError carrying the exit code.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		errOut := cmd.ErrOrStderr()
		if isJSON(cmd) {
			_ = outfmt.WriteJSON(errOut, errorPayload(err), true)
		} else {
			_, _ = fmt.Fprint(errOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// errAlreadyHandled signals that the error was already printed to stderr.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// skipOutput reports whether the command has nothing to render: in dry-run
// mode no response exists.
func skipOutput(cmd *cobra.Command) bool {
	return dryrun.IsEnabled(cmd.Context())
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	return outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func printJSON(cmd *cobra.Command, v any) error {
	return newFormatter(cmd).Output(v)
}

// printDone writes a confirmation line in text mode or {"ok": true, ...} in JSON.
func printDone(cmd *cobra.Command, message string, fields map[string]any) error {
	if isJSON(cmd) {
		payload := map[string]any{"ok": true}
		for k, v := range fields {
			payload[k] = v
		}
		return printJSON(cmd, payload)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}

func canPrompt(cmd *cobra.Command) bool {
	if flags.NoInput {
		return false
	}
	return iocontext.GetIO(cmd.Context()).IsInteractive()
}

// promptLine prints prompt to stderr and reads one trimmed line.
func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if stdin == nil {
		stdin = bufio.NewReader(iocontext.GetIO(cmd.Context()).In)
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type confirmOptions struct {
	Prompt        string
	Expected      string
	CancelMessage string
	Force         bool
}

// confirmAction asks before destructive commands. --yes and --force skip the
// question; without a terminal the action is refused.
func confirmAction(cmd *cobra.Command, opts confirmOptions) (bool, error) {
	if flags.Yes || opts.Force {
		return true, nil
	}
	if !canPrompt(cmd) {
		return false, fmt.Errorf("confirmation required: pass --yes to proceed without a prompt")
	}

	response, err := promptLine(cmd, opts.Prompt)
	expected := strings.TrimSpace(strings.ToLower(opts.Expected))
	if expected == "" {
		expected = "y"
	}
	if err != nil || strings.ToLower(response) != expected {
		if opts.CancelMessage != "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), opts.CancelMessage)
		}
		return false, nil
	}
	return true, nil
}

// parseID parses a positional ID argument.
func parseID(value, field string) (int, error) {
	id, err := validation.ParsePositiveInt(value, field)
	if err != nil {
		return 0, api.ValidationError(err.Error())
	}
	return id, nil
}

// parseIDs parses ID arguments, accepting comma separated lists.
func parseIDs(args []string, field string) ([]int, error) {
	var ids []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part, field)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, api.ValidationError(field + " is required")
	}
	return ids, nil
}

// maxAttachmentBytes bounds images read from disk.
const maxAttachmentBytes = 10 << 20

// readAttachment loads an image file for a multipart upload.
func readAttachment(path string) (api.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return api.Attachment{}, api.ValidationError(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if info.Size() > maxAttachmentBytes {
		return api.Attachment{}, api.ValidationError(fmt.Sprintf("%s is larger than %d MB", path, maxAttachmentBytes>>20))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Attachment{}, api.ValidationError(fmt.Sprintf("cannot read %s: %v", path, err))
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return api.Attachment{}, api.ValidationError(fmt.Sprintf("%s is not an image (detected %s)", path, mimeType))
	}
	return api.Attachment{Data: data, FileName: filepath.Base(path), MimeType: mimeType}, nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// flagAlias registers a hidden alias that shares the canonical flag's value.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Annotations = map[string][]string{"alias-of": {name}}
	fs.AddFlag(&a)
}

// flagOrAliasChanged reports whether name or any alias of it was set.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && f.Changed {
				found = true
			}
		})
		return found
	}
	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}
