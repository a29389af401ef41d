package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/tui/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints err with a hint for its error code and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := theme.DefaultTheme
	fmt.Fprintf(h.Out, "%s %v\n", t.Error.Render("Error:"), err)

	var se *errors.StoreError
	hasDetails := stderrors.As(err, &se)

	if hint := h.hint(err, se); hint != "" {
		fmt.Fprintln(h.Out, t.Muted.Render(hint))
	}

	if h.Verbose && hasDetails {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", se.ToJSON())
	}
	return err
}

func (h *ErrorHandler) hint(err error, se *errors.StoreError) string {
	detail := func(key string) interface{} {
		if se == nil {
			return ""
		}
		return se.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		return "Create casemgmt.yml, pass --config, or set CASEMGMT_API_URL_LIVE and CASEMGMT_API_URL_STAGE."
	case errors.ErrCodeConfigInvalid:
		return "Run 'casemgmt config validate' to see what is wrong with the file."
	case errors.ErrCodeTransport:
		return fmt.Sprintf("Could not reach the backend for %v. Check api.live_url / api.stage_url.", detail("endpoint"))
	case errors.ErrCodeHTTPStatus:
		if status := statusOf(detail("status")); status == 401 || status == 403 {
			return "The backend rejected the token. Check api.token or CASEMGMT_API_TOKEN."
		}
		return "The backend returned an error; the cached list was left unchanged."
	case errors.ErrCodeMalformedBody, errors.ErrCodeMissingData:
		return "The backend answered with an unexpected body. Is the URL pointing at the case-management API?"
	case errors.ErrCodeSchemaMismatch:
		return "The backend records do not match the expected shape; run with --verbose for the failing fields."
	case errors.ErrCodeDaemonUnavailable:
		return fmt.Sprintf("Start the daemon with 'casemgmt serve' (socket %v).", detail("socket"))
	case errors.ErrCodeNotReady:
		return "The daemon is still starting; try again in a moment."
	case errors.ErrCodeInvalidInput:
		return "Run the command with --help for the accepted values."
	}
	return ""
}

// statusOf reads a status detail, which is a float64 after a JSON round trip
// through the daemon.
func statusOf(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
