// cmd/ogscrapexter/errors.go
package main

import (
	"fmt"
	"strings"

	"github.com/valpere/OGScrapexter/internal/utils"
)

// Exit codes
const (
	exitOK          = 0
	exitGeneral     = 1
	exitConfig      = 2
	exitNetwork     = 3
	exitContent     = 4
	exitOutput      = 5
	exitURLRejected = 6
	exitPartial     = 7
)

// exitCode maps an error onto the process exit status using its error code
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	switch utils.CodeOf(err) {
	case utils.ErrCodeInvalidConfig:
		return exitConfig
	case utils.ErrCodeNetworkTimeout, utils.ErrCodeNetworkFailure, utils.ErrCodeHTTPStatus, utils.ErrCodeRateLimited:
		return exitNetwork
	case utils.ErrCodeContentType, utils.ErrCodeBodyTooLarge, utils.ErrCodeParsingError:
		return exitContent
	case utils.ErrCodeOutputFailed:
		return exitOutput
	case utils.ErrCodeInvalidURL, utils.ErrCodeURLBlocked:
		return exitURLRejected
	default:
		return exitGeneral
	}
}

// formatError renders err for the terminal. Coded errors get their user
// message; the raw error follows in verbose mode.
func formatError(err error, verbose bool) string {
	var b strings.Builder

	code := utils.CodeOf(err)
	if code == utils.ErrCodeUnknown || code == utils.ErrCodeInvalidConfig {
		fmt.Fprintf(&b, "Error: %s\n", err.Error())
		return b.String()
	}

	fmt.Fprintf(&b, "Error: %s\n", utils.GetUserFriendlyMessage(err))
	fmt.Fprintf(&b, "Code: %s\n", code)
	if verbose {
		fmt.Fprintf(&b, "Details: %s\n", err.Error())
	}
	if utils.IsRetryableError(err) {
		b.WriteString("The failure may be temporary; try again later.\n")
	}
	return b.String()
}
