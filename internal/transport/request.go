package transport

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/logging"
)

// maxErrorMessage caps how much of an error body ends up in APIError.Message.
const maxErrorMessage = 512

// ReadBody reads and closes a response body. A non-200 status becomes an
// *errors.APIError tagged with endpoint; bodies over MaxResponseBytes are
// rejected.
func ReadBody(resp *http.Response, endpoint string, logger *zerolog.Logger) ([]byte, error) {
	if logger == nil {
		logger = logging.Default()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to close response body")
		}
	}()

	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes+1))
	if err != nil {
		return nil, errors.WrapIO("read", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.APIError{
			Endpoint:   endpoint,
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Status, body),
		}
	}

	if int64(len(body)) > constants.MaxResponseBytes {
		return nil, &errors.APIError{
			Endpoint:   endpoint,
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response exceeds %d bytes", constants.MaxResponseBytes),
		}
	}

	return body, nil
}

func errorMessage(status string, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	return msg
}
