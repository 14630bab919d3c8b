package fetch

import (
	"errors"
	"net"
	"net/http"

	"github.com/vertextoedge/netfetch/internal/domain"
)

var errNoResponse = errors.New("no response")

// ClassifyStatus decides whether a response may be consumed. It returns nil
// for 200 and 206 and an HTTP status error for every other code. It is pure
// and runs before any body byte is read.
func ClassifyStatus(info *domain.ResponseInfo) error {
	if info == nil {
		return domain.NewHTTPStatusError(http.StatusInternalServerError, errNoResponse)
	}
	switch info.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
		return nil
	default:
		return domain.NewHTTPStatusError(info.StatusCode, nil)
	}
}

// ClassifyConnectError maps a failure to obtain any status line. An
// unresolvable host is reported as "No network"; everything else is
// treated as status 500 with the transport error attached.
func ClassifyConnectError(err error) error {
	if isHostResolutionFailure(err) {
		return domain.NewNetworkUnreachableError(err)
	}
	return domain.NewHTTPStatusError(http.StatusInternalServerError, err)
}

func isHostResolutionFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
