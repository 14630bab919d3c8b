package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertextoedge/netfetch/internal/domain"
)

func TestClassifyStatus_Grid(t *testing.T) {
	for code := 100; code < 600; code++ {
		err := ClassifyStatus(&domain.ResponseInfo{StatusCode: code, ContentLength: -1})

		switch code {
		case 200, 206:
			assert.NoError(t, err, "status %d", code)
		case 403:
			require.Error(t, err)
			assert.Equal(t, "Access Denied", err.Error())
		default:
			require.Error(t, err, "status %d", code)
			assert.Equal(t, fmt.Sprintf("HTTP Error %d", code), err.Error())
			status, ok := domain.StatusCodeOf(err)
			assert.True(t, ok)
			assert.Equal(t, code, status)
		}
	}
}

func TestClassifyStatus_Idempotent(t *testing.T) {
	for _, code := range []int{200, 206, 301, 403, 404, 416, 500, 503} {
		info := &domain.ResponseInfo{StatusCode: code}
		first := ClassifyStatus(info)
		second := ClassifyStatus(info)
		if first == nil {
			assert.NoError(t, second)
			continue
		}
		require.Error(t, second)
		assert.Equal(t, first.Error(), second.Error())
		assert.Equal(t, domain.KindOf(first), domain.KindOf(second))
	}
}

func TestClassifyStatus_NoResponse(t *testing.T) {
	err := ClassifyStatus(nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP Error 500", err.Error())
}

func TestClassifyConnectError(t *testing.T) {
	t.Run("host resolution", func(t *testing.T) {
		dnsErr := &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}
		err := ClassifyConnectError(fmt.Errorf("request failed: %w",
			&url.Error{Op: "Get", URL: "http://nowhere.invalid", Err: dnsErr}))

		assert.Equal(t, "No network", err.Error())
		assert.Equal(t, domain.KindNetworkUnreachable, domain.KindOf(err))
		assert.True(t, errors.Is(err, dnsErr))
	})

	t.Run("other transport failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ClassifyConnectError(cause)

		assert.Equal(t, "HTTP Error 500", err.Error())
		status, ok := domain.StatusCodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, 500, status)
		assert.True(t, errors.Is(err, cause), "transport error must stay attached")
	})
}
