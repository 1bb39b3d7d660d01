package recovery

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecoverToValue(t *testing.T) {
	got, err := RecoverToValue(discardLogger(), "Execute", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	got, err = RecoverToValue(discardLogger(), "Execute", func() (int, error) { panic("boom") })
	assert.Zero(t, got)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "Execute", panicErr.Operation)
	assert.EqualError(t, err, "Execute panicked: boom")

	sentinel := errors.New("failed")
	_, err = RecoverToValue(discardLogger(), "Execute", func() (int, error) { return 0, sentinel })
	require.ErrorIs(t, err, sentinel)
}

func TestRecoverToError(t *testing.T) {
	err := RecoverToError(discardLogger(), "DoGet", func() error { panic("boom") })
	assert.Equal(t, codes.Internal, status.Code(err))

	require.NoError(t, RecoverToError(discardLogger(), "DoGet", func() error { return nil }))
}
