package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"postboard/internal/app"
)

func TestParsePort(t *testing.T) {
	for _, s := range []string{"1", "8080", "65535"} {
		_, err := app.ParsePort(s)
		require.NoError(t, err, s)
	}
	for _, s := range []string{"", "0", "-1", "65536", "http", "80a"} {
		_, err := app.ParsePort(s)
		require.Error(t, err, s)
	}
}
