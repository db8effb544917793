package publisher_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/feedgate/internal/publisher"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		retryRejections bool
		want            bool
	}{
		{
			name: "nil error is not retryable",
			err:  nil,
			want: false,
		},
		{
			name: "compliance failure is terminal",
			err:  &publisher.ComplianceError{Message: "checks failed"},
			want: false,
		},
		{
			name:            "compliance failure stays terminal even with rejection retries on",
			err:             &publisher.ComplianceError{Message: "checks failed"},
			retryRejections: true,
			want:            false,
		},
		{
			name: "configuration error is terminal",
			err:  &publisher.ConfigError{Message: "destination inactive"},
			want: false,
		},
		{
			name: "payload rejection is terminal by default",
			err:  &publisher.ProtocolError{Message: "title too long", Rejected: true},
			want: false,
		},
		{
			name:            "payload rejection retried under explicit policy",
			err:             &publisher.ProtocolError{Message: "title too long", Rejected: true},
			retryRejections: true,
			want:            true,
		},
		{
			name: "delivery failure is retryable",
			err:  &publisher.ProtocolError{Message: "connection reset"},
			want: true,
		},
		{
			name: "wrapped terminal error stays terminal",
			err:  fmt.Errorf("publish: %w", &publisher.ConfigError{Message: "unknown destination"}),
			want: false,
		},
		{
			name: "wrapped delivery failure stays retryable",
			err:  fmt.Errorf("publish: %w", &publisher.ProtocolError{Message: "timeout"}),
			want: true,
		},
		{
			name: "unclassified error is retryable",
			err:  errors.New("database connection lost"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publisher.Retryable(tt.err, tt.retryRejections))
		})
	}
}
