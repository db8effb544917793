package publisher

import (
	"errors"
	"fmt"

	"github.com/jonesrussell/feedgate/internal/models"
)

// ComplianceError reports that one or more compliance rules failed. It
// carries the failed-checks map so callers can present per-rule detail.
// Compliance failures are deterministic for unchanged content and must
// never be retried.
type ComplianceError struct {
	Message      string
	FailedChecks map[string]models.CheckResult
	Code         string
}

func (e *ComplianceError) Error() string {
	return e.Message
}

// ConfigError reports an operator-facing misconfiguration: a missing or
// inactive destination, or an unknown destination family. Terminal.
type ConfigError struct {
	Message string
	Code    string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// ProtocolError reports a destination-specific failure after compliance
// passed: either a payload-shape rejection (Rejected=true, deterministic)
// or a delivery failure (transient infrastructure assumption).
type ProtocolError struct {
	Message  string
	Code     string
	Rejected bool
}

func (e *ProtocolError) Error() string {
	return e.Message
}

// Retryable classifies an error for the job layer. Compliance and
// configuration failures are terminal. A payload-shape rejection is
// deterministic and only retried when retryRejections is set (explicit
// operator policy); delivery failures are retryable.
func Retryable(err error, retryRejections bool) bool {
	if err == nil {
		return false
	}

	var complianceErr *ComplianceError
	var configErr *ConfigError
	if errors.As(err, &complianceErr) || errors.As(err, &configErr) {
		return false
	}

	var protocolErr *ProtocolError
	if errors.As(err, &protocolErr) && protocolErr.Rejected {
		return retryRejections
	}

	return true
}

func complianceFailure(destinationName string, failed map[string]models.CheckResult) *ComplianceError {
	return &ComplianceError{
		Message:      fmt.Sprintf("article failed compliance checks for %s", destinationName),
		FailedChecks: failed,
		Code:         models.ErrorCodeComplianceFailed,
	}
}
