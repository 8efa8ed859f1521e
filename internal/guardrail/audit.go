package guardrail

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger records generation attempts with hashed identifiers so audit
// trails never contain raw SQL or tenant ids
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogGeneration records one generation attempt
func (a *AuditLogger) LogGeneration(templateID, companyID, sql string, safetyPassed bool, durationMs int64, errMsg string) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "query_generation").
		Str("template_id", templateID).
		Str("company_hash", hashStr(companyID)[:16]).
		Bool("safety_passed", safetyPassed).
		Int64("duration_ms", durationMs)

	if sql != "" {
		evt = evt.Str("sql_hash", hashStr(sql)[:16])
	}
	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("generation audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
