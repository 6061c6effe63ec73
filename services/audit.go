package services

import "github.com/rs/zerolog"

// AuditLogger records entity creation.
type AuditLogger interface {
	RecordCreated(table string, id any)
}

// NewAuditLogger returns a logger that writes creation lines when enabled
// and discards them otherwise.
func NewAuditLogger(enabled bool, log zerolog.Logger) AuditLogger {
	if !enabled {
		return nopAudit{}
	}
	return modelLog{log: log.With().Str("component", "model").Logger()}
}

type modelLog struct {
	log zerolog.Logger
}

func (m modelLog) RecordCreated(table string, id any) {
	m.log.Info().Interface("id", id).Msgf("A new record has been added to table [%s]", table)
}

type nopAudit struct{}

func (nopAudit) RecordCreated(string, any) {}
