package cdc

import (
	"encoding/json"

	"go.uber.org/zap"
)

// envelope is the wire shape of a CDC message.
type envelope struct {
	Type     string                 `json:"type"`
	Table    string                 `json:"table"`
	Database string                 `json:"database"`
	Data     map[string]interface{} `json:"data"`
}

// Record is a normalized CDC event ready for structured logging.
type Record struct {
	Operation string
	Table     string
	Database  string
	Data      map[string]interface{}
}

// Normalize decodes a CDC message. A payload that is not a JSON object is
// wrapped as {"raw": <original string>} rather than rejected, so one
// malformed message never halts the consumer.
func Normalize(value []byte) Record {
	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Record{
			Operation: "UNKNOWN",
			Data:      map[string]interface{}{"raw": string(value)},
		}
	}

	return Record{
		Operation: env.Type,
		Table:     env.Table,
		Database:  env.Database,
		Data:      env.Data,
	}
}

// Fields renders the record as zap fields for one JSON log line.
func (r Record) Fields() []zap.Field {
	return []zap.Field{
		zap.String("operation", r.Operation),
		zap.String("table", r.Table),
		zap.String("database", r.Database),
		zap.Any("data", r.Data),
	}
}
