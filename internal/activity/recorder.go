package activity

import (
	"time"

	"helfy-server/internal/auth/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Recorder writes one structured JSON line per security-relevant user
// action. The sink is best-effort: there is no acknowledgment or retry.
type Recorder struct {
	log *zap.Logger
}

// NewRecorder builds a recorder that emits JSON lines to stdout.
func NewRecorder() (*Recorder, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Recorder{log: log.Named("activity")}, nil
}

// NewRecorderWithLogger wraps an existing zap logger, used in tests.
func NewRecorderWithLogger(log *zap.Logger) *Recorder {
	return &Recorder{log: log.Named("activity")}
}

// Record emits a single activity line for the user action.
func (r *Recorder) Record(userID int64, action model.Action, clientIP string) {
	r.log.Info("user activity",
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_id", userID),
		zap.String("action", string(action)),
		zap.String("client_ip", clientIP),
		zap.Time("at", time.Now().UTC()),
	)
}

// Sync flushes buffered lines; called on shutdown.
func (r *Recorder) Sync() error {
	return r.log.Sync()
}
