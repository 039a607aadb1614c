package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLedgerIntegrity is the task type for the nightly ledger scan.
	TaskTypeLedgerIntegrity = "ledger:integrity"
)

// LedgerIntegrityPayload selects the scan scope. CompanyID zero scans every
// company.
type LedgerIntegrityPayload struct {
	CompanyID int64 `json:"companyId"`
}

// NewLedgerIntegrityTask constructs an Asynq task for the ledger scan.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLedgerIntegrity, data), nil
}
