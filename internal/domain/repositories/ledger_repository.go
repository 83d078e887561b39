package repositories

import (
	"github.com/rios0rios0/pinreport/internal/domain/entities"
)

// LedgerRepository loads the external business-approval table. A missing
// ledger file yields an empty ledger, not an error; individually malformed
// rows are skipped.
type LedgerRepository interface {
	Load(path string) (entities.ApprovalLedger, error)
}
