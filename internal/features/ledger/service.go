package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-payables/internal/config"
	"go-payables/internal/features/audit"
	"go-payables/internal/features/payable"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("ledger export is not configured")

const exportBatchSize = 500

type LedgerService interface {
	// Export pushes approved payables that have not been exported yet into
	// the external accounting database. Returns the number of rows written.
	Export(ctx context.Context, triggeredBy string) (int, error)

	ListRuns(ctx context.Context, limit int64) ([]ExportRun, error)
}

type LedgerServiceImpl struct {
	Config       *config.Config
	PayableRepo  payable.PayableRepository
	RunRepo      ExportRunRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewLedgerService(
	cfg *config.Config,
	payableRepo payable.PayableRepository,
	runRepo ExportRunRepository,
	auditService audit.AuditService,
	logger *zap.Logger,
) LedgerService {
	return &LedgerServiceImpl{
		Config:       cfg,
		PayableRepo:  payableRepo,
		RunRepo:      runRepo,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *LedgerServiceImpl) Export(ctx context.Context, triggeredBy string) (int, error) {
	if s.Config.LedgerPostgresDSN == "" {
		return 0, ErrNotConfigured
	}

	run := &ExportRun{
		StartTime:   time.Now(),
		Status:      RunInProgress,
		TriggeredBy: triggeredBy,
	}
	_ = s.RunRepo.Create(ctx, run)

	processed, err := s.export(ctx)

	run.EndTime = time.Now()
	run.ProcessedCount = processed
	if err != nil {
		run.Status = RunFailed
		run.Error = err.Error()
	} else {
		run.Status = RunSuccess
	}
	if updateErr := s.RunRepo.Update(ctx, run); updateErr != nil {
		s.Logger.Warn("failed to record ledger export run", zap.Error(updateErr))
	}

	if err != nil {
		return processed, err
	}

	if processed > 0 && triggeredBy != "" {
		s.AuditService.Log(ctx, "", triggeredBy, audit.ActionExport, audit.EntityPayable,
			run.ID.Hex(), fmt.Sprintf("%d payables exported to ledger", processed), nil)
	}

	return processed, nil
}

func (s *LedgerServiceImpl) export(ctx context.Context) (int, error) {
	db, err := sql.Open("postgres", s.Config.LedgerPostgresDSN)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to ledger database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping ledger database: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		return 0, err
	}

	payables, err := s.PayableRepo.ListApprovedUnsynced(ctx, exportBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range payables {
		p := &payables[i]
		if err := s.exportOne(ctx, db, p); err != nil {
			s.Logger.Warn("failed to export payable to ledger",
				zap.String("payableId", p.ID.Hex()),
				zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

func (s *LedgerServiceImpl) exportOne(ctx context.Context, db *sql.DB, p *payable.Payable) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO ledger_entries
			(id, organization_id, vendor, category, description, amount, currency, status, workflow_id, due_date, paid_at, exported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = $8, paid_at = $11, exported_at = $12`,
		p.ID.Hex(), p.OrganizationID, p.Vendor, p.Category, p.Description,
		p.Amount, p.Currency, string(p.Status), p.WorkflowID, p.DueDate, p.PaidAt, now,
	)
	if err != nil {
		return err
	}
	return s.PayableRepo.MarkLedgerSynced(ctx, p.ID.Hex(), now)
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id              TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			vendor          TEXT,
			category        TEXT,
			description     TEXT,
			amount          DOUBLE PRECISION NOT NULL,
			currency        TEXT,
			status          TEXT NOT NULL,
			workflow_id     TEXT,
			due_date        TIMESTAMPTZ,
			paid_at         TIMESTAMPTZ,
			exported_at     TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

func (s *LedgerServiceImpl) ListRuns(ctx context.Context, limit int64) ([]ExportRun, error) {
	return s.RunRepo.List(ctx, limit)
}
