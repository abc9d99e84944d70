package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-payables/internal/features/approval"
	"go-payables/internal/features/audit"
	"go-payables/internal/features/organization"
	"go-payables/internal/features/payable"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNotFound  = errors.New("organization not found")
	ErrNotMember = errors.New("acting user is not a member of the organization")
)

var payableColumns = []string{
	"ID", "Vendor", "Category", "Description", "Amount", "Currency",
	"Status", "Approval", "Approvers", "Due Date", "Paid At", "Created At",
}

type ReportService interface {
	// ExportPayables renders an organization's payables with their approval
	// outcomes as an XLSX workbook
	ExportPayables(ctx context.Context, actingUserID, orgID string) ([]byte, string, error)
}

type ReportServiceImpl struct {
	PayableRepo  payable.PayableRepository
	ApprovalRepo approval.ApprovalRepository
	OrgRepo      organization.OrganizationRepository
	AuditService audit.AuditService
}

func NewReportService(
	payableRepo payable.PayableRepository,
	approvalRepo approval.ApprovalRepository,
	orgRepo organization.OrganizationRepository,
	auditService audit.AuditService,
) ReportService {
	return &ReportServiceImpl{
		PayableRepo:  payableRepo,
		ApprovalRepo: approvalRepo,
		OrgRepo:      orgRepo,
		AuditService: auditService,
	}
}

func (s *ReportServiceImpl) ExportPayables(ctx context.Context, actingUserID, orgID string) ([]byte, string, error) {
	org, err := s.OrgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, "", err
	}
	if org == nil {
		return nil, "", ErrNotFound
	}
	if org.FindMember(actingUserID) == nil {
		return nil, "", ErrNotMember
	}

	payables, err := s.PayableRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Payables"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range payableColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range payables {
		p := &payables[rowIdx]
		row := []interface{}{
			p.ID.Hex(),
			p.Vendor,
			p.Category,
			p.Description,
			p.Amount,
			p.Currency,
			string(p.Status),
			p.ApprovalStatus,
			s.approverChain(ctx, p),
			formatTime(&p.DueDate),
			formatTime(p.PaidAt),
			formatTime(&p.CreatedAt),
		}
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("payables-%s-%s.xlsx", org.Slug, uuid.NewString()[:8])

	s.AuditService.Log(ctx, orgID, actingUserID, audit.ActionExport, audit.EntityReport,
		filename, fmt.Sprintf("Exported %d payables", len(payables)), nil)

	return buffer.Bytes(), filename, nil
}

// approverChain summarizes who decided what, in step order
func (s *ReportServiceImpl) approverChain(ctx context.Context, p *payable.Payable) string {
	if p.WorkflowID == "" {
		return ""
	}
	wf, err := s.ApprovalRepo.FindByID(ctx, p.WorkflowID)
	if err != nil || wf == nil {
		return ""
	}
	if wf.AppliedRules.AutoApproved {
		return "auto-approved"
	}

	parts := make([]string, 0, len(wf.Approvals))
	for i := range wf.Approvals {
		step := &wf.Approvals[i]
		parts = append(parts, fmt.Sprintf("%s (%s)", step.ApproverEmail, step.Decision))
	}
	return strings.Join(parts, ", ")
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
