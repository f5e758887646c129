package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fadhlanhapp/tripplanner-backend/models"
	"github.com/fadhlanhapp/tripplanner-backend/repository"
	"github.com/fadhlanhapp/tripplanner-backend/utils"
)

// ExportService renders a trip as a spreadsheet or a printable summary
type ExportService struct {
	trips    repository.TripStore
	expenses repository.ExpenseStore
	users    repository.UserStore
	loc      *time.Location

	Now func() time.Time
}

// NewExportService creates a new export service
func NewExportService(trips repository.TripStore, expenses repository.ExpenseStore, users repository.UserStore, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		trips:    trips,
		expenses: expenses,
		users:    users,
		loc:      loc,
		Now:      time.Now,
	}
}

// PersonSummary represents a member's spending on the trip
type PersonSummary struct {
	User       models.UserRef
	TotalPaid  decimal.Decimal // paid out of pocket
	TotalOwed  decimal.Decimal // sum of their shares
	NetBalance decimal.Decimal // positive = should receive
}

type tripExport struct {
	trip      *models.TripPlan
	expenses  []*models.Expense
	refs      userRefs
	people    []PersonSummary
	transfers []transfer
	total     decimal.Decimal
}

func (s *ExportService) load(ctx context.Context, tripID, userID string) (*tripExport, error) {
	trip, err := requireTripMember(ctx, s.trips, tripID, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.FindExpenses(ctx, repository.ExpenseFilter{TripID: tripID})
	if err != nil {
		return nil, err
	}

	ledger, err := calculateBalances(expenses, trip.Members)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ledger))
	for id := range ledger {
		ids = append(ids, id)
	}
	for _, expense := range expenses {
		ids = append(ids, expense.PaidBy)
		ids = append(ids, expense.SplitBetween...)
	}
	refs, err := loadUserRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := &tripExport{trip: trip, expenses: expenses, refs: refs, total: utils.RoundMoney(sumAmounts(expenses))}
	balances := make(map[string]decimal.Decimal, len(ledger))
	for id, entry := range ledger {
		net := utils.RoundMoney(entry.paid.Sub(entry.owed))
		balances[id] = net
		out.people = append(out.people, PersonSummary{
			User:       refs.get(id),
			TotalPaid:  utils.RoundMoney(entry.paid),
			TotalOwed:  utils.RoundMoney(entry.owed),
			NetBalance: net,
		})
	}
	sort.Slice(out.people, func(i, j int) bool {
		a, b := displayName(out.people[i].User), displayName(out.people[j].User)
		if a != b {
			return a < b
		}
		return out.people[i].User.ID < out.people[j].User.ID
	})
	out.transfers = calculateOptimalSettlements(balances)
	return out, nil
}

func displayName(ref models.UserRef) string {
	if ref.FullName != "" {
		return ref.FullName
	}
	return ref.ID
}

func (s *ExportService) fileName(trip *models.TripPlan, kind, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		utils.CleanFileName(trip.Name),
		kind,
		s.Now().In(s.loc).Format(utils.DateLayout),
		ext)
}

// ExportTripWorkbook generates an Excel file for a trip
func (s *ExportService) ExportTripWorkbook(ctx context.Context, tripID, userID string) (*excelize.File, string, error) {
	defer newrelic.FromContext(ctx).StartSegment("export.ExportTripWorkbook").End()

	data, err := s.load(ctx, tripID, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	if err := s.createSummarySheet(f, data); err != nil {
		return nil, "", utils.NewInternalError("failed to create summary sheet", err)
	}
	if err := s.createExpensesSheet(f, data); err != nil {
		return nil, "", utils.NewInternalError("failed to create expenses sheet", err)
	}
	if err := s.createCategoriesSheet(f, data); err != nil {
		return nil, "", utils.NewInternalError("failed to create categories sheet", err)
	}

	// Delete the default sheet if it exists
	f.DeleteSheet("Sheet1")

	return f, s.fileName(data.trip, "Export", "xlsx"), nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
}

// writeRow fills one row from column A onwards
func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if d, ok := value.(decimal.Decimal); ok {
			value = d.InexactFloat64()
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, row, style int, headers ...string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, row, values...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	return f.SetCellStyle(sheet, first, last, style)
}

// createSummarySheet creates the Summary sheet: trip facts, member balances and settlements
func (s *ExportService) createSummarySheet(f *excelize.File, data *tripExport) error {
	sheet := "Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	trip := data.trip
	budget := "-"
	if trip.PlannedBudget.Valid {
		budget = trip.PlannedBudget.Decimal.StringFixed(utils.MoneyPlaces)
	}
	facts := [][]any{
		{"Trip", trip.Name},
		{"Dates", fmt.Sprintf("%s to %s", trip.StartDate.Format(utils.DateLayout), trip.EndDate.Format(utils.DateLayout))},
		{"Days / Nights", fmt.Sprintf("%d / %d", TotalDays(trip), TotalNights(trip))},
		{"Members", TotalMembers(trip)},
		{"Planned Budget", budget},
		{"Total Expenses", data.total},
	}
	row := 1
	for _, fact := range facts {
		if err := writeRow(f, sheet, row, fact...); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeHeader(f, sheet, row, style, "Member", "Total Paid", "Total Owed", "Net Balance"); err != nil {
		return err
	}
	for _, person := range data.people {
		row++
		if err := writeRow(f, sheet, row, displayName(person.User), person.TotalPaid, person.TotalOwed, person.NetBalance); err != nil {
			return err
		}
	}

	row += 2
	if err := writeRow(f, sheet, row, "Required Settlements:"); err != nil {
		return err
	}
	row++
	if err := writeHeader(f, sheet, row, style, "From", "To", "Amount"); err != nil {
		return err
	}
	for _, t := range data.transfers {
		row++
		if err := writeRow(f, sheet, row, displayName(data.refs.get(t.from)), displayName(data.refs.get(t.to)), t.amount); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "D", 18)
}

// createExpensesSheet lists every expense in payment order
func (s *ExportService) createExpensesSheet(f *excelize.File, data *tripExport) error {
	sheet := "Expenses"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, 1, style, "Date", "Category", "Description", "Paid To", "Paid By", "Amount", "Share", "Split Between"); err != nil {
		return err
	}

	for i, expense := range data.expenses {
		share, err := ShareOf(expense)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(expense.SplitBetween))
		for _, ref := range data.refs.list(expense.SplitBetween) {
			names = append(names, displayName(ref))
		}
		err = writeRow(f, sheet, i+2,
			expense.PaymentDate.In(s.loc).Format(utils.DateLayout),
			expense.Category,
			expense.Description,
			expense.PaidTo,
			displayName(data.refs.get(expense.PaidBy)),
			utils.RoundMoney(expense.Amount),
			utils.RoundMoney(share),
			strings.Join(names, ", "),
		)
		if err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "H", 14); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", 28)
}

// createCategoriesSheet totals the trip's spending per year and category
func (s *ExportService) createCategoriesSheet(f *excelize.File, data *tripExport) error {
	sheet := "Categories"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeader(f, sheet, 1, style, "Year", "Category", "Total"); err != nil {
		return err
	}
	for i, total := range groupByCategoryYear(data.expenses, s.loc) {
		if err := writeRow(f, sheet, i+2, total.Year, total.Category, total.TotalAmount); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "C", 16)
}

// ExportTripSummaryPDF renders the trip summary and member balances as a PDF
func (s *ExportService) ExportTripSummaryPDF(ctx context.Context, tripID, userID string) ([]byte, string, error) {
	defer newrelic.FromContext(ctx).StartSegment("export.ExportTripSummaryPDF").End()

	data, err := s.load(ctx, tripID, userID)
	if err != nil {
		return nil, "", err
	}
	trip := data.trip

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(trip.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(trip.Name))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if trip.Description != "" {
		pdf.MultiCell(0, 6, tr(trip.Description), "", "", false)
		pdf.Ln(4)
	}
	lines := []string{
		fmt.Sprintf("Dates          : %s to %s", trip.StartDate.Format(utils.DateLayout), trip.EndDate.Format(utils.DateLayout)),
		fmt.Sprintf("Days / Nights  : %d / %d", TotalDays(trip), TotalNights(trip)),
		fmt.Sprintf("Members        : %d", TotalMembers(trip)),
		fmt.Sprintf("Total expenses : %s", data.total.StringFixed(utils.MoneyPlaces)),
	}
	if trip.PlannedBudget.Valid {
		lines = append(lines, fmt.Sprintf("Planned budget : %s", trip.PlannedBudget.Decimal.StringFixed(utils.MoneyPlaces)))
	}
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}

	if places := PlacesToVisit(trip); len(places) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Places to visit")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 12)
		for i, place := range places {
			pdf.Cell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, place)))
			pdf.Ln(7)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	widths := []float64{70, 40, 40, 40}
	for i, h := range []string{"Member", "Paid", "Owed", "Net"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, person := range data.people {
		pdf.CellFormat(widths[0], 7, tr(displayName(person.User)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, person.TotalPaid.StringFixed(utils.MoneyPlaces), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, person.TotalOwed.StringFixed(utils.MoneyPlaces), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, person.NetBalance.StringFixed(utils.MoneyPlaces), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(data.transfers) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Suggested settlements")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, t := range data.transfers {
			line := fmt.Sprintf("%s pays %s %s",
				displayName(data.refs.get(t.from)),
				displayName(data.refs.get(t.to)),
				t.amount.StringFixed(utils.MoneyPlaces))
			pdf.Cell(0, 7, tr(line))
			pdf.Ln(7)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", utils.NewInternalError("failed to render pdf", err)
	}
	return buf.Bytes(), s.fileName(trip, "Summary", "pdf"), nil
}
