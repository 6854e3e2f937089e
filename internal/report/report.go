package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/thrivenig/travelbook/internal/domain"
)

// Data is one assembled report: every ledger entry with requester names, plus
// the staff and administrator rosters.
type Data struct {
	GeneratedAt time.Time
	Flights     []domain.LedgerRow
	Staff       []domain.RoleProfile
	Admins      []domain.RoleProfile
}

type Requests interface {
	ReportRows(ctx context.Context) ([]domain.LedgerRow, error)
}

type Users interface {
	ListByKind(ctx context.Context, kind domain.RoleKind) ([]domain.RoleProfile, error)
}

// PDFRenderer turns rendered report HTML into a PDF document. The service
// falls back to plain HTML when no renderer is configured or rendering fails.
type PDFRenderer interface {
	Render(html []byte) ([]byte, error)
}

type Service struct {
	requests Requests
	users    Users
	pdf      PDFRenderer
}

type ServiceOption func(*Service)

func WithPDFRenderer(r PDFRenderer) ServiceOption {
	return func(s *Service) { s.pdf = r }
}

func NewService(requests Requests, users Users, opts ...ServiceOption) *Service {
	s := &Service{requests: requests, users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collect gathers the three report sections. Both administrator kinds land in
// the Admins section.
func (s *Service) Collect(ctx context.Context) (*Data, error) {
	flights, err := s.requests.ReportRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	staff, err := s.users.ListByKind(ctx, domain.RoleStaff)
	if err != nil {
		return nil, fmt.Errorf("staff roster: %w", err)
	}
	admins, err := s.users.ListByKind(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("admin roster: %w", err)
	}
	topAdmins, err := s.users.ListByKind(ctx, domain.RoleTopAdmin)
	if err != nil {
		return nil, fmt.Errorf("top admin roster: %w", err)
	}

	return &Data{
		GeneratedAt: time.Now(),
		Flights:     flights,
		Staff:       staff,
		Admins:      append(admins, topAdmins...),
	}, nil
}

var (
	flightHeader = []string{"First Name", "Last Name", "Origin", "Destination", "Departure Date", "Return Date", "Passengers", "Travel Class", "Price", "Approved"}
	rosterHeader = []string{"First Name", "Last Name", "Username", "Email", "Phone", "Approved"}
)

// WriteCSV writes the three sections into a single file, each with its own
// title row and header, separated by a blank line.
func WriteCSV(w io.Writer, data *Data) error {
	cw := csv.NewWriter(w)

	writeSection := func(title string, header []string, rows [][]string) error {
		if err := cw.Write([]string{title}); err != nil {
			return err
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return cw.Write([]string{})
	}

	if err := writeSection("Flight Requests", flightHeader, flightRows(data.Flights)); err != nil {
		return err
	}
	if err := writeSection("Staff", rosterHeader, rosterRows(data.Staff)); err != nil {
		return err
	}
	if err := writeSection("Administrators", rosterHeader, rosterRows(data.Admins)); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteExcel writes one workbook with a sheet per section.
func WriteExcel(w io.Writer, data *Data) error {
	file := excelize.NewFile()
	defer file.Close()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"Flight Requests", flightHeader, flightRows(data.Flights)},
		{"Staff", rosterHeader, rosterRows(data.Staff)},
		{"Administrators", rosterHeader, rosterRows(data.Admins)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := file.SetSheetName("Sheet1", sheet.name); err != nil {
				return err
			}
		} else {
			if _, err := file.NewSheet(sheet.name); err != nil {
				return err
			}
		}
		for col, title := range sheet.header {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet.name, cell, title); err != nil {
				return err
			}
		}
		for rowIdx, row := range sheet.rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				if err != nil {
					return err
				}
				if err := file.SetCellValue(sheet.name, cell, value); err != nil {
					return err
				}
			}
		}
	}

	return file.Write(w)
}

// RenderHTML renders the printable report page. It is both the browser view
// and the input to the PDF renderer.
func RenderHTML(w io.Writer, data *Data) error {
	return reportTmpl.Execute(w, data)
}

// RenderPDF renders the report as a PDF when a renderer is configured,
// otherwise serves the HTML page. The returned content type tells the caller
// which one it got.
func (s *Service) RenderPDF(w io.Writer, data *Data) (string, error) {
	var html bytes.Buffer
	if err := RenderHTML(&html, data); err != nil {
		return "", err
	}
	if s.pdf != nil {
		if pdf, err := s.pdf.Render(html.Bytes()); err == nil {
			_, werr := w.Write(pdf)
			return "application/pdf", werr
		}
	}
	_, err := w.Write(html.Bytes())
	return "text/html; charset=utf-8", err
}

func flightRows(flights []domain.LedgerRow) [][]string {
	rows := make([][]string, 0, len(flights))
	for _, f := range flights {
		returnDate := ""
		if f.ReturnDate != nil {
			returnDate = f.ReturnDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			f.FirstName,
			f.LastName,
			f.Origin,
			f.Destination,
			f.DepartureDate.Format("2006-01-02"),
			returnDate,
			strconv.Itoa(f.PassengerCount),
			f.TravelClass,
			formatPrice(f.PriceCents),
			formatBool(f.Approved),
		})
	}
	return rows
}

func rosterRows(profiles []domain.RoleProfile) [][]string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.FirstName,
			p.LastName,
			p.Username,
			p.Email,
			p.Phone,
			formatBool(p.ApprovalStatus),
		})
	}
	return rows
}

func formatPrice(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"price": formatPrice,
	"yesno": formatBool,
	"date": func(t any) string {
		switch v := t.(type) {
		case time.Time:
			return v.Format("2006-01-02")
		case *time.Time:
			if v != nil {
				return v.Format("2006-01-02")
			}
		}
		return ""
	},
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<title>Booking Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Booking Report</h1>
<p>Generated {{date .GeneratedAt}}</p>

<h2>Flight Requests</h2>
<table>
<tr><th>First Name</th><th>Last Name</th><th>Origin</th><th>Destination</th><th>Departure</th><th>Return</th><th>Passengers</th><th>Class</th><th>Price</th><th>Approved</th></tr>
{{range .Flights}}
<tr><td>{{.FirstName}}</td><td>{{.LastName}}</td><td>{{.Origin}}</td><td>{{.Destination}}</td><td>{{date .DepartureDate}}</td><td>{{if .ReturnDate}}{{date .ReturnDate}}{{end}}</td><td>{{.PassengerCount}}</td><td>{{.TravelClass}}</td><td>{{price .PriceCents}}</td><td>{{yesno .Approved}}</td></tr>
{{end}}
</table>

<h2>Staff</h2>
<table>
<tr><th>First Name</th><th>Last Name</th><th>Username</th><th>Email</th><th>Phone</th><th>Approved</th></tr>
{{range .Staff}}
<tr><td>{{.FirstName}}</td><td>{{.LastName}}</td><td>{{.Username}}</td><td>{{.Email}}</td><td>{{.Phone}}</td><td>{{yesno .ApprovalStatus}}</td></tr>
{{end}}
</table>

<h2>Administrators</h2>
<table>
<tr><th>First Name</th><th>Last Name</th><th>Username</th><th>Email</th><th>Phone</th><th>Approved</th></tr>
{{range .Admins}}
<tr><td>{{.FirstName}}</td><td>{{.LastName}}</td><td>{{.Username}}</td><td>{{.Email}}</td><td>{{.Phone}}</td><td>{{yesno .ApprovalStatus}}</td></tr>
{{end}}
</table>
</body>
</html>`
