package email

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"strings"
)

const (
	subjectApproval     = "Your Flight Booking Has Been Approved"
	subjectConfirmation = "Flight Order From Online Booking Tool"
	subjectPending      = "Flight Approval Pending"
	subjectHotel        = "Hotel Booking Confirmation from Online Booking Tool"
)

// FlightContext is the template context shared by the three messages.
type FlightContext struct {
	FirstName      string
	LastName       string
	Origin         string
	Destination    string
	DepartureDate  string
	ReturnDate     string
	PassengerCount int
	Price          string
	Records        []string
}

// HotelContext is the template context of the hotel confirmation message.
type HotelContext struct {
	Username       string
	HotelName      string
	CheckInDate    string
	CheckOutDate   string
	RoomType       string
	BookingID      string
	ConfirmationID string
	TotalPrice     string
	Currency       string
}

// Dispatcher renders the fixed message set and hands it to the configured
// sender. It holds no state beyond the parsed templates and the operations
// mailbox for pending notices.
type Dispatcher struct {
	sender     Sender
	opsMailbox string
}

func NewDispatcher(sender Sender, opsMailbox string) *Dispatcher {
	return &Dispatcher{sender: sender, opsMailbox: opsMailbox}
}

var (
	approvalTmpl = template.Must(template.New("approval").Parse(approvalHTML))
	bookingTmpl  = template.Must(template.New("booking").Parse(bookingHTML))
	pendingTmpl  = template.Must(template.New("pending").Parse(pendingHTML))
	hotelTmpl    = template.Must(template.New("hotel").Parse(hotelHTML))
)

// RequestApproved tells the requester an administrator approved their entry.
func (d *Dispatcher) RequestApproved(ctx context.Context, to string, data FlightContext) error {
	return d.render(ctx, approvalTmpl, subjectApproval, []string{to}, data, false)
}

// BookingConfirmed carries the passenger name records of a placed order.
func (d *Dispatcher) BookingConfirmed(ctx context.Context, to string, data FlightContext) error {
	return d.render(ctx, bookingTmpl, subjectConfirmation, []string{to}, data, false)
}

// BookingDeferred is the simplified message sent when the order could not be
// placed: same template, no records.
func (d *Dispatcher) BookingDeferred(ctx context.Context, to string, data FlightContext) error {
	data.Records = nil
	return d.render(ctx, bookingTmpl, subjectConfirmation, []string{to}, data, false)
}

// ApprovalPending notifies the operations mailbox that an unapproved tuple
// was submitted for booking.
func (d *Dispatcher) ApprovalPending(ctx context.Context, data FlightContext) error {
	return d.render(ctx, pendingTmpl, subjectPending, []string{d.opsMailbox}, data, true)
}

// HotelBookingConfirmed notifies the operations mailbox of a placed hotel
// booking, with a plain-text alternative.
func (d *Dispatcher) HotelBookingConfirmed(ctx context.Context, data HotelContext) error {
	return d.render(ctx, hotelTmpl, subjectHotel, []string{d.opsMailbox}, data, true)
}

func (d *Dispatcher) render(ctx context.Context, tmpl *template.Template, subject string, to []string, data any, withText bool) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	html := buf.String()

	text := ""
	if withText {
		text = stripTags(html)
	}
	return d.sender.Send(ctx, subject, to, html, text)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}

const approvalHTML = `<html><body>
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Your flight booking request from <strong>{{.Origin}}</strong> to <strong>{{.Destination}}</strong>
departing on {{.DepartureDate}} has been approved.</p>
<p>You can now complete your booking from the portal.</p>
</body></html>`

const bookingHTML = `<html><body>
<p>Dear {{.FirstName}} {{.LastName}},</p>
<p>Your flight order from <strong>{{.Origin}}</strong> to <strong>{{.Destination}}</strong>
departing on {{.DepartureDate}}{{if .ReturnDate}}, returning {{.ReturnDate}}{{end}} has been received.</p>
{{if .Records}}<p>Passenger name record(s):</p><ul>{{range .Records}}<li>{{.}}</li>{{end}}</ul>
{{else}}<p>Your booking details will follow in a separate email.</p>{{end}}
</body></html>`

const pendingHTML = `<html><body>
<p>A booking was attempted for an itinerary that is still awaiting approval.</p>
<p>{{.FirstName}} {{.LastName}}: {{.Origin}} to {{.Destination}} on {{.DepartureDate}}{{if .ReturnDate}}, returning {{.ReturnDate}}{{end}},
{{.PassengerCount}} passenger(s), price {{.Price}}.</p>
</body></html>`

const hotelHTML = `<html><body>
<p>A hotel booking was placed by {{.Username}}.</p>
<p><strong>{{.HotelName}}</strong>, {{.RoomType}} room,
checking in {{.CheckInDate}}, checking out {{.CheckOutDate}}.</p>
<p>Booking id {{.BookingID}}, provider confirmation {{.ConfirmationID}},
total {{.TotalPrice}} {{.Currency}}.</p>
</body></html>`
