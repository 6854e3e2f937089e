package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/email"
	"github.com/thrivenig/travelbook/internal/kafka"
	"github.com/thrivenig/travelbook/internal/repository"
	"github.com/thrivenig/travelbook/pkg/logger"
)

var (
	ErrInvalidPayload   = amadeus.ErrInvalidPayload
	ErrNotApprovedAdmin = errors.New("caller is not an approved administrator")
)

type BookingUseCase interface {
	CreateRequest(ctx context.Context, identityID int64, payload []byte) (*domain.FlightRequest, json.RawMessage, error)
	ApproveRequests(ctx context.Context, callerID int64, ids []int64) ([]domain.FlightRequest, error)
	Book(ctx context.Context, callerID int64, payload []byte) (*BookResult, error)
	PendingRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error)
	ApprovedRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error)
	PendingApprovals(ctx context.Context) ([]domain.FlightRequest, error)
}

// Provider is the slice of the external booking API the workflow consumes.
type Provider interface {
	GetAccessToken(ctx context.Context) (string, error)
	ConfirmPricing(ctx context.Context, token string, offer json.RawMessage) (json.RawMessage, error)
	SubmitOrder(ctx context.Context, token string, confirmedOffers json.RawMessage, travelers []amadeus.Traveler) (*domain.OrderRecord, error)
}

// Notifier is the synchronous email channel. RequestApproved and
// ApprovalPending failures abort the in-progress request; BookingDeferred is
// fire-and-forget because the lenient outcome has already been committed to.
type Notifier interface {
	RequestApproved(ctx context.Context, to string, data email.FlightContext) error
	BookingConfirmed(ctx context.Context, to string, data email.FlightContext) error
	BookingDeferred(ctx context.Context, to string, data email.FlightContext) error
	ApprovalPending(ctx context.Context, data email.FlightContext) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// IdentityDirectory resolves ledger owners and the caller's role for the
// approval gate. repository.UserRepository satisfies it.
type IdentityDirectory interface {
	GetIdentity(ctx context.Context, id int64) (*domain.Identity, error)
	RoleByIdentity(ctx context.Context, identityID int64) (*domain.Role, error)
}

// BookResult is the outcome of a booking attempt. Owner is the matched
// ledger entry's owner, who receives the confirmation even when someone else
// triggered the booking.
type BookResult struct {
	Outcome domain.Outcome
	Request *domain.FlightRequest
	Match   *domain.FlightRequest
	Owner   *domain.Identity
	Order   *domain.OrderRecord
}

type BookingService struct {
	requests    repository.RequestRepository
	pricing     repository.PricingRepository
	directory   IdentityDirectory
	provider    Provider
	notifier    Notifier
	producer    Producer
	eventsTopic string
	log         logger.Logger
}

type BookingServiceOption func(*BookingService)

func WithEventsTopic(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func NewBookingService(
	requests repository.RequestRepository,
	pricing repository.PricingRepository,
	directory IdentityDirectory,
	provider Provider,
	notifier Notifier,
	log logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		requests:  requests,
		pricing:   pricing,
		directory: directory,
		provider:  provider,
		notifier:  notifier,
		log:       log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateRequest decodes a chosen offer, applies the current markup and
// upserts the ledger entry. Creating an identical tuple twice leaves exactly
// one stored row. The returned raw payload is the normalized offer for
// re-posting to the provider.
func (s *BookingService) CreateRequest(ctx context.Context, identityID int64, payload []byte) (*domain.FlightRequest, json.RawMessage, error) {
	offer, raw, err := amadeus.DecodeOffer(payload)
	if err != nil {
		return nil, nil, err
	}
	facts, err := amadeus.ExtractFacts(offer)
	if err != nil {
		return nil, nil, err
	}

	price, err := decimal.NewFromString(facts.PriceTotal)
	if err != nil {
		return nil, nil, ErrInvalidPayload
	}
	markup, err := s.pricing.Markup(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load markup: %w", err)
	}
	priceCents := price.Mul(markup).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	request := &domain.FlightRequest{
		IdentityID: identityID,
		Itinerary: domain.Itinerary{
			Origin:         facts.Origin,
			Destination:    facts.Destination,
			DepartureDate:  facts.DepartureDate,
			ReturnDate:     facts.ReturnDate,
			PassengerCount: facts.PassengerCount,
			TravelClass:    facts.TravelClass,
			PriceCents:     priceCents,
		},
	}

	created, err := s.requests.Upsert(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	if created {
		s.publish(ctx, "request_created", request, "", "")
	}
	return request, raw, nil
}

// ApproveRequests flips the approved flag on the given ledger entries and
// notifies each requester. Only an identity holding an approved
// administrator role may call it. Re-approving an already-approved entry
// changes nothing except that the notification is sent again.
func (s *BookingService) ApproveRequests(ctx context.Context, callerID int64, ids []int64) ([]domain.FlightRequest, error) {
	caller, err := s.directory.RoleByIdentity(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("caller role: %w", err)
	}
	if !caller.IsAdminKind() || !caller.ApprovalStatus {
		return nil, ErrNotApprovedAdmin
	}

	approved, err := s.requests.Approve(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, request := range approved {
		owner, err := s.directory.GetIdentity(ctx, request.IdentityID)
		if err != nil {
			return nil, fmt.Errorf("ledger owner: %w", err)
		}
		if err := s.notifier.RequestApproved(ctx, owner.Email, s.notificationContext(ctx, &request)); err != nil {
			return nil, err
		}
		s.publish(ctx, "request_approved", &request, "", "")
	}
	return approved, nil
}

// Book attempts the Approved -> Booked transition. The submitted offer is
// first recorded in the ledger, then matched against approved entries of any
// identity. A matched entry is claimed before any provider call so two
// concurrent attempts cannot both submit an order. Failures after a match
// never surface as errors: the caller gets OutcomeDeferred and the owner a
// simplified email.
func (s *BookingService) Book(ctx context.Context, callerID int64, payload []byte) (*BookResult, error) {
	request, raw, err := s.CreateRequest(ctx, callerID, payload)
	if err != nil {
		return nil, err
	}

	match, err := s.requests.FindApprovedMatch(ctx, request.Itinerary)
	if err != nil {
		return nil, err
	}

	if match == nil {
		if err := s.notifier.ApprovalPending(ctx, s.notificationContext(ctx, request)); err != nil {
			return nil, err
		}
		s.publish(ctx, "request_pending", request, string(domain.OutcomePending), "")
		return &BookResult{Outcome: domain.OutcomePending, Request: request}, nil
	}

	owner, err := s.directory.GetIdentity(ctx, match.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("ledger owner: %w", err)
	}

	claimant := fmt.Sprintf("identity:%d:%s", callerID, uuid.NewString())
	claimed, err := s.requests.Claim(ctx, match.ID, claimant)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Another attempt holds the claim; fall back to the lenient outcome
		// without touching it.
		return s.deferred(ctx, request, match, owner, nil, false, errors.New("entry already claimed")), nil
	}

	token, err := s.provider.GetAccessToken(ctx)
	if err != nil {
		return s.deferred(ctx, request, match, owner, nil, true, err), nil
	}

	confirmed, err := s.provider.ConfirmPricing(ctx, token, raw)
	if err != nil {
		return s.deferred(ctx, request, match, owner, nil, true, err), nil
	}

	order, err := s.provider.SubmitOrder(ctx, token, confirmed, []amadeus.Traveler{amadeus.DefaultTraveler()})
	if err != nil {
		return s.deferred(ctx, request, match, owner, nil, true, err), nil
	}

	nctx := s.notificationContext(ctx, match)
	nctx.Records = order.References
	if err := s.notifier.BookingConfirmed(ctx, owner.Email, nctx); err != nil {
		// The order is placed; the claim stays so the entry is not consumed twice.
		return s.deferred(ctx, request, match, owner, order, false, err), nil
	}

	// The claim only serializes the in-flight provider sequence. An approved
	// entry satisfies any number of identical requests, so it is released once
	// the booking completes.
	if err := s.requests.ReleaseClaim(ctx, match.ID); err != nil {
		s.log.Error("release claim failed", "request_id", match.ID, "error", err)
	}

	s.publish(ctx, "request_booked", match, string(domain.OutcomeBooked), order.ID)
	return &BookResult{Outcome: domain.OutcomeBooked, Request: request, Match: match, Owner: owner, Order: order}, nil
}

func (s *BookingService) PendingRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error) {
	return s.requests.ListByIdentity(ctx, identityID, false)
}

func (s *BookingService) ApprovedRequests(ctx context.Context, identityID int64) ([]domain.FlightRequest, error) {
	return s.requests.ListByIdentity(ctx, identityID, true)
}

func (s *BookingService) PendingApprovals(ctx context.Context) ([]domain.FlightRequest, error) {
	return s.requests.ListPending(ctx)
}

// deferred commits the lenient failure policy: the entry stays approved, the
// owner gets the simplified email, and the caller is told the booking
// succeeded. Email or publish failures here are logged, not surfaced.
func (s *BookingService) deferred(ctx context.Context, request, match *domain.FlightRequest, owner *domain.Identity, order *domain.OrderRecord, releaseClaim bool, cause error) *BookResult {
	s.log.Error("booking deferred", "request_id", match.ID, "owner", owner.Username, "error", cause)

	if releaseClaim {
		if err := s.requests.ReleaseClaim(ctx, match.ID); err != nil {
			s.log.Error("release claim failed", "request_id", match.ID, "error", err)
		}
	}
	if err := s.notifier.BookingDeferred(ctx, owner.Email, s.notificationContext(ctx, match)); err != nil {
		s.log.Error("deferred email failed", "request_id", match.ID, "error", err)
	}
	s.publish(ctx, "request_deferred", match, string(domain.OutcomeDeferred), "")

	return &BookResult{Outcome: domain.OutcomeDeferred, Request: request, Match: match, Owner: owner, Order: order}
}

func (s *BookingService) notificationContext(ctx context.Context, request *domain.FlightRequest) email.FlightContext {
	nctx := email.FlightContext{
		Origin:         request.Origin,
		Destination:    request.Destination,
		DepartureDate:  request.DepartureDate.Format("2006-01-02"),
		PassengerCount: request.PassengerCount,
		Price:          decimal.NewFromInt(request.PriceCents).Div(decimal.NewFromInt(100)).StringFixed(2),
	}
	if request.ReturnDate != nil {
		nctx.ReturnDate = request.ReturnDate.Format("2006-01-02")
	}
	if role, err := s.directory.RoleByIdentity(ctx, request.IdentityID); err == nil {
		nctx.FirstName = role.FirstName
		nctx.LastName = role.LastName
	}
	return nctx
}

func (s *BookingService) publish(ctx context.Context, eventType string, request *domain.FlightRequest, outcome, orderID string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.RequestEvent{
		Type:           eventType,
		RequestID:      request.ID,
		IdentityID:     request.IdentityID,
		Origin:         request.Origin,
		Destination:    request.Destination,
		DepartureDate:  request.DepartureDate,
		PassengerCount: request.PassengerCount,
		TravelClass:    request.TravelClass,
		PriceCents:     request.PriceCents,
		Outcome:        outcome,
		OrderID:        orderID,
	}
	key := fmt.Sprintf("%d", request.ID)
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		s.log.Warn("publish event failed", "type", eventType, "request_id", request.ID, "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
