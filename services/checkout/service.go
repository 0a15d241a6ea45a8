package checkout

import (
	"context"
	"fmt"

	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/addresslookup"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/storefrontevents"
)

type service struct {
	sessionStore mystore.Store[CheckoutSession]
	handoffStore mystore.Store[checkoutapi.ConfirmationPayload]
	resolver     addresslookup.Resolver
	publisher    mypublisher.Publisher
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sessionStore mystore.Store[CheckoutSession], handoffStore mystore.Store[checkoutapi.ConfirmationPayload], resolver addresslookup.Resolver, publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		sessionStore: sessionStore,
		handoffStore: handoffStore,
		resolver:     resolver,
		publisher:    publisher,
		nower:        nower,
		uuider:       uuider,
		logger:       logger,
	}
}

func (s *service) create(c context.Context, order checkoutapi.OrderLine) (CheckoutSession, error) {
	if order.Quantity < 1 {
		order.Quantity = 1
	}

	session := CheckoutSession{
		UID:        s.uuider.Create(),
		Step:       StepIdentity,
		Order:      order,
		TotalCents: order.TotalCents(),
		CreatedAt:  s.nower.Now(),
	}

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		err := s.sessionStore.Put(c, session.UID, session)
		if err != nil {
			return fmt.Errorf("error storing checkout session: %s", err)
		}

		return s.publisher.Publish(c, storefrontevents.TopicName, storefrontevents.CheckoutStarted{
			CheckoutUID:   session.UID,
			AmountInCents: session.TotalCents,
			Quantity:      order.Quantity,
		})
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	s.logger.Log(c, session.UID, mylog.SeverityInfo, "Started checkout %s for %d cents", session.UID, session.TotalCents)

	return session, nil
}

func (s *service) get(c context.Context, uid string) (CheckoutSession, bool, error) {
	return s.sessionStore.Get(c, uid)
}

// submitIdentity guards the Identity to Delivery transition. All four rules
// are evaluated together; any failure leaves the session untouched.
func (s *service) submitIdentity(c context.Context, uid string, identity checkoutapi.CustomerIdentity) (CheckoutSession, FieldErrors, bool, error) {
	fieldErrors := validateIdentity(identity)

	session := CheckoutSession{}
	found := false

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, found, err = s.sessionStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching checkout session %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		session.Identity = identity
		if !fieldErrors.IsEmpty() {
			// keep entered data but do not advance
			return nil
		}

		now := s.nower.Now()
		session.Step = StepDelivery
		session.LastModified = &now

		return s.sessionStore.Put(c, uid, session)
	})
	if err != nil {
		return CheckoutSession{}, nil, false, err
	}

	return session, fieldErrors, found, nil
}

// resolveAddress looks up the postal code and stores the outcome on the
// session. An unresolved postal code is remembered as such, so the delivery
// guard keeps blocking until a later lookup succeeds.
func (s *service) resolveAddress(c context.Context, uid string, postalCode string) (CheckoutSession, bool, error) {
	resolved, resolveErr := s.resolver.Resolve(c, postalCode)

	session := CheckoutSession{}
	found := false

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, found, err = s.sessionStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching checkout session %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		session.Address.PostalCode = postalCode
		session.Address.Resolved = resolveErr == nil
		session.Address.Street = resolved.Street
		session.Address.Neighborhood = resolved.Neighborhood
		session.Address.City = resolved.City
		session.Address.State = resolved.State
		now := s.nower.Now()
		session.LastModified = &now

		return s.sessionStore.Put(c, uid, session)
	})
	if err != nil {
		return CheckoutSession{}, false, err
	}
	if !found {
		return CheckoutSession{}, false, nil
	}
	if resolveErr != nil {
		return session, true, resolveErr
	}

	return session, true, nil
}

// submitDelivery guards the Delivery to PaymentHandoff transition. On success
// the session is frozen into a ConfirmationPayload and written to the
// one-read handoff slot for the payment stage.
func (s *service) submitDelivery(c context.Context, uid string, houseNumber string, complement string) (CheckoutSession, FieldErrors, bool, error) {
	session := CheckoutSession{}
	found := false
	fieldErrors := FieldErrors{}

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, found, err = s.sessionStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching checkout session %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		session.Address.HouseNumber = houseNumber
		session.Address.Complement = complement

		fieldErrors = validateDelivery(session.Address)
		if !fieldErrors.IsEmpty() {
			return nil
		}

		now := s.nower.Now()
		session.Step = StepPaymentHandoff
		session.LastModified = &now

		err = s.sessionStore.Put(c, uid, session)
		if err != nil {
			return fmt.Errorf("error storing checkout session %s: %s", uid, err)
		}

		err = s.handoffStore.Put(c, uid, checkoutapi.ConfirmationPayload{
			CheckoutUID: session.UID,
			Identity:    session.Identity,
			Address:     session.Address,
			Order:       session.Order,
			TotalCents:  session.TotalCents,
			CreatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("error storing confirmation payload %s: %s", uid, err)
		}

		return s.publisher.Publish(c, storefrontevents.TopicName, storefrontevents.CheckoutCompleted{
			CheckoutUID:   session.UID,
			AmountInCents: session.TotalCents,
			ShopperEmail:  session.Identity.Email,
		})
	})
	if err != nil {
		return CheckoutSession{}, nil, false, err
	}

	if found && fieldErrors.IsEmpty() {
		s.logger.Log(c, uid, mylog.SeverityInfo, "Completed checkout %s, handed off to payment", uid)
	}

	return session, fieldErrors, found, nil
}

// back moves one step backwards without losing collected data.
func (s *service) back(c context.Context, uid string) (CheckoutSession, bool, error) {
	session := CheckoutSession{}
	found := false

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, found, err = s.sessionStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching checkout session %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		switch session.Step {
		case StepDelivery:
			session.Step = StepIdentity
		case StepPaymentHandoff:
			session.Step = StepDelivery
		default:
			return nil
		}

		now := s.nower.Now()
		session.LastModified = &now

		return s.sessionStore.Put(c, uid, session)
	})
	if err != nil {
		return CheckoutSession{}, false, err
	}

	return session, found, nil
}
