package pixpayment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/storefrontevents"
	"github.com/pixshop/storefront/services/telemetry"
)

type service struct {
	sessionStore mystore.Store[PaymentSession]
	handoffStore mystore.Store[checkoutapi.ConfirmationPayload]
	summaryStore mystore.Store[checkoutapi.TransactionSummary]
	gateway      Gateway
	sink         telemetry.Sink
	publisher    mypublisher.Publisher
	nower        mytime.Nower
	logger       mylog.Logger
	pollInterval time.Duration
	pollCeiling  time.Duration

	mutex   sync.Mutex
	pollers map[string]context.CancelFunc
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sessionStore mystore.Store[PaymentSession], handoffStore mystore.Store[checkoutapi.ConfirmationPayload], summaryStore mystore.Store[checkoutapi.TransactionSummary], gateway Gateway, sink telemetry.Sink, publisher mypublisher.Publisher, nower mytime.Nower, logger mylog.Logger, pollInterval time.Duration, pollCeiling time.Duration) *service {
	return &service{
		sessionStore: sessionStore,
		handoffStore: handoffStore,
		summaryStore: summaryStore,
		gateway:      gateway,
		sink:         sink,
		publisher:    publisher,
		nower:        nower,
		logger:       logger,
		pollInterval: pollInterval,
		pollCeiling:  pollCeiling,
		pollers:      map[string]context.CancelFunc{},
	}
}

// start consumes the confirmation payload of a completed checkout and asks
// the gateway for a PIX transaction. The payload slot is one-read: a second
// start for the same checkout finds nothing and reports redirect.
func (s *service) start(c context.Context, checkoutUID string) (PaymentSession, bool, error) {
	payload, found, err := s.handoffStore.Get(c, checkoutUID)
	if err != nil {
		return PaymentSession{}, false, fmt.Errorf("error fetching confirmation payload %s: %s", checkoutUID, err)
	}
	if !found {
		return PaymentSession{}, false, nil
	}

	err = s.handoffStore.Remove(c, checkoutUID)
	if err != nil {
		return PaymentSession{}, false, fmt.Errorf("error clearing confirmation payload %s: %s", checkoutUID, err)
	}

	session := PaymentSession{
		UID:           checkoutUID,
		AmountInCents: payload.TotalCents,
		Status:        StatusLoading,
		ShopperName:   payload.Identity.FullName,
		ShopperEmail:  payload.Identity.Email,
		ShopperTaxID:  payload.Identity.TaxID,
		CreatedAt:     s.nower.Now(),
	}
	err = s.sessionStore.Put(c, session.UID, session)
	if err != nil {
		return PaymentSession{}, false, fmt.Errorf("error storing payment session %s: %s", session.UID, err)
	}

	s.sink.Track(c, telemetry.AddPaymentInfo{ValueInCents: payload.TotalCents})

	resp, err := s.gateway.CreatePayment(c, CreatePaymentRequest{
		AmountInCents: payload.TotalCents,
		Customer: Customer{
			Name:  payload.Identity.FullName,
			Email: payload.Identity.Email,
			TaxID: payload.Identity.TaxID,
			Phone: payload.Identity.Phone,
		},
		Description: payload.Order.Description,
	})
	if err != nil {
		return s.fail(c, session, fmt.Sprintf("error creating payment: %s", err))
	}

	qrImage, err := qrImageDataURL(resp.PixCode)
	if err != nil {
		return s.fail(c, session, fmt.Sprintf("error rendering pix code: %s", err))
	}

	now := s.nower.Now()
	session.TransactionUID = resp.TransactionUID
	session.PixCode = resp.PixCode
	session.QRImage = qrImage
	session.ExpiresAt = resp.ExpiresAt
	session.Status = StatusAwaitingCustomerAction
	session.LastModified = &now

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		err := s.sessionStore.Put(c, session.UID, session)
		if err != nil {
			return fmt.Errorf("error storing payment session %s: %s", session.UID, err)
		}

		return s.publisher.Publish(c, storefrontevents.TopicName, storefrontevents.PixPaymentCreated{
			SessionUID:     session.UID,
			TransactionUID: session.TransactionUID,
			AmountInCents:  session.AmountInCents,
		})
	})
	if err != nil {
		return PaymentSession{}, false, err
	}

	s.sink.Track(c, telemetry.PixGenerated{
		TransactionUID: session.TransactionUID,
		ValueInCents:   session.AmountInCents,
	})

	s.logger.Log(c, session.UID, mylog.SeverityInfo, "Created pix transaction %s for %d cents, start polling", session.TransactionUID, session.AmountInCents)

	s.startPoller(session.UID, session.TransactionUID)

	return session, true, nil
}

// fail marks the session failed and reports it as a session state, not as an
// error: the shopper gets a retry prompt, nothing auto-retries.
func (s *service) fail(c context.Context, session PaymentSession, reason string) (PaymentSession, bool, error) {
	s.logger.Log(c, session.UID, mylog.SeverityWarn, "Payment %s failed: %s", session.UID, reason)

	now := s.nower.Now()
	session.Status = StatusFailed
	session.FailureReason = reason
	session.LastModified = &now

	err := s.sessionStore.Put(c, session.UID, session)
	if err != nil {
		return PaymentSession{}, false, fmt.Errorf("error storing payment session %s: %s", session.UID, err)
	}

	return session, true, nil
}

func (s *service) startPoller(uid string, transactionUID string) {
	pollCtx, cancel := context.WithCancel(context.Background())

	s.mutex.Lock()
	if previous, ok := s.pollers[uid]; ok {
		previous()
	}
	s.pollers[uid] = cancel
	s.mutex.Unlock()

	go s.poll(pollCtx, uid, transactionUID)
}

// poll asks the gateway for the transaction status on a fixed interval until
// it reports paid, the ceiling expires, or the poller is torn down. The loop
// is sequential, so at most one status request is in flight; ticks that
// arrive during a slow request are dropped by the ticker.
func (s *service) poll(c context.Context, uid string, transactionUID string) {
	defer s.stopPoller(uid)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	ceiling := time.NewTimer(s.pollCeiling)
	defer ceiling.Stop()

	for {
		select {
		case <-c.Done():
			return
		case <-ceiling.C:
			// deliberate: no state change, the shopper stays on the payment view
			s.logger.Log(c, uid, mylog.SeverityWarn, "Gave up polling payment %s after %s", uid, s.pollCeiling)
			return
		case <-ticker.C:
			status, err := s.gateway.GetStatus(c, transactionUID)
			if err != nil {
				// transport errors count as pending
				s.logger.Log(c, uid, mylog.SeverityDebug, "Error polling payment %s: %s", uid, err)
				continue
			}
			if status != TransactionStatusPaid {
				continue
			}

			err = s.confirm(c, uid)
			if err != nil {
				s.logger.Log(c, uid, mylog.SeverityError, "Error confirming payment %s: %s", uid, err)
			}
			return
		}
	}
}

func (s *service) stopPoller(uid string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if cancel, ok := s.pollers[uid]; ok {
		cancel()
		delete(s.pollers, uid)
	}
}

// confirm flips the session to its terminal success state and leaves a
// transaction summary in the handoff slot for the confirmation view.
func (s *service) confirm(c context.Context, uid string) error {
	session := PaymentSession{}
	found := false

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, found, err = s.sessionStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching payment session %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		now := s.nower.Now()
		session.Status = StatusConfirmed
		session.LastModified = &now

		err = s.sessionStore.Put(c, uid, session)
		if err != nil {
			return fmt.Errorf("error storing payment session %s: %s", uid, err)
		}

		err = s.summaryStore.Put(c, uid, checkoutapi.TransactionSummary{
			TransactionUID: session.TransactionUID,
			AmountInCents:  session.AmountInCents,
			ShopperName:    session.ShopperName,
			ShopperEmail:   session.ShopperEmail,
			ShopperTaxID:   session.ShopperTaxID,
			PaidAt:         now,
		})
		if err != nil {
			return fmt.Errorf("error storing transaction summary %s: %s", uid, err)
		}

		return s.publisher.Publish(c, storefrontevents.TopicName, storefrontevents.PixPaymentCompleted{
			SessionUID:     uid,
			TransactionUID: session.TransactionUID,
			AmountInCents:  session.AmountInCents,
			ShopperEmail:   session.ShopperEmail,
		})
	})
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.sink.Track(c, telemetry.CompleteRegistration{ValueInCents: session.AmountInCents})

	s.logger.Log(c, uid, mylog.SeverityInfo, "Payment %s confirmed", uid)

	return nil
}

func (s *service) get(c context.Context, uid string) (PaymentSession, bool, error) {
	return s.sessionStore.Get(c, uid)
}

// copyCode hands out the opaque PIX code for the clipboard. Pure side-effect
// utility: idempotent, no state change.
func (s *service) copyCode(c context.Context, uid string) (string, bool, error) {
	session, found, err := s.sessionStore.Get(c, uid)
	if err != nil || !found {
		return "", found, err
	}

	s.sink.Track(c, telemetry.PixCodeCopied{
		TransactionUID: session.TransactionUID,
		ValueInCents:   session.AmountInCents,
	})

	return session.PixCode, true, nil
}

// summary pops the transaction summary for a confirmed payment. One-read:
// the slot is cleared on first fetch.
func (s *service) summary(c context.Context, uid string) (checkoutapi.TransactionSummary, bool, error) {
	summary := checkoutapi.TransactionSummary{}
	found := false

	err := s.summaryStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		summary, found, err = s.summaryStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching transaction summary %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		return s.summaryStore.Remove(c, uid)
	})
	if err != nil {
		return checkoutapi.TransactionSummary{}, false, err
	}

	return summary, found, nil
}

// teardown cancels the polling loop and its ceiling timer together.
func (s *service) teardown(uid string) {
	s.stopPoller(uid)
}

// shutdown tears down every live poller. Called when the process exits.
func (s *service) shutdown() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for uid, cancel := range s.pollers {
		cancel()
		delete(s.pollers, uid)
	}
}
