package registration

import (
	"context"
	"fmt"

	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/services/storefrontevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.Subscribe(c, storefrontevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/registration/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", storefrontevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event storefrontevents.CheckoutStarted) error {
	return nil
}

func (s *service) OnCheckoutCompleted(c context.Context, topic string, event storefrontevents.CheckoutCompleted) error {
	return nil
}

func (s *service) OnPixPaymentCreated(c context.Context, topic string, event storefrontevents.PixPaymentCreated) error {
	return nil
}

func (s *service) OnRegistrationRecorded(c context.Context, topic string, event storefrontevents.RegistrationRecorded) error {
	return nil
}

// OnPixPaymentCompleted marks the registration of the paying shopper as paid,
// carrying the gateway transaction id as the pix reference.
func (s *service) OnPixPaymentCompleted(c context.Context, topic string, event storefrontevents.PixPaymentCompleted) error {
	s.logger.Log(c, event.SessionUID, mylog.SeverityInfo, "Webhook: pix payment %s completed for %s", event.TransactionUID, event.ShopperEmail)

	record, found, err := s.getByEmail(c, event.ShopperEmail)
	if err != nil {
		return err
	}
	if !found {
		// a payment can complete for a shopper who never registered
		return nil
	}
	if record.IsPaid {
		// must be idempotent
		return nil
	}

	_, _, err = s.markPaid(c, record.UID, event.TransactionUID)

	return err
}
