package storefrontevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myevents"
)

const (
	TopicName                = "storefront"
	checkoutStartedName      = TopicName + ".checkout.started"
	checkoutCompletedName    = TopicName + ".checkout.completed"
	pixPaymentCreatedName    = TopicName + ".pixpayment.created"
	pixPaymentCompletedName  = TopicName + ".pixpayment.completed"
	registrationRecordedName = TopicName + ".registration.recorded"
)

type StorefrontEventService interface {
	Subscribe(c context.Context) error
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnCheckoutCompleted(c context.Context, topic string, event CheckoutCompleted) error
	OnPixPaymentCreated(c context.Context, topic string, event PixPaymentCreated) error
	OnPixPaymentCompleted(c context.Context, topic string, event PixPaymentCompleted) error
	OnRegistrationRecorded(c context.Context, topic string, event RegistrationRecorded) error
}

func DispatchEvent(c context.Context, reader io.Reader, service StorefrontEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		{
			event := CheckoutStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutStarted(c, envelope.Topic, event)
		}
	case checkoutCompletedName:
		{
			event := CheckoutCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutCompleted(c, envelope.Topic, event)
		}
	case pixPaymentCreatedName:
		{
			event := PixPaymentCreated{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPixPaymentCreated(c, envelope.Topic, event)
		}
	case pixPaymentCompletedName:
		{
			event := PixPaymentCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnPixPaymentCompleted(c, envelope.Topic, event)
		}
	case registrationRecordedName:
		{
			event := RegistrationRecorded{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnRegistrationRecorded(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event type %s", envelope.EventTypeName))
	}
}

type CheckoutStarted struct {
	CheckoutUID   string
	AmountInCents int64
	Quantity      int
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.CheckoutUID
}

type CheckoutCompleted struct {
	CheckoutUID   string
	AmountInCents int64
	ShopperEmail  string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.CheckoutUID
}

type PixPaymentCreated struct {
	SessionUID     string
	TransactionUID string
	AmountInCents  int64
}

func (e PixPaymentCreated) GetEventTypeName() string {
	return pixPaymentCreatedName
}

func (e PixPaymentCreated) GetAggregateName() string {
	return e.SessionUID
}

type PixPaymentCompleted struct {
	SessionUID     string
	TransactionUID string
	AmountInCents  int64
	ShopperEmail   string
}

func (e PixPaymentCompleted) GetEventTypeName() string {
	return pixPaymentCompletedName
}

func (e PixPaymentCompleted) GetAggregateName() string {
	return e.SessionUID
}

type RegistrationRecorded struct {
	RegistrationUID string
	ShopperEmail    string
	AmountInCents   int64
}

func (e RegistrationRecorded) GetEventTypeName() string {
	return registrationRecordedName
}

func (e RegistrationRecorded) GetAggregateName() string {
	return e.RegistrationUID
}
