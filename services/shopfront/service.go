package shopfront

import (
	"context"
	"fmt"

	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
)

type service struct {
	cartStore mystore.Store[Cart]
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cartStore mystore.Store[Cart], nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		cartStore: cartStore,
		nower:     nower,
		uuider:    uuider,
		logger:    logger,
	}
}

func (s *service) createCart(c context.Context) (Cart, error) {
	cart := Cart{
		UID:       s.uuider.Create(),
		Product:   theProduct,
		Quantity:  1,
		CreatedAt: s.nower.Now(),
	}

	err := s.cartStore.Put(c, cart.UID, cart)
	if err != nil {
		return Cart{}, fmt.Errorf("error storing cart: %s", err)
	}

	return cart, nil
}

func (s *service) getCart(c context.Context, uid string) (Cart, bool, error) {
	return s.cartStore.Get(c, uid)
}

// adjustQuantity adds delta to the cart's quantity, clamped at a minimum of
// one: decrementing from one leaves it at one.
func (s *service) adjustQuantity(c context.Context, uid string, delta int) (Cart, bool, error) {
	cart := Cart{}
	found := false

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, found, err = s.cartStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching cart %s: %s", uid, err)
		}
		if !found {
			return nil
		}

		cart.Quantity += delta
		if cart.Quantity < 1 {
			cart.Quantity = 1
		}
		now := s.nower.Now()
		cart.LastModified = &now

		return s.cartStore.Put(c, uid, cart)
	})
	if err != nil {
		return Cart{}, false, err
	}

	return cart, found, nil
}
