package shopfront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/telemetry"
)

func TestShopfrontService(t *testing.T) {

	t.Run("Product page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, sink, _, _ := setup(t, ctrl)

		// given
		sink.EXPECT().Track(gomock.Any(), telemetry.PageView{PageName: "product"})

		// when
		request, err := http.NewRequest(http.MethodGet, "/", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "Pijama Coloriaê")
		assert.Contains(t, got, "12 ANOS")
		assert.Contains(t, got, "R$ 167,00")
	})

	t.Run("Create cart starts with quantity one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cartStore, _, nower, uuider := setup(t, ctrl)

		// given
		uuider.EXPECT().Create().Return("cart-1")
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodPost, "/cart", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/cart/cart-1", response.Header().Get("Location"))

		cart, exists, _ := cartStore.Get(ctx, "cart-1")
		assert.True(t, exists)
		assert.Equal(t, 1, cart.Quantity)
	})

	t.Run("Cart page shows total for quantity two", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cartStore, sink, _, _ := setup(t, ctrl)

		// given
		_ = cartStore.Put(ctx, "cart-1", Cart{UID: "cart-1", Product: theProduct, Quantity: 2})
		sink.EXPECT().Track(gomock.Any(), telemetry.InitiateCheckout{ValueInCents: 33400, Quantity: 2})

		// when
		request, err := http.NewRequest(http.MethodGet, "/cart/cart-1", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "R$ 334,00")
		assert.Contains(t, got, `name="unitPriceCents" value="16700"`)
		assert.Contains(t, got, `name="quantity" value="2"`)
	})

	t.Run("Decrement from one stays at one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cartStore, _, nower, _ := setup(t, ctrl)

		// given
		_ = cartStore.Put(ctx, "cart-1", Cart{UID: "cart-1", Product: theProduct, Quantity: 1})
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodPost, "/cart/cart-1/decrement", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 303, response.Code)

		cart, _, _ := cartStore.Get(ctx, "cart-1")
		assert.Equal(t, 1, cart.Quantity)
	})

	t.Run("Increment raises quantity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cartStore, _, nower, _ := setup(t, ctrl)

		// given
		_ = cartStore.Put(ctx, "cart-1", Cart{UID: "cart-1", Product: theProduct, Quantity: 1})
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodPost, "/cart/cart-1/increment", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 303, response.Code)

		cart, _, _ := cartStore.Get(ctx, "cart-1")
		assert.Equal(t, 2, cart.Quantity)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[Cart], *telemetry.MockSink, *mytime.MockNower, *myuuid.MockUUIDer) {
	c := context.TODO()
	cartStore, _, _ := mystore.New[Cart](c)
	sink := telemetry.NewMockSink(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)

	sut := NewWebService(cartStore, sink, nower, uuider)
	router := mux.NewRouter()

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, cartStore, sink, nower, uuider
}
