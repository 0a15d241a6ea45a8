package addresslookup

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttpclient"
)

func TestResolve(t *testing.T) {

	t.Run("Known postal code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		resolver := NewResolver("https://viacep.com.br", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, "https://viacep.com.br/ws/01310100/json/", nil, nil).
			Return(200, []byte(`{
				"cep": "01310-100",
				"logradouro": "Avenida Paulista",
				"bairro": "Bela Vista",
				"localidade": "São Paulo",
				"uf": "SP"
			}`), nil)

		// when
		address, err := resolver.Resolve(context.TODO(), "01310100")

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Avenida Paulista", address.Street)
		assert.Equal(t, "Bela Vista", address.Neighborhood)
		assert.Equal(t, "São Paulo", address.City)
		assert.Equal(t, "SP", address.State)
	})

	t.Run("Unknown postal code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		resolver := NewResolver("https://viacep.com.br", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, "https://viacep.com.br/ws/99999999/json/", nil, nil).
			Return(200, []byte(`{"erro": true}`), nil)

		// when
		_, err := resolver.Resolve(context.TODO(), "99999999")

		// then
		assert.Error(t, err)
		assert.Equal(t, 404, myerrors.GetHTTPStatus(err))
	})

	t.Run("Malformed postal code is rejected without a lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		resolver := NewResolver("https://viacep.com.br", client)

		for _, postalCode := range []string{"", "1234567", "123456789", "01310-100", "abcdefgh"} {
			// when
			_, err := resolver.Resolve(context.TODO(), postalCode)

			// then
			assert.Error(t, err)
			assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
		}
	})

	t.Run("Upstream transport failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		resolver := NewResolver("https://viacep.com.br", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, "https://viacep.com.br/ws/01310100/json/", nil, nil).
			Return(0, []byte{}, fmt.Errorf("connection refused"))

		// when
		_, err := resolver.Resolve(context.TODO(), "01310100")

		// then
		assert.Error(t, err)
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
	})

	t.Run("Upstream error status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		resolver := NewResolver("https://viacep.com.br", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, "https://viacep.com.br/ws/01310100/json/", nil, nil).
			Return(500, []byte(`boom`), nil)

		// when
		_, err := resolver.Resolve(context.TODO(), "01310100")

		// then
		assert.Error(t, err)
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
	})
}
