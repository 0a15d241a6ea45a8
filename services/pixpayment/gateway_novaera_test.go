package pixpayment

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttpclient"
)

func TestNovaEraGateway(t *testing.T) {

	t.Run("Create payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		gateway := NewGateway("https://api.example.com", "pk_test", "sk_test", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodPost, "https://api.example.com/api/v1/transactions", gomock.Any(), gomock.Any()).
			DoAndReturn(func(c context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error) {
				// basic auth over the key pair
				assert.Equal(t, "Basic cGtfdGVzdDpza190ZXN0", headers["Authorization"])

				req := wireCreateRequest{}
				assert.NoError(t, json.Unmarshal(body, &req))
				assert.Equal(t, int64(33400), req.Amount)
				assert.Equal(t, "pix", req.PaymentMethod)
				assert.Equal(t, "52998224725", req.Customer.Document.Number)
				assert.Equal(t, "cpf", req.Customer.Document.Type)
				assert.Equal(t, "11987654321", req.Customer.Phone)
				assert.Len(t, req.Items, 1)
				assert.Equal(t, int64(33400), req.Items[0].UnitPrice)

				return 200, []byte(`{
					"data": {
						"id": 456,
						"status": "pending",
						"amount": 33400,
						"pix": {
							"qrcode": "00020126pixcode",
							"expirationDate": "2026-02-28T23:58:59Z"
						}
					}
				}`), nil
			})

		// when
		resp, err := gateway.CreatePayment(context.TODO(), CreatePaymentRequest{
			AmountInCents: 33400,
			Customer: Customer{
				Name:  "Maria Silva",
				Email: "maria@gmail.com",
				TaxID: "529.982.247-25",
				Phone: "(11) 98765-4321",
			},
			Description: "Vestido Marias",
		})

		// then
		assert.NoError(t, err)
		assert.Equal(t, "456", resp.TransactionUID)
		assert.Equal(t, TransactionStatusPending, resp.Status)
		assert.Equal(t, int64(33400), resp.AmountInCents)
		assert.Equal(t, "00020126pixcode", resp.PixCode)
		assert.Equal(t, 2026, resp.ExpiresAt.Year())
	})

	t.Run("Business refusal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		gateway := NewGateway("https://api.example.com", "pk_test", "sk_test", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(200, []byte(`{"success": false, "message": "invalid document"}`), nil)

		// when
		_, err := gateway.CreatePayment(context.TODO(), CreatePaymentRequest{AmountInCents: 100})

		// then
		assert.Error(t, err)
		assert.Equal(t, 400, myerrors.GetHTTPStatus(err))
	})

	t.Run("Upstream error status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		gateway := NewGateway("https://api.example.com", "pk_test", "sk_test", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodPost, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(500, []byte(`{}`), nil)

		// when
		_, err := gateway.CreatePayment(context.TODO(), CreatePaymentRequest{AmountInCents: 100})

		// then
		assert.Error(t, err)
		assert.Equal(t, 503, myerrors.GetHTTPStatus(err))
	})

	t.Run("Get status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		gateway := NewGateway("https://api.example.com", "pk_test", "sk_test", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, "https://api.example.com/api/v1/transactions/456", gomock.Any(), nil).
			Return(200, []byte(`{"data": {"id": 456, "status": "paid"}}`), nil)

		// when
		status, err := gateway.GetStatus(context.TODO(), "456")

		// then
		assert.NoError(t, err)
		assert.Equal(t, TransactionStatusPaid, status)
	})

	t.Run("Get status without a status field reads as pending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		client := myhttpclient.NewMockHTTPSender(ctrl)
		gateway := NewGateway("https://api.example.com", "pk_test", "sk_test", client)

		// given
		client.EXPECT().Send(gomock.Any(), http.MethodGet, gomock.Any(), gomock.Any(), nil).
			Return(200, []byte(`{"data": {"id": 456}}`), nil)

		// when
		status, err := gateway.GetStatus(context.TODO(), "456")

		// then
		assert.NoError(t, err)
		assert.Equal(t, TransactionStatusPending, status)
	})
}
