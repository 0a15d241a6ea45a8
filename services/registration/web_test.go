package registration

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pixshop/storefront/lib/myevents"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mypubsub"
	"github.com/pixshop/storefront/lib/myqueue"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/storefrontevents"
)

var (
	exampleAddress = Address{
		PostalCode:   "01310100",
		Street:       "Avenida Paulista",
		HouseNumber:  "1000",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
	}

	exampleRecord = StoredRecord{
		Name:            "Maria Silva",
		Email:           "maria@gmail.com",
		Phone:           "11987654321",
		Address:         exampleAddress,
		OrderValueCents: 16700,
		PaymentMethod:   PaymentMethodPix,
	}
)

func TestRegistrationService(t *testing.T) {

	t.Run("Save registration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, queue, _, nower, uuider, publisher := setup(t, ctrl)

		expectedUID := fmt.Sprintf("reg-%d-d5f9c1e2a", mytime.ExampleTime.UnixMilli())

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("d5f9c1e2-aaaa-bbbb-cccc-000000000000")
		publisher.EXPECT().Publish(gomock.Any(), storefrontevents.TopicName, storefrontevents.RegistrationRecorded{
			RegistrationUID: expectedUID,
			ShopperEmail:    "maria@gmail.com",
			AmountInCents:   16700,
		}).Return(nil)
		queue.EXPECT().Enqueue(gomock.Any(), myqueue.Task{
			UID:            "export-" + expectedUID,
			WebhookURLPath: "/api/registration/" + expectedUID + "/export",
			Payload:        []byte{},
		}).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/registration", strings.NewReader(`{
			"Name":"Maria Silva",
			"Email":"maria@gmail.com",
			"Phone":"11987654321",
			"OrderValueCents":16700,
			"PaymentMethod":"pix",
			"Address":{"PostalCode":"01310100","Street":"Avenida Paulista","City":"São Paulo","State":"SP"}
		}`))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		stored, exists, _ := storer.Get(ctx, expectedUID)
		assert.True(t, exists)
		assert.Equal(t, "Maria Silva", stored.Name)
		assert.Equal(t, mytime.ExampleTime, stored.CreatedAt)
		assert.False(t, stored.IsPaid)
	})

	t.Run("Fifth save also enqueues a full snapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, queue, _, nower, uuider, publisher := setup(t, ctrl)

		expectedUID := fmt.Sprintf("reg-%d-d5f9c1e2a", mytime.ExampleTime.UnixMilli())

		// given
		for i := 0; i < 4; i++ {
			record := exampleRecord
			record.UID = fmt.Sprintf("reg-%d", i)
			_ = storer.Put(ctx, record.UID, record)
		}
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("d5f9c1e2-aaaa-bbbb-cccc-000000000000")
		publisher.EXPECT().Publish(gomock.Any(), storefrontevents.TopicName, gomock.Any()).Return(nil)
		queue.EXPECT().Enqueue(gomock.Any(), myqueue.Task{
			UID:            "export-" + expectedUID,
			WebhookURLPath: "/api/registration/" + expectedUID + "/export",
			Payload:        []byte{},
		}).Return(nil)
		queue.EXPECT().Enqueue(gomock.Any(), myqueue.Task{
			UID:            "snapshot-5",
			WebhookURLPath: "/api/registration/export/snapshot",
			Payload:        []byte{},
		}).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/registration", strings.NewReader(`{"Name":"Maria Silva","Email":"maria@gmail.com"}`))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Get unknown registration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/registration/unknown", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Mark paid synthesizes a pix reference when none is given", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, uuider, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-123"
		_ = storer.Put(ctx, record.UID, record)
		uuider.EXPECT().Create().Return("1b2c3d4e-5f60-7182-93a4-b5c6d7e8f901")

		// when
		request, err := http.NewRequest(http.MethodPut, "/api/registration/reg-123/paid", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		stored, exists, _ := storer.Get(ctx, "reg-123")
		assert.True(t, exists)
		assert.True(t, stored.IsPaid)
		assert.Equal(t, "PIX1B2C3D4E5", stored.PixCode)
	})

	t.Run("Mark paid keeps the given pix reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-123"
		_ = storer.Put(ctx, record.UID, record)

		// when
		request, err := http.NewRequest(http.MethodPut, "/api/registration/reg-123/paid?pixCode=PIXABC123DEF", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		stored, _, _ := storer.Get(ctx, "reg-123")
		assert.Equal(t, "PIXABC123DEF", stored.PixCode)
	})

	t.Run("Stats", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _, _ := setup(t, ctrl)

		// given
		for i := 0; i < 4; i++ {
			record := exampleRecord
			record.UID = fmt.Sprintf("reg-%d", i)
			record.IsPaid = i%2 == 0
			_ = storer.Put(ctx, record.UID, record)
		}

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/registration/stats", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		stats := Stats{}
		err = json.NewDecoder(response.Body).Decode(&stats)
		assert.NoError(t, err)
		assert.Equal(t, 4, stats.TotalRecords)
		assert.Equal(t, 2, stats.PaidRecords)
		assert.Equal(t, 2, stats.UnpaidRecords)
		assert.Equal(t, 50.0, stats.ConversionRate)
		assert.Equal(t, int64(33400), stats.TotalRevenueCents)
	})

	t.Run("CSV export round trips", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _, _ := setup(t, ctrl)

		// given
		paid := exampleRecord
		paid.UID = "reg-1"
		paid.IsPaid = true
		paid.PixCode = "PIXABC123"
		paid.CreatedAt = mytime.ExampleTime
		_ = storer.Put(ctx, paid.UID, paid)

		unpaid := exampleRecord
		unpaid.UID = "reg-2"
		unpaid.Name = "João, o \"Comprador\""
		unpaid.CreatedAt = mytime.ExampleTime
		_ = storer.Put(ctx, unpaid.UID, unpaid)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/registration/export/csv", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		rows, err := csv.NewReader(response.Body).ReadAll()
		assert.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, csvHeader, rows[0])
		assert.Equal(t, "reg-1", rows[1][0])
		assert.Equal(t, "SIM", rows[1][9])
		assert.Equal(t, "27/02/2026 23:58:59", rows[1][10])
		assert.Equal(t, "R$ 167.00", rows[1][11])
		assert.Equal(t, "João, o \"Comprador\"", rows[2][1])
		assert.Equal(t, "NÃO", rows[2][9])
	})

	t.Run("Text report", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, nower, _, _ := setup(t, ctrl)

		// given
		paid := exampleRecord
		paid.UID = "reg-1"
		paid.IsPaid = true
		_ = storer.Put(ctx, paid.UID, paid)

		unpaid := exampleRecord
		unpaid.UID = "reg-2"
		_ = storer.Put(ctx, unpaid.UID, unpaid)

		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodGet, "/api/registration/export/text", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "RELATÓRIO COMPLETO - LOJA VIRTUAL")
		assert.Contains(t, got, "Taxa de Conversão: 50.00%")
		assert.Contains(t, got, "Receita Total: R$ 167.00")
		assert.Contains(t, got, "1. Maria Silva")
		assert.Contains(t, got, "Status: PAGO")
		assert.Contains(t, got, "Status: PENDENTE")
	})

	t.Run("Clear twice", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-1"
		_ = storer.Put(ctx, record.UID, record)

		// when
		for i := 0; i < 2; i++ {
			request, err := http.NewRequest(http.MethodDelete, "/api/registration", nil)
			assert.NoError(t, err)
			response := httptest.NewRecorder()
			router.ServeHTTP(response, request)

			// then
			assert.Equal(t, 200, response.Code)
		}

		records, err := storer.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Record export trigger writes text file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, exporter, _, _, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-1"
		record.CreatedAt = mytime.ExampleTime
		_ = storer.Put(ctx, record.UID, record)

		exporter.EXPECT().WriteFile(gomock.Any(), "cadastro-20260227-235859.txt", gomock.Any()).
			DoAndReturn(func(c context.Context, filename string, content string) error {
				assert.Contains(t, content, "=== NOVO CADASTRO ===")
				assert.Contains(t, content, "Nome: Maria Silva")
				assert.Contains(t, content, "Código PIX: Não gerado")
				assert.Contains(t, content, "Status Pagamento: PENDENTE")
				return nil
			})

		// when
		request, err := http.NewRequest(http.MethodPut, "/api/registration/reg-1/export", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Snapshot export trigger writes csv backup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, exporter, nower, _, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-1"
		record.CreatedAt = mytime.ExampleTime
		_ = storer.Put(ctx, record.UID, record)

		nower.EXPECT().Now().Return(mytime.ExampleTime)
		exporter.EXPECT().WriteFile(gomock.Any(), "backup-completo-20260227-235859.csv", gomock.Any()).Return(nil)

		// when
		request, err := http.NewRequest(http.MethodPut, "/api/registration/export/snapshot", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Handle async payment completed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _, _ := setup(t, ctrl)

		// given
		record := exampleRecord
		record.UID = "reg-1"
		record.CreatedAt = mytime.ExampleTime
		_ = storer.Put(ctx, record.UID, record)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/registration/event", strings.NewReader(createPubsubMessage(
			storefrontevents.PixPaymentCompleted{
				SessionUID:     "123",
				TransactionUID: "tx-1",
				AmountInCents:  16700,
				ShopperEmail:   "maria@gmail.com",
			})))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		updated, exists, err := storer.Get(ctx, "reg-1")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.True(t, updated.IsPaid)
		assert.Equal(t, "tx-1", updated.PixCode)

		// delivering the same event again changes nothing
		request, err = http.NewRequest(http.MethodPost, "/api/registration/event", strings.NewReader(createPubsubMessage(
			storefrontevents.PixPaymentCompleted{
				SessionUID:     "123",
				TransactionUID: "tx-1",
				AmountInCents:  16700,
				ShopperEmail:   "maria@gmail.com",
			})))
		assert.NoError(t, err)
		response = httptest.NewRecorder()
		router.ServeHTTP(response, request)
		assert.Equal(t, 200, response.Code)
	})
}

func createPubsubMessage(event storefrontevents.PixPaymentCompleted) string {
	eventBytes, _ := json.Marshal(event)
	envelope := myevents.EventEnvelope{
		UID:           "123",
		CreatedAt:     mytime.ExampleTime,
		Topic:         storefrontevents.TopicName,
		AggregateUID:  "123",
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(eventBytes),
	}
	envelopeBytes, _ := json.Marshal(envelope)

	req := myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: envelopeBytes,
		},
		Subscription: storefrontevents.TopicName,
	}

	reqBytes, _ := json.Marshal(req)

	return string(reqBytes)
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[StoredRecord], *myqueue.MockTaskQueuer, *MockFileExporter, *mytime.MockNower, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	c := context.TODO()
	storer, _, _ := mystore.New[StoredRecord](c)
	queue := myqueue.NewMockTaskQueuer(ctrl)
	exporter := NewMockFileExporter(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	subscriber := mypubsub.NewMockPubSub(ctrl)

	sut := NewWebService(storer, queue, exporter, publisher, subscriber, nower, uuider)
	router := mux.NewRouter()

	// Called by RegisterEndpoints
	publisher.EXPECT().CreateTopic(c, storefrontevents.TopicName).Return(nil)
	subscriber.EXPECT().Subscribe(c, storefrontevents.TopicName, "http://localhost:8080/api/registration/event").Return(nil)

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer, queue, exporter, nower, uuider, publisher
}
