package pixpayment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/mycontext"
	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/storefrontevents"
	"github.com/pixshop/storefront/services/telemetry"
)

const checkoutEntryURL = "/checkout"

type webService struct {
	logger  mylog.Logger
	service *service
}

func NewWebService(sessionStore mystore.Store[PaymentSession], handoffStore mystore.Store[checkoutapi.ConfirmationPayload], summaryStore mystore.Store[checkoutapi.TransactionSummary], gateway Gateway, sink telemetry.Sink, publisher mypublisher.Publisher, nower mytime.Nower, pollInterval time.Duration, pollCeiling time.Duration) *webService {
	logger := mylog.New("pixpayment")

	return &webService{
		logger:  logger,
		service: newService(sessionStore, handoffStore, summaryStore, gateway, sink, publisher, nower, logger, pollInterval, pollCeiling),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/payment/{uid}", s.startPage()).Methods("POST")
	router.HandleFunc("/api/payment/{uid}", s.getPage()).Methods("GET")
	router.HandleFunc("/api/payment/{uid}", s.teardownPage()).Methods("DELETE")
	router.HandleFunc("/api/payment/{uid}/summary", s.summaryPage()).Methods("GET")
	router.HandleFunc("/api/payment/{uid}/copy", s.copyCodePage()).Methods("PUT")

	return s.service.publisher.CreateTopic(c, storefrontevents.TopicName)
}

// Shutdown cancels all live polling loops.
func (s *webService) Shutdown() {
	s.service.shutdown()
}

func (s *webService) startPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		session, found, err := s.service.start(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			// no payload to pay for: send the shopper back to the start
			http.Redirect(w, r, checkoutEntryURL, http.StatusSeeOther)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		session, found, err := s.service.get(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("payment session %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) summaryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		summary, found, err := s.service.summary(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("no transaction summary for %s", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, summary)
	}
}

func (s *webService) copyCodePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		pixCode, found, err := s.service.copyCode(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("payment session %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, struct {
			PixCode string
		}{PixCode: pixCode})
	}
}

func (s *webService) teardownPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		s.service.teardown(uid)

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Polling stopped"})
	}
}
