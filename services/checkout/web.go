package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/mycontext"
	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/addresslookup"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/storefrontevents"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

func NewWebService(sessionStore mystore.Store[CheckoutSession], handoffStore mystore.Store[checkoutapi.ConfirmationPayload], resolver addresslookup.Resolver, publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("checkout")

	return &webService{
		logger:  logger,
		service: newService(sessionStore, handoffStore, resolver, publisher, nower, uuider, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/checkout", s.createPage()).Methods("POST")
	router.HandleFunc("/api/checkout/suggest", s.suggestPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{uid}", s.getPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{uid}/identity", s.identityPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{uid}/address/{postalCode}", s.resolveAddressPage()).Methods("PUT")
	router.HandleFunc("/api/checkout/{uid}/delivery", s.deliveryPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{uid}/back", s.backPage()).Methods("PUT")

	return s.service.publisher.CreateTopic(c, storefrontevents.TopicName)
}

// stepResponse carries the session plus the per-field outcome of a guard.
type stepResponse struct {
	Session     CheckoutSession
	FieldErrors FieldErrors `json:",omitempty"`
}

func (s *webService) createPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		order, err := checkoutapi.NewOrderLineFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.service.create(c, order)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
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
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("checkout session %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) identityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		identity, err := checkoutapi.NewIdentityFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		session, fieldErrors, found, err := s.service.submitIdentity(c, uid, identity)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 3, myerrors.NewNotFoundError(fmt.Errorf("checkout session %s not found", uid)))
			return
		}
		if !fieldErrors.IsEmpty() {
			errorWriter.Write(c, w, http.StatusBadRequest, stepResponse{Session: session, FieldErrors: fieldErrors})
			return
		}

		errorWriter.Write(c, w, http.StatusOK, stepResponse{Session: session})
	}
}

func (s *webService) resolveAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]
		postalCode := mux.Vars(r)["postalCode"]

		session, found, err := s.service.resolveAddress(c, uid, postalCode)
		if !found && err == nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewNotFoundError(fmt.Errorf("checkout session %s not found", uid)))
			return
		}
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) deliveryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		address, err := checkoutapi.NewAddressFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		session, fieldErrors, found, err := s.service.submitDelivery(c, uid, address.HouseNumber, address.Complement)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 3, myerrors.NewNotFoundError(fmt.Errorf("checkout session %s not found", uid)))
			return
		}
		if !fieldErrors.IsEmpty() {
			errorWriter.Write(c, w, http.StatusBadRequest, stepResponse{Session: session, FieldErrors: fieldErrors})
			return
		}

		errorWriter.Write(c, w, http.StatusOK, stepResponse{Session: session})
	}
}

func (s *webService) backPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		session, found, err := s.service.back(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("checkout session %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) suggestPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		suggestions := suggestEmailCompletions(r.URL.Query().Get("email"))

		errorWriter.Write(c, w, http.StatusOK, struct {
			Suggestions []string
		}{Suggestions: suggestions})
	}
}
