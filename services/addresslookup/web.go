package addresslookup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/mycontext"
	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
)

type webService struct {
	logger   mylog.Logger
	resolver Resolver
}

func NewWebService(resolver Resolver) *webService {
	return &webService{
		logger:   mylog.New("addresslookup"),
		resolver: resolver,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/address/{postalCode}", s.lookupPage()).Methods("GET")

	return nil
}

func (s *webService) lookupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		postalCode := mux.Vars(r)["postalCode"]

		address, err := s.resolver.Resolve(c, postalCode)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, address)
	}
}
