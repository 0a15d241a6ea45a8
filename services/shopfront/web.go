package shopfront

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/mycontext"
	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/telemetry"
)

//go:embed templates
var templateFolder embed.FS

var (
	productPageTemplate *template.Template
	cartPageTemplate    *template.Template
)

func init() {
	productPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/product.html"))
	cartPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart.html"))
}

type webService struct {
	logger  mylog.Logger
	service *service
	sink    telemetry.Sink
}

func NewWebService(cartStore mystore.Store[Cart], sink telemetry.Sink, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("shopfront")

	return &webService{
		logger:  logger,
		service: newService(cartStore, nower, uuider, logger),
		sink:    sink,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// Endpoints that compose the userinterface
	router.HandleFunc("/", s.productPage()).Methods("GET")
	router.HandleFunc("/cart", s.createCartPage()).Methods("POST")
	router.HandleFunc("/cart/{uid}", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/{uid}/increment", s.adjustQuantityPage(1)).Methods("POST")
	router.HandleFunc("/cart/{uid}/decrement", s.adjustQuantityPage(-1)).Methods("POST")

	return nil
}

func (s *webService) productPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		s.sink.Track(c, telemetry.PageView{PageName: "product"})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := productPageTemplate.Execute(w, theProduct)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) createCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.createCart(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/cart/%s", cart.UID), http.StatusSeeOther)
	}
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		cart, found, err := s.service.getCart(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("cart %s not found", uid)))
			return
		}

		s.sink.Track(c, telemetry.InitiateCheckout{
			ValueInCents: cart.TotalCents(),
			Quantity:     cart.Quantity,
		})

		orderForm, err := checkoutapi.OrderLine{
			ProductUID:     cart.Product.UID,
			Description:    cart.Product.Name,
			VariantLabel:   cart.Product.VariantLabel,
			UnitPriceCents: cart.Product.UnitPriceCents,
			Quantity:       cart.Quantity,
		}.ToForm()
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = cartPageTemplate.Execute(w, struct {
			Cart            Cart
			OrderFormFields template.HTML
		}{
			Cart:            cart,
			OrderFormFields: template.HTML(checkoutapi.FormValuesToHTML(orderForm)),
		})
		if err != nil {
			errorWriter.WriteError(c, w, 4, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) adjustQuantityPage(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		_, found, err := s.service.adjustQuantity(c, uid, delta)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("cart %s not found", uid)))
			return
		}

		http.Redirect(w, r, fmt.Sprintf("/cart/%s", uid), http.StatusSeeOther)
	}
}
