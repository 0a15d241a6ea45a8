package checkoutapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	formcodec "github.com/go-playground/form/v4"

	"github.com/pixshop/storefront/lib/myerrors"
)

// CustomerIdentity is the step-1 data of a checkout.
type CustomerIdentity struct {
	FullName string `form:"fullName"`
	Email    string `form:"email"`
	TaxID    string `form:"taxId"`
	Phone    string `form:"phone"`
}

// DeliveryAddress is the step-2 data. Street, neighborhood, city and state
// come from address resolution and are read-only to the shopper.
type DeliveryAddress struct {
	PostalCode   string `form:"postalCode"`
	Street       string `form:"street"`
	Neighborhood string `form:"neighborhood"`
	City         string `form:"city"`
	State        string `form:"state"`
	HouseNumber  string `form:"houseNumber"`
	Complement   string `form:"complement"`
	Resolved     bool   `form:"resolved"`
}

type OrderLine struct {
	ProductUID     string `form:"productUid"`
	Description    string `form:"description"`
	VariantLabel   string `form:"variantLabel"`
	UnitPriceCents int64  `form:"unitPriceCents"`
	Quantity       int    `form:"quantity"`
}

func (o OrderLine) TotalCents() int64 {
	return o.UnitPriceCents * int64(o.Quantity)
}

// ConfirmationPayload is the frozen snapshot of a completed checkout that is
// handed to the payment stage. The handoff slot it is stored in is consumed
// on first read.
type ConfirmationPayload struct {
	CheckoutUID string
	Identity    CustomerIdentity
	Address     DeliveryAddress
	Order       OrderLine
	TotalCents  int64
	CreatedAt   time.Time
}

// TransactionSummary is written to the handoff slot once a payment is
// confirmed, for the confirmation view to pick up.
type TransactionSummary struct {
	TransactionUID string
	AmountInCents  int64
	ShopperName    string
	ShopperEmail   string
	ShopperTaxID   string
	PaidAt         time.Time
}

func NewIdentityFromRequest(r *http.Request) (CustomerIdentity, error) {
	identity := CustomerIdentity{}
	err := decodeForm(r, &identity)
	return identity, err
}

func NewAddressFromRequest(r *http.Request) (DeliveryAddress, error) {
	address := DeliveryAddress{}
	err := decodeForm(r, &address)
	return address, err
}

func NewOrderLineFromRequest(r *http.Request) (OrderLine, error) {
	order := OrderLine{}
	err := decodeForm(r, &order)
	return order, err
}

func decodeForm(r *http.Request, target interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	err = formcodec.NewDecoder().Decode(target, r.Form)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	return nil
}

func (o OrderLine) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(o)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}
	return values, nil
}

func FormValuesToHTML(values url.Values) string {
	buf := strings.Builder{}
	for key, value := range values {
		buf.WriteString(fmt.Sprintf("<input type=\"hidden\" name=\"%s\" value=\"%s\"/>\n", key, value[0]))
	}
	return buf.String()
}
