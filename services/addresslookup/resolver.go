package addresslookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttpclient"
)

var postalCodePattern = regexp.MustCompile(`^[0-9]{8}$`)

//go:generate mockgen -source=resolver.go -package addresslookup -destination resolver_mock.go Resolver
type Resolver interface {
	Resolve(c context.Context, postalCode string) (Address, error)
}

type viaCEPResolver struct {
	baseURL string
	client  myhttpclient.HTTPSender
}

func NewResolver(baseURL string, client myhttpclient.HTTPSender) Resolver {
	return &viaCEPResolver{
		baseURL: baseURL,
		client:  client,
	}
}

// The upstream signals an unknown postal code with {"erro": true} and http 200
type viaCEPResponse struct {
	Address
	Erro bool `json:"erro"`
}

func (r viaCEPResolver) Resolve(c context.Context, postalCode string) (Address, error) {
	if !postalCodePattern.MatchString(postalCode) {
		return Address{}, myerrors.NewInvalidInputError(fmt.Errorf("postal code must be 8 digits, got %q", postalCode))
	}

	url := fmt.Sprintf("%s/ws/%s/json/", r.baseURL, postalCode)

	httpStatus, respPayload, err := r.client.Send(c, http.MethodGet, url, nil, nil)
	if err != nil {
		return Address{}, myerrors.NewUnavailableError(fmt.Errorf("error calling address service: %s", err))
	}
	if httpStatus != http.StatusOK {
		return Address{}, myerrors.NewUnavailableError(fmt.Errorf("address service returned http status %d", httpStatus))
	}

	resp := viaCEPResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return Address{}, myerrors.NewUnavailableError(fmt.Errorf("error parsing address response: %s", err))
	}

	if resp.Erro {
		return Address{}, myerrors.NewNotFoundError(fmt.Errorf("no address known for postal code %s", postalCode))
	}

	return resp.Address, nil
}
