package pixpayment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttpclient"
)

var gatewayNonDigits = regexp.MustCompile(`[^0-9]`)

type novaEraGateway struct {
	baseURL   string
	authToken string
	client    myhttpclient.HTTPSender
}

// NewGateway talks to a Nova-Era-style transactions API: basic auth with the
// public/secret key pair, POST /api/v1/transactions to create, GET
// /api/v1/transactions/{id} for status.
func NewGateway(baseURL string, publicKey string, secretKey string, client myhttpclient.HTTPSender) Gateway {
	return &novaEraGateway{
		baseURL:   baseURL,
		authToken: base64.StdEncoding.EncodeToString([]byte(publicKey + ":" + secretKey)),
		client:    client,
	}
}

type wireDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type wireCustomer struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Document    wireDocument `json:"document"`
	Phone       string       `json:"phone"`
	ExternalRef string       `json:"externalRef"`
}

type wireItem struct {
	Title     string `json:"title"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Tangible  bool   `json:"tangible"`
}

type wirePix struct {
	ExpiresInDays  int    `json:"expiresInDays,omitempty"`
	QRCode         string `json:"qrcode,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

type wireCreateRequest struct {
	Amount        int64        `json:"amount"`
	PaymentMethod string       `json:"paymentMethod"`
	Customer      wireCustomer `json:"customer"`
	Pix           wirePix      `json:"pix"`
	Items         []wireItem   `json:"items"`
}

type wireTransaction struct {
	ID       json.Number  `json:"id"`
	Status   string       `json:"status"`
	Amount   int64        `json:"amount"`
	Customer wireCustomer `json:"customer"`
	Pix      wirePix      `json:"pix"`
}

type wireResponse struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    wireTransaction `json:"data"`
}

func (g novaEraGateway) CreatePayment(c context.Context, req CreatePaymentRequest) (CreatePaymentResponse, error) {
	taxID := gatewayNonDigits.ReplaceAllString(req.Customer.TaxID, "")

	wireReq := wireCreateRequest{
		Amount:        req.AmountInCents,
		PaymentMethod: "pix",
		Customer: wireCustomer{
			Name:        req.Customer.Name,
			Email:       req.Customer.Email,
			Document:    wireDocument{Number: taxID, Type: "cpf"},
			Phone:       gatewayNonDigits.ReplaceAllString(req.Customer.Phone, ""),
			ExternalRef: "ref-" + taxID,
		},
		Pix: wirePix{ExpiresInDays: 1},
		Items: []wireItem{
			{
				Title:     req.Description,
				UnitPrice: req.AmountInCents,
				Quantity:  1,
				Tangible:  false,
			},
		},
	}

	payload, err := json.Marshal(wireReq)
	if err != nil {
		return CreatePaymentResponse{}, myerrors.NewInternalError(fmt.Errorf("error marshalling payment request: %s", err))
	}

	resp, err := g.call(c, http.MethodPost, g.baseURL+"/api/v1/transactions", payload)
	if err != nil {
		return CreatePaymentResponse{}, err
	}

	return CreatePaymentResponse{
		TransactionUID: resp.Data.ID.String(),
		Status:         resp.Data.Status,
		AmountInCents:  resp.Data.Amount,
		PixCode:        resp.Data.Pix.QRCode,
		ExpiresAt:      parseExpiration(resp.Data.Pix.ExpirationDate),
	}, nil
}

func (g novaEraGateway) GetStatus(c context.Context, transactionUID string) (string, error) {
	resp, err := g.call(c, http.MethodGet, g.baseURL+"/api/v1/transactions/"+transactionUID, nil)
	if err != nil {
		return "", err
	}

	if resp.Data.Status == "" {
		return TransactionStatusPending, nil
	}
	return resp.Data.Status, nil
}

func (g novaEraGateway) call(c context.Context, method string, url string, payload []byte) (wireResponse, error) {
	headers := map[string]string{
		"Authorization": "Basic " + g.authToken,
	}

	httpStatus, respPayload, err := g.client.Send(c, method, url, headers, payload)
	if err != nil {
		return wireResponse{}, myerrors.NewUnavailableError(fmt.Errorf("error calling payment gateway: %s", err))
	}

	resp := wireResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return wireResponse{}, myerrors.NewUnavailableError(fmt.Errorf("error parsing gateway response: %s", err))
	}

	// The gateway reports business failures as success=false on any status
	if resp.Success != nil && !*resp.Success {
		return wireResponse{}, myerrors.NewInvalidInputError(fmt.Errorf("gateway refused the request: %s", resp.Message))
	}
	if httpStatus < 200 || httpStatus >= 300 {
		return wireResponse{}, myerrors.NewUnavailableError(fmt.Errorf("gateway returned http status %d", httpStatus))
	}

	return resp, nil
}

func parseExpiration(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}
