package paylane

import (
	"context"
	"fmt"
	"net/http"
)

// Operation binds one remote action to its path and HTTP method.
type Operation struct {
	Name   string
	Path   string
	Method string
}

const (
	OpCardSale                    = "cardSale"
	OpCardSaleByToken             = "cardSaleByToken"
	OpCardAuthorization           = "cardAuthorization"
	OpCardAuthorizationByToken    = "cardAuthorizationByToken"
	OpPaypalAuthorization         = "paypalAuthorization"
	OpCaptureAuthorization        = "captureAuthorization"
	OpCloseAuthorization          = "closeAuthorization"
	OpRefund                      = "refund"
	OpGetSaleInfo                 = "getSaleInfo"
	OpGetAuthorizationInfo        = "getAuthorizationInfo"
	OpCheckSaleStatus             = "checkSaleStatus"
	OpDirectDebitSale             = "directDebitSale"
	OpSofortSale                  = "sofortSale"
	OpIdealSale                   = "idealSale"
	OpIdealBankCodes              = "idealBankCodes"
	OpBankTransferSale            = "bankTransferSale"
	OpPaypalSale                  = "paypalSale"
	OpPaypalStopRecurring         = "paypalStopRecurring"
	OpResaleBySale                = "resaleBySale"
	OpResaleByAuthorization       = "resaleByAuthorization"
	OpCheckCard3DSecure           = "checkCard3DSecure"
	OpCheckCard3DSecureByToken    = "checkCard3DSecureByToken"
	OpSaleBy3DSecureAuthorization = "saleBy3DSecureAuthorization"
	OpCheckCard                   = "checkCard"
	OpCheckCardByToken            = "checkCardByToken"
)

var operations = []Operation{
	{OpCardSale, "cards/sale", http.MethodPost},
	{OpCardSaleByToken, "cards/saleByToken", http.MethodPost},
	{OpCardAuthorization, "cards/authorization", http.MethodPost},
	{OpCardAuthorizationByToken, "cards/authorizationByToken", http.MethodPost},
	{OpPaypalAuthorization, "paypal/authorization", http.MethodPost},
	{OpCaptureAuthorization, "authorizations/capture", http.MethodPost},
	{OpCloseAuthorization, "authorizations/close", http.MethodPost},
	{OpRefund, "refunds", http.MethodPost},
	{OpGetSaleInfo, "sales/info", http.MethodGet},
	{OpGetAuthorizationInfo, "authorizations/info", http.MethodGet},
	{OpCheckSaleStatus, "sales/status", http.MethodGet},
	{OpDirectDebitSale, "directdebits/sale", http.MethodPost},
	{OpSofortSale, "sofort/sale", http.MethodPost},
	{OpIdealSale, "ideal/sale", http.MethodPost},
	{OpIdealBankCodes, "ideal/bankcodes", http.MethodGet},
	{OpBankTransferSale, "banktransfers/sale", http.MethodPost},
	{OpPaypalSale, "paypal/sale", http.MethodPost},
	{OpPaypalStopRecurring, "paypal/stopRecurring", http.MethodPost},
	{OpResaleBySale, "resales/sale", http.MethodPost},
	{OpResaleByAuthorization, "resales/authorization", http.MethodPost},
	{OpCheckCard3DSecure, "3DSecure/checkCard", http.MethodGet},
	{OpCheckCard3DSecureByToken, "3DSecure/checkCardByToken", http.MethodGet},
	{OpSaleBy3DSecureAuthorization, "3DSecure/authSale", http.MethodPost},
	{OpCheckCard, "cards/check", http.MethodGet},
	{OpCheckCardByToken, "cards/checkByToken", http.MethodGet},
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, len(operations))
	for _, op := range operations {
		m[op.Name] = op
	}
	return m
}()

// Operations returns a copy of the operation table in declaration order.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

func LookupOperation(name string) (Operation, bool) {
	op, ok := operationsByName[name]
	return op, ok
}

// Do invokes the operation registered under name.
func (c *Client) Do(ctx context.Context, name string, params Params) (Response, error) {
	op, ok := LookupOperation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return c.call(ctx, op.Name, op.Path, op.Method, params)
}

func (c *Client) invoke(ctx context.Context, name string, params Params) (Response, error) {
	op := operationsByName[name]
	return c.call(ctx, op.Name, op.Path, op.Method, params)
}

func (c *Client) CardSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCardSale, params)
}

func (c *Client) CardSaleByToken(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCardSaleByToken, params)
}

func (c *Client) CardAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCardAuthorization, params)
}

func (c *Client) CardAuthorizationByToken(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCardAuthorizationByToken, params)
}

func (c *Client) PaypalAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpPaypalAuthorization, params)
}

// CaptureAuthorization captures funds from an earlier card authorization.
func (c *Client) CaptureAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCaptureAuthorization, params)
}

// CloseAuthorization releases an authorization without capturing it.
func (c *Client) CloseAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCloseAuthorization, params)
}

func (c *Client) Refund(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpRefund, params)
}

func (c *Client) GetSaleInfo(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpGetSaleInfo, params)
}

func (c *Client) GetAuthorizationInfo(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpGetAuthorizationInfo, params)
}

func (c *Client) CheckSaleStatus(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCheckSaleStatus, params)
}

func (c *Client) DirectDebitSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpDirectDebitSale, params)
}

func (c *Client) SofortSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpSofortSale, params)
}

func (c *Client) IdealSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpIdealSale, params)
}

// IdealBankCodes lists the banks available for iDeal. It takes no parameters.
func (c *Client) IdealBankCodes(ctx context.Context) (Response, error) {
	return c.invoke(ctx, OpIdealBankCodes, nil)
}

func (c *Client) BankTransferSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpBankTransferSale, params)
}

func (c *Client) PaypalSale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpPaypalSale, params)
}

// PaypalStopRecurring cancels a PayPal recurring profile.
func (c *Client) PaypalStopRecurring(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpPaypalStopRecurring, params)
}

func (c *Client) ResaleBySale(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpResaleBySale, params)
}

func (c *Client) ResaleByAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpResaleByAuthorization, params)
}

// CheckCard3DSecure checks whether a card is enrolled in 3-D Secure.
func (c *Client) CheckCard3DSecure(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCheckCard3DSecure, params)
}

func (c *Client) CheckCard3DSecureByToken(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCheckCard3DSecureByToken, params)
}

// SaleBy3DSecureAuthorization completes a sale from a 3-D Secure authorization ID.
func (c *Client) SaleBy3DSecureAuthorization(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpSaleBy3DSecureAuthorization, params)
}

func (c *Client) CheckCard(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCheckCard, params)
}

func (c *Client) CheckCardByToken(ctx context.Context, params Params) (Response, error) {
	return c.invoke(ctx, OpCheckCardByToken, params)
}
