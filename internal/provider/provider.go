// Package provider wraps the external payment gateways. Each gateway is a
// black box reached by redirect and heard from again on a callback; this
// package only builds the redirect and translates the callback's response
// code into a status and a message fit for an end user.
package provider

import (
	"errors"
	"net/url"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

var ErrUnknownProvider = errors.New("unknown payment provider")

// CallbackResult is a provider response mapped onto the session workflow.
type CallbackResult struct {
	Provider      string
	TransactionID string
	Code          string
	Success       bool
	// Message is a human-readable reason in the storefront's language; raw
	// provider codes are never shown to the end user.
	Message string
}

type Provider interface {
	Name() string
	// PaymentURL builds the redirect that hands the purchase to the gateway.
	PaymentURL(session *domain.BookingSession) string
	// QRPayload is a display-only artifact rendered next to the redirect
	// button; it is not a payment instruction channel.
	QRPayload(session *domain.BookingSession) string
	// ParseCallback extracts the transaction reference and response code
	// from the gateway's return query.
	ParseCallback(query url.Values) (*CallbackResult, error)
}

// Registry resolves a provider by name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Resolve finds the provider whose callback signature matches the query.
func (r *Registry) Resolve(query url.Values) (Provider, error) {
	if query.Get("vnp_TxnRef") != "" {
		if p, ok := r.providers[NameVNPay]; ok {
			return p, nil
		}
	}
	if query.Get("orderId") != "" {
		if p, ok := r.providers[NameMoMo]; ok {
			return p, nil
		}
	}
	return nil, ErrUnknownProvider
}
