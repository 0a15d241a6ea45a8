package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/myconfig"
	"github.com/pixshop/storefront/lib/myhttpclient"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mypubsub"
	"github.com/pixshop/storefront/lib/myqueue"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/addresslookup"
	"github.com/pixshop/storefront/services/checkout"
	"github.com/pixshop/storefront/services/checkoutapi"
	"github.com/pixshop/storefront/services/pixpayment"
	"github.com/pixshop/storefront/services/registration"
	"github.com/pixshop/storefront/services/shopfront"
	"github.com/pixshop/storefront/services/telemetry"
)

func main() {
	c := context.Background()
	cfg := myconfig.Get()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	httpClient := myhttpclient.NewJSONHTTPClient()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating event publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	sink := telemetry.NewSink(cfg.Pixel.ID, httpClient)

	cartStore, cartCleanup, err := mystore.New[shopfront.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartCleanup()

	shopfrontService := shopfront.NewWebService(cartStore, sink, nower, uuider)
	err = shopfrontService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering shopfront service: %s", err)
	}

	resolver := addresslookup.NewResolver(cfg.AddressLookup.BaseURL, httpClient)
	addressService := addresslookup.NewWebService(resolver)
	err = addressService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering address lookup service: %s", err)
	}

	sessionStore, sessionCleanup, err := mystore.New[checkout.CheckoutSession](c)
	if err != nil {
		log.Fatalf("Error creating checkout session store: %s", err)
	}
	defer sessionCleanup()

	handoffStore, handoffCleanup, err := mystore.New[checkoutapi.ConfirmationPayload](c)
	if err != nil {
		log.Fatalf("Error creating handoff store: %s", err)
	}
	defer handoffCleanup()

	checkoutService := checkout.NewWebService(sessionStore, handoffStore, resolver, publisher, nower, uuider)
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering checkout service: %s", err)
	}

	paymentStore, paymentCleanup, err := mystore.New[pixpayment.PaymentSession](c)
	if err != nil {
		log.Fatalf("Error creating payment session store: %s", err)
	}
	defer paymentCleanup()

	summaryStore, summaryCleanup, err := mystore.New[checkoutapi.TransactionSummary](c)
	if err != nil {
		log.Fatalf("Error creating transaction summary store: %s", err)
	}
	defer summaryCleanup()

	gateway := pixpayment.NewGateway(cfg.Gateway.BaseURL, cfg.Gateway.PublicKey, cfg.Gateway.SecretKey, httpClient)
	paymentService := pixpayment.NewWebService(paymentStore, handoffStore, summaryStore, gateway, sink, publisher, nower,
		cfg.Payment.PollInterval, cfg.Payment.PollCeiling)
	err = paymentService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering payment service: %s", err)
	}
	defer paymentService.Shutdown()

	recordStore, recordCleanup, err := mystore.New[registration.StoredRecord](c)
	if err != nil {
		log.Fatalf("Error creating registration store: %s", err)
	}
	defer recordCleanup()

	exporter := registration.NewLocalDirExporter(cfg.Export.Dir)
	registrationService := registration.NewWebService(recordStore, queue, exporter, publisher, pubsub, nower, uuider)
	err = registrationService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering registration service: %s", err)
	}

	startWebServerBlocking(router, cfg.HTTP.Port)
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
