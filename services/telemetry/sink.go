package telemetry

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/pixshop/storefront/lib/myhttpclient"
	"github.com/pixshop/storefront/lib/mylog"
)

const pixelEndpoint = "https://www.facebook.com/tr"

//go:generate mockgen -source=sink.go -package telemetry -destination sink_mock.go Sink
type Sink interface {
	Track(c context.Context, event Event)
}

// NewSink returns a pixel-backed sink, or a no-op one when no pixel id is
// configured. Tracking failures are never surfaced to callers.
func NewSink(pixelID string, client myhttpclient.HTTPSender) Sink {
	logger := mylog.New("telemetry")

	if pixelID == "" {
		return &noopSink{logger: logger}
	}

	return &pixelSink{
		pixelID: pixelID,
		client:  client,
		logger:  logger,
	}
}

type pixelSink struct {
	pixelID  string
	client   myhttpclient.HTTPSender
	logger   mylog.Logger
	initOnce sync.Once
}

func (s *pixelSink) Track(c context.Context, event Event) {
	s.initOnce.Do(func() {
		s.logger.Log(c, "", mylog.SeverityInfo, "Tracking pixel %s activated", s.pixelID)
	})

	params := url.Values{}
	params.Set("id", s.pixelID)
	params.Set("ev", event.EventName())
	params.Set("noscript", "1")
	for name, value := range event.EventParams() {
		params.Set("cd["+name+"]", value)
	}

	httpStatus, _, err := s.client.Send(c, http.MethodGet, pixelEndpoint+"?"+params.Encode(), nil, nil)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityDebug, "Error tracking %s: %s", event.EventName(), err)
		return
	}
	if httpStatus != http.StatusOK {
		s.logger.Log(c, "", mylog.SeverityDebug, "Tracking %s returned http status %d", event.EventName(), httpStatus)
	}
}

type noopSink struct {
	logger   mylog.Logger
	warnOnce sync.Once
}

func (s *noopSink) Track(c context.Context, event Event) {
	s.warnOnce.Do(func() {
		s.logger.Log(c, "", mylog.SeverityInfo, "No pixel id configured, tracking disabled")
	})
}
