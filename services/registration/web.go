package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixshop/storefront/lib/mycontext"
	"github.com/pixshop/storefront/lib/myerrors"
	"github.com/pixshop/storefront/lib/myhttp"
	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mypubsub"
	"github.com/pixshop/storefront/lib/myqueue"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/storefrontevents"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(recordStore mystore.Store[StoredRecord], queue myqueue.TaskQueuer, exporter FileExporter, publisher mypublisher.Publisher, subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("registration")

	return &webService{
		logger:  logger,
		service: newService(recordStore, queue, exporter, publisher, subscriber, nower, uuider, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	// Admin test tooling: not part of the buyer-facing flow
	router.HandleFunc("/api/registration", s.savePage()).Methods("POST")
	router.HandleFunc("/api/registration", s.listPage()).Methods("GET")
	router.HandleFunc("/api/registration", s.clearPage()).Methods("DELETE")
	router.HandleFunc("/api/registration/stats", s.statsPage()).Methods("GET")
	router.HandleFunc("/api/registration/export/csv", s.exportCSVPage()).Methods("GET")
	router.HandleFunc("/api/registration/export/text", s.exportTextPage()).Methods("GET")
	router.HandleFunc("/api/registration/email/{email}", s.getByEmailPage()).Methods("GET")

	router.HandleFunc("/api/registration/{uid}", s.getPage()).Methods("GET")
	router.HandleFunc("/api/registration/{uid}", s.updatePage()).Methods("PUT")
	router.HandleFunc("/api/registration/{uid}", s.removePage()).Methods("DELETE")
	router.HandleFunc("/api/registration/{uid}/paid", s.markPaidPage()).Methods("PUT")

	// Called by the task queue, not by users
	router.HandleFunc("/api/registration/export/snapshot", s.exportSnapshotTriggerPage()).Methods("PUT")
	router.HandleFunc("/api/registration/{uid}/export", s.exportRecordTriggerPage()).Methods("PUT")

	// Called by pubsub push, not by users
	router.HandleFunc("/api/registration/event", s.eventPage()).Methods("POST")

	err := s.service.publisher.CreateTopic(c, storefrontevents.TopicName)
	if err != nil {
		return err
	}

	return s.service.Subscribe(c)
}

func (s *webService) eventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := storefrontevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Successfully processed event"})
	}
}

func (s *webService) savePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		record := StoredRecord{}
		err := json.NewDecoder(r.Body).Decode(&record)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing record: %s", err)))
			return
		}

		stored, err := s.service.save(c, record)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, stored)
	}
}

func (s *webService) listPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		records, err := s.service.list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, records)
	}
}

func (s *webService) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		record, found, err := s.service.getByID(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("record with uid %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, record)
	}
}

func (s *webService) getByEmailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		email := mux.Vars(r)["email"]

		record, found, err := s.service.getByEmail(c, email)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("record with email %s not found", email)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, record)
	}
}

func (s *webService) updatePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		update := RecordUpdate{}
		err := json.NewDecoder(r.Body).Decode(&update)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing update: %s", err)))
			return
		}

		record, found, err := s.service.update(c, uid, update)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 3, myerrors.NewNotFoundError(fmt.Errorf("record with uid %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, record)
	}
}

func (s *webService) markPaidPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]
		pixCode := r.URL.Query().Get("pixCode")

		record, found, err := s.service.markPaid(c, uid, pixCode)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("record with uid %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, record)
	}
}

func (s *webService) removePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		found, err := s.service.remove(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("record with uid %s not found", uid)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Record removed"})
	}
}

func (s *webService) clearPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.clear(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "All records removed"})
	}
}

func (s *webService) statsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		stats, err := s.service.stats(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, stats)
	}
}

func (s *webService) exportCSVPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		content, err := s.service.exportCSV(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		fmt.Fprint(w, content)
	}
}

func (s *webService) exportTextPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		content, err := s.service.exportText(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, content)
	}
}

func (s *webService) exportRecordTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		uid := mux.Vars(r)["uid"]

		err := s.service.exportRecordFile(c, uid)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Record exported"})
	}
}

func (s *webService) exportSnapshotTriggerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.exportSnapshotFile(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "Snapshot exported"})
	}
}
