package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixshop/storefront/lib/mylog"
	"github.com/pixshop/storefront/lib/mypublisher"
	"github.com/pixshop/storefront/lib/mypubsub"
	"github.com/pixshop/storefront/lib/myqueue"
	"github.com/pixshop/storefront/lib/mystore"
	"github.com/pixshop/storefront/lib/mytime"
	"github.com/pixshop/storefront/lib/myuuid"
	"github.com/pixshop/storefront/services/storefrontevents"
)

// A full CSV snapshot is exported on every csvSnapshotInterval-th save.
const csvSnapshotInterval = 5

type service struct {
	recordStore mystore.Store[StoredRecord]
	queue       myqueue.TaskQueuer
	exporter    FileExporter
	publisher   mypublisher.Publisher
	subscriber  mypubsub.PubSub
	nower       mytime.Nower
	uuider      myuuid.UUIDer
	logger      mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(recordStore mystore.Store[StoredRecord], queue myqueue.TaskQueuer, exporter FileExporter, publisher mypublisher.Publisher, subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		recordStore: recordStore,
		queue:       queue,
		exporter:    exporter,
		publisher:   publisher,
		subscriber:  subscriber,
		nower:       nower,
		uuider:      uuider,
		logger:      logger,
	}
}

func (s *service) save(c context.Context, record StoredRecord) (StoredRecord, error) {
	now := s.nower.Now()

	record.UID = fmt.Sprintf("reg-%d-%s", now.UnixMilli(), shortID(s.uuider.Create()))
	record.CreatedAt = now

	recordCount := 0
	err := s.recordStore.RunInTransaction(c, func(c context.Context) error {
		err := s.recordStore.Put(c, record.UID, record)
		if err != nil {
			return fmt.Errorf("error storing record: %s", err)
		}

		records, err := s.recordStore.List(c)
		if err != nil {
			return fmt.Errorf("error counting records: %s", err)
		}
		recordCount = len(records)

		err = s.publisher.Publish(c, storefrontevents.TopicName, storefrontevents.RegistrationRecorded{
			RegistrationUID: record.UID,
			ShopperEmail:    record.Email,
			AmountInCents:   record.OrderValueCents,
		})
		if err != nil {
			return fmt.Errorf("error publishing event: %s", err)
		}

		return nil
	})
	if err != nil {
		return StoredRecord{}, err
	}

	s.logger.Log(c, record.UID, mylog.SeverityInfo, "Stored registration %s (%s)", record.UID, record.Email)

	// Export side-effect is fire-and-forget: a failed enqueue never fails the save
	s.enqueueExport(c, fmt.Sprintf("/api/registration/%s/export", record.UID), "export-"+record.UID)
	if recordCount%csvSnapshotInterval == 0 {
		s.enqueueExport(c, "/api/registration/export/snapshot", fmt.Sprintf("snapshot-%d", recordCount))
	}

	return record, nil
}

func (s *service) enqueueExport(c context.Context, urlPath string, taskUID string) {
	err := s.queue.Enqueue(c, myqueue.Task{
		UID:            taskUID,
		WebhookURLPath: urlPath,
		Payload:        []byte{},
	})
	if err != nil {
		s.logger.Log(c, taskUID, mylog.SeverityWarn, "Error enqueueing export task %s: %s", taskUID, err)
	}
}

func (s *service) list(c context.Context) ([]StoredRecord, error) {
	records, err := s.recordStore.List(c)
	if err != nil {
		return nil, fmt.Errorf("error fetching records: %s", err)
	}
	return records, nil
}

func (s *service) getByID(c context.Context, uid string) (StoredRecord, bool, error) {
	return s.recordStore.Get(c, uid)
}

func (s *service) getByEmail(c context.Context, email string) (StoredRecord, bool, error) {
	records, err := s.recordStore.List(c)
	if err != nil {
		return StoredRecord{}, false, fmt.Errorf("error fetching records: %s", err)
	}

	for _, r := range records {
		if r.Email == email {
			return r, true, nil
		}
	}

	return StoredRecord{}, false, nil
}

func (s *service) update(c context.Context, uid string, update RecordUpdate) (StoredRecord, bool, error) {
	updated := StoredRecord{}
	found := false

	err := s.recordStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		record, exists, err := s.recordStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching record %s: %s", uid, err)
		}
		if !exists {
			return nil
		}
		found = true

		applyUpdate(&record, update)

		err = s.recordStore.Put(c, uid, record)
		if err != nil {
			return fmt.Errorf("error storing record %s: %s", uid, err)
		}
		updated = record

		return nil
	})
	if err != nil {
		return StoredRecord{}, false, err
	}

	return updated, found, nil
}

func applyUpdate(record *StoredRecord, update RecordUpdate) {
	if update.Name != nil {
		record.Name = *update.Name
	}
	if update.Email != nil {
		record.Email = *update.Email
	}
	if update.Phone != nil {
		record.Phone = *update.Phone
	}
	if update.Address != nil {
		record.Address = *update.Address
	}
	if update.PixCode != nil {
		record.PixCode = *update.PixCode
	}
	if update.IsPaid != nil {
		record.IsPaid = *update.IsPaid
	}
	if update.PaymentMethod != nil {
		record.PaymentMethod = *update.PaymentMethod
	}
}

func (s *service) markPaid(c context.Context, uid string, pixCode string) (StoredRecord, bool, error) {
	if pixCode == "" {
		pixCode = s.synthesizePixReference()
	}
	isPaid := true

	return s.update(c, uid, RecordUpdate{
		IsPaid:  &isPaid,
		PixCode: &pixCode,
	})
}

func (s *service) synthesizePixReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(s.uuider.Create(), "-", ""))
	if len(raw) > 9 {
		raw = raw[:9]
	}
	return "PIX" + raw
}

func (s *service) remove(c context.Context, uid string) (bool, error) {
	found := false

	err := s.recordStore.RunInTransaction(c, func(c context.Context) error {
		_, exists, err := s.recordStore.Get(c, uid)
		if err != nil {
			return fmt.Errorf("error fetching record %s: %s", uid, err)
		}
		if !exists {
			return nil
		}
		found = true

		return s.recordStore.Remove(c, uid)
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

// clear wipes the whole collection; clearing an empty collection is a no-op
func (s *service) clear(c context.Context) error {
	return s.recordStore.RunInTransaction(c, func(c context.Context) error {
		records, err := s.recordStore.List(c)
		if err != nil {
			return fmt.Errorf("error fetching records: %s", err)
		}

		for _, r := range records {
			err = s.recordStore.Remove(c, r.UID)
			if err != nil {
				return fmt.Errorf("error removing record %s: %s", r.UID, err)
			}
		}

		return nil
	})
}

func (s *service) stats(c context.Context) (Stats, error) {
	records, err := s.recordStore.List(c)
	if err != nil {
		return Stats{}, fmt.Errorf("error fetching records: %s", err)
	}

	stats := Stats{
		TotalRecords: len(records),
	}
	for _, r := range records {
		if r.IsPaid {
			stats.PaidRecords++
			stats.TotalRevenueCents += r.OrderValueCents
		}
	}
	stats.UnpaidRecords = stats.TotalRecords - stats.PaidRecords
	if stats.TotalRecords > 0 {
		stats.ConversionRate = float64(stats.PaidRecords) / float64(stats.TotalRecords) * 100.0
	}

	return stats, nil
}

func (s *service) exportCSV(c context.Context) (string, error) {
	records, err := s.list(c)
	if err != nil {
		return "", err
	}
	return renderCSV(records)
}

func (s *service) exportText(c context.Context) (string, error) {
	records, err := s.list(c)
	if err != nil {
		return "", err
	}
	stats, err := s.stats(c)
	if err != nil {
		return "", err
	}
	return renderTextReport(records, stats, s.nower.Now()), nil
}

// exportRecordFile writes the single-record text file for a fresh save
func (s *service) exportRecordFile(c context.Context, uid string) error {
	record, found, err := s.recordStore.Get(c, uid)
	if err != nil {
		return fmt.Errorf("error fetching record %s: %s", uid, err)
	}
	if !found {
		return fmt.Errorf("record %s not found", uid)
	}

	filename := fmt.Sprintf("cadastro-%s.txt", record.CreatedAt.Format("20060102-150405"))

	return s.exporter.WriteFile(c, filename, renderRecordText(record))
}

// exportSnapshotFile writes the full CSV backup
func (s *service) exportSnapshotFile(c context.Context) error {
	content, err := s.exportCSV(c)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("backup-completo-%s.csv", s.nower.Now().Format("20060102-150405"))

	return s.exporter.WriteFile(c, filename, content)
}

func shortID(uid string) string {
	uid = strings.ReplaceAll(uid, "-", "")
	if len(uid) > 9 {
		uid = uid[:9]
	}
	return uid
}
