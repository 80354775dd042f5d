package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	kgo "github.com/segmentio/kafka-go"

	rkafka "localch-scraper/internal/kafka"
	"localch-scraper/internal/models"
	"localch-scraper/mocks"
)

func TestProducerWriteListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := rkafka.NewProducerWithWriter(writer)

	record := models.ListingRecord{
		Name:    "Beck Glatz",
		Address: "Bahnhofstrasse 1, 8001 Zürich",
		Phone:   "044 123 45 67",
		Email:   models.NotAvailable,
		URL:     "https://www.local.ch/en/d/zurich/8001/bakery/beck-glatz",
	}

	writer.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kgo.Message) error {
			if len(msgs) != 1 {
				t.Fatalf("expected 1 message, got %d", len(msgs))
			}
			if string(msgs[0].Key) != record.URL {
				t.Fatalf("unexpected message key: %s", string(msgs[0].Key))
			}
			if len(msgs[0].Headers) != 1 || string(msgs[0].Headers[0].Value) != "run-1" {
				t.Fatalf("unexpected headers: %+v", msgs[0].Headers)
			}

			var got models.ListingEvent
			if err := json.Unmarshal(msgs[0].Value, &got); err != nil {
				t.Fatalf("failed to decode message: %v", err)
			}
			if got.RunID != "run-1" || got.Keyword != "bakery" || got.Record != record || got.ScrapedAt.IsZero() {
				t.Fatalf("unexpected event payload: %+v", got)
			}
			return nil
		})

	if err := prod.WriteListing(context.Background(), "run-1", "bakery", record); err != nil {
		t.Fatalf("WriteListing returned error: %v", err)
	}
}

func TestProducerWriteListingError(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	prod := rkafka.NewProducerWithWriter(writer)

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("write failed"))
	if err := prod.WriteListing(context.Background(), "run-err", "bakery", models.ListingRecord{}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestProducerClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	writer := mocks.NewMockMessageWriter(ctrl)
	writer.EXPECT().Close().Return(nil)
	if err := rkafka.NewProducerWithWriter(writer).Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
