package service

import (
	"context"
	"testing"

	commonerrors "github.com/academiahub/backend/internal/common/errors"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/principal"
	"github.com/academiahub/backend/internal/prefs/domain"
)

type recordingStore struct {
	name  string
	calls *[]string
	prefs domain.Preferences
}

func (s *recordingStore) Get(context.Context, string) (domain.Preferences, error) {
	*s.calls = append(*s.calls, s.name+":get")
	return s.prefs, nil
}

func (s *recordingStore) Add(_ context.Context, _ string, field domain.Field, value string) error {
	*s.calls = append(*s.calls, s.name+":add:"+string(field)+":"+value)
	return nil
}

func (s *recordingStore) Remove(_ context.Context, _ string, field domain.Field, value string) error {
	*s.calls = append(*s.calls, s.name+":remove:"+string(field)+":"+value)
	return nil
}

func newRoutingFixture() (*Service, *[]string) {
	calls := &[]string{}
	durable := &recordingStore{name: "durable", calls: calls}
	guest := &recordingStore{name: "guest", calls: calls}
	return NewService(durable, guest, logger.GetInstance()), calls
}

func TestAddRoutesGuestsToGuestStore(t *testing.T) {
	svc, calls := newRoutingFixture()

	_, err := svc.Add(context.Background(), principal.Principal{Key: "g1", Guest: true}, domain.FieldInterest, "quantum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if (*calls)[0] != "guest:add:interest:quantum" {
		t.Fatalf("expected guest store call, got %v", *calls)
	}
}

func TestAddRoutesUsersToDurableStore(t *testing.T) {
	svc, calls := newRoutingFixture()

	_, err := svc.Add(context.Background(), principal.Principal{Key: "u1"}, domain.FieldFollowedAuthor, "Jane Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if (*calls)[0] != "durable:add:followed_author:Jane Doe" {
		t.Fatalf("expected durable store call, got %v", *calls)
	}
}

func TestAddTrimsValue(t *testing.T) {
	svc, calls := newRoutingFixture()

	_, err := svc.Add(context.Background(), principal.Principal{Key: "u1"}, domain.FieldExcludedCategory, "  q-bio.NC  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if (*calls)[0] != "durable:add:excluded_category:q-bio.NC" {
		t.Fatalf("expected trimmed value, got %v", *calls)
	}
}

func TestAddRejectsEmptyValue(t *testing.T) {
	svc, _ := newRoutingFixture()

	_, err := svc.Add(context.Background(), principal.Principal{Key: "u1"}, domain.FieldInterest, "   ")
	if !commonerrors.Is(err, commonerrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestRemoveRejectsUnknownField(t *testing.T) {
	svc, _ := newRoutingFixture()

	_, err := svc.Remove(context.Background(), principal.Principal{Key: "u1"}, domain.Field("bogus"), "x")
	if !commonerrors.Is(err, commonerrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}
