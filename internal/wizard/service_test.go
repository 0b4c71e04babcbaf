package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func newServiceUnderTest() (*Service, *capturePublisher) {
	pub := &capturePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(DefaultLeaseGraph(), DefaultLeaseRules(), newMemStore(), pub, logger)
	return svc, pub
}

func TestService_CreateAndGetSession(t *testing.T) {
	svc, pub := newServiceUnderTest()
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}
	if created.ActiveStep != 1 {
		t.Errorf("ActiveStep = %d, want 1", created.ActiveStep)
	}
	if len(pub.byType(EventDraftCreated)) != 1 {
		t.Error("draft created event not published")
	}

	loaded, err := svc.GetSession(ctx, "tenant-1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Graph() == nil {
		t.Error("loaded session not rehydrated")
	}
}

func TestService_Navigate_PublishesStepCompleted(t *testing.T) {
	svc, pub := newServiceUnderTest()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateFields(ctx, "tenant-1", session.ID, map[string]any{
		FieldCustomerID:    "C100",
		FieldCustomerName:  "Amira Hassan",
		FieldCustomerPhone: "+971501234567",
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Navigate(ctx, "tenant-1", session.ID, 2); err != nil {
		t.Fatal(err)
	}
	if len(pub.byType(EventStepCompleted)) != 1 {
		t.Error("step completed event not published")
	}

	// Navigating back and forth over the already completed step does not
	// publish it again.
	if _, err := svc.Navigate(ctx, "tenant-1", session.ID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Navigate(ctx, "tenant-1", session.ID, 2); err != nil {
		t.Fatal(err)
	}
	if got := len(pub.byType(EventStepCompleted)); got != 1 {
		t.Errorf("step completed events = %d, want 1", got)
	}
}

func TestService_Submit_RefusesIncomplete(t *testing.T) {
	svc, _ := newServiceUnderTest()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Submit(ctx, "tenant-1", session.ID, nil)
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("Submit = %v, want SubmissionError", err)
	}
	if len(subErr.InvalidSteps) == 0 || len(subErr.Titles) != len(subErr.InvalidSteps) {
		t.Errorf("SubmissionError = %+v, want titled invalid steps", subErr)
	}
}

func TestService_Submit_Success(t *testing.T) {
	svc, pub := newServiceUnderTest()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateFields(ctx, "tenant-1", session.ID, map[string]any{
		FieldCustomerID:      "C100",
		FieldCustomerName:    "Amira Hassan",
		FieldCustomerPhone:   "+971501234567",
		FieldPickupDate:      "2026-09-10",
		FieldReturnDate:      "2026-09-17",
		FieldLicenseNumber:   "DXB-99812",
		FieldReviewConfirmed: true,
	}); err != nil {
		t.Fatal(err)
	}
	for _, n := range svc.Graph().Numbers() {
		if _, err := svc.ApplyStepAction(ctx, "tenant-1", session.ID, n, ActionComplete); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.Submit(ctx, "tenant-1", session.ID, nil); err != nil {
		t.Fatalf("Submit = %v", err)
	}
	if len(pub.byType(EventDraftSubmitted)) != 1 {
		t.Error("submitted event not published")
	}
}

func TestService_ApplyStepAction_SkipPublishes(t *testing.T) {
	svc, pub := newServiceUnderTest()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "tenant-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ApplyStepAction(ctx, "tenant-1", session.ID, 4, ActionSkip); err != nil {
		t.Fatal(err)
	}
	if len(pub.byType(EventStepSkipped)) != 1 {
		t.Error("step skipped event not published")
	}

	if _, err := svc.ApplyStepAction(ctx, "tenant-1", session.ID, 4, StepAction("explode")); err == nil {
		t.Error("unknown action should fail")
	}
}
