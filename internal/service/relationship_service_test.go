package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/gkouam/soulbondai-sub004/internal/domain"
)

func newRelationshipFixture() (*RelationshipService, *fakeProfileRepo, *fakeEventRepo) {
	profiles := newFakeProfileRepo()
	events := newFakeEventRepo()
	svc := NewRelationshipService(zap.NewNop(), profiles, events)
	return svc, profiles, events
}

func TestGetOrCreateProfileProvisionsOnce(t *testing.T) {
	svc, profiles, _ := newRelationshipFixture()
	ctx := context.Background()

	p, err := svc.GetOrCreateProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreateProfile: %v", err)
	}
	if p.TrustLevel != 0 {
		t.Fatalf("fresh profile trust = %v, want 0", p.TrustLevel)
	}

	profiles.mu.Lock()
	stored := profiles.profiles["user-1"]
	profiles.mu.Unlock()
	if stored.UserID != "user-1" {
		t.Fatalf("profile not persisted")
	}

	again, err := svc.GetOrCreateProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("second GetOrCreateProfile: %v", err)
	}
	if again.UserID != "user-1" {
		t.Fatalf("expected the existing profile back")
	}
}

func TestApplyTrustDeltaClamps(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		delta   float64
		want    float64
	}{
		{"normal increase", 10, 2.5, 12.5},
		{"clamp at ceiling", 99, 5, 100},
		{"clamp at floor", 1, -5, 0},
		{"negative delta", 50, -3, 47},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, profiles, events := newRelationshipFixture()
			ctx := context.Background()
			profiles.profiles["user-1"] = domain.Profile{UserID: "user-1", TrustLevel: tt.initial}

			got, err := svc.ApplyTrustDelta(ctx, "user-1", tt.delta, "conversation")
			if err != nil {
				t.Fatalf("ApplyTrustDelta: %v", err)
			}
			if got != tt.want {
				t.Fatalf("trust = %v, want %v", got, tt.want)
			}

			events.mu.Lock()
			defer events.mu.Unlock()
			if len(events.events) != 1 || events.events[0].Type != domain.EventTrustChange {
				t.Fatalf("expected one trust_change event, got %+v", events.events)
			}
			if events.events[0].TrustDelta != tt.delta {
				t.Fatalf("event delta = %v, want %v", events.events[0].TrustDelta, tt.delta)
			}
		})
	}
}

func TestApplyTrustDeltaRetriesTransientFailure(t *testing.T) {
	svc, profiles, _ := newRelationshipFixture()
	ctx := context.Background()
	profiles.profiles["user-1"] = domain.Profile{UserID: "user-1", TrustLevel: 10}
	profiles.failNext = errStoreDown

	got, err := svc.ApplyTrustDelta(ctx, "user-1", 1, "conversation")
	if err != nil {
		t.Fatalf("ApplyTrustDelta should survive one transient failure: %v", err)
	}
	if got != 11 {
		t.Fatalf("trust = %v, want 11", got)
	}
}

func TestCheckMilestonesIdempotent(t *testing.T) {
	svc, profiles, events := newRelationshipFixture()
	ctx := context.Background()
	profiles.profiles["user-1"] = domain.Profile{UserID: "user-1", TrustLevel: 26}

	first, err := svc.CheckMilestones(ctx, "user-1")
	if err != nil {
		t.Fatalf("first CheckMilestones: %v", err)
	}
	second, err := svc.CheckMilestones(ctx, "user-1")
	if err != nil {
		t.Fatalf("second CheckMilestones: %v", err)
	}

	// Con trust 26 estan disponibles first_conversation, first_week y
	// first_secret; cada uno genera exactamente un evento.
	for _, id := range []string{"first_conversation", "first_week", "first_secret"} {
		if n := events.countMilestone("user-1", id); n != 1 {
			t.Fatalf("milestone %s recorded %d times, want 1", id, n)
		}
	}
	if n := events.countMilestone("user-1", "nickname"); n != 0 {
		t.Fatalf("nickname requires trust 30, must not be recorded, got %d events", n)
	}

	for _, statuses := range [][]domain.MilestoneStatus{first, second} {
		for _, st := range statuses {
			if st.Available && !st.Achieved {
				t.Fatalf("available milestone %s not marked achieved", st.Milestone.ID)
			}
			if !st.Available && st.Achieved {
				t.Fatalf("unavailable milestone %s marked achieved", st.Milestone.ID)
			}
		}
	}
}

func TestGetStageInfo(t *testing.T) {
	svc, profiles, _ := newRelationshipFixture()
	ctx := context.Background()
	profiles.profiles["user-1"] = domain.Profile{UserID: "user-1", TrustLevel: 45}

	info, err := svc.GetStageInfo(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetStageInfo: %v", err)
	}
	if info.CurrentStage.Name != "trusted_confidant" {
		t.Fatalf("current stage = %q, want trusted_confidant", info.CurrentStage.Name)
	}
	if info.NextStage == nil || info.NextStage.Name != "deep_connection" {
		t.Fatalf("next stage = %+v, want deep_connection", info.NextStage)
	}
	if info.Progress != 25 {
		t.Fatalf("progress = %v, want 25", info.Progress)
	}
	if len(info.Milestones) != len(allMilestones()) {
		t.Fatalf("expected status for every milestone, got %d", len(info.Milestones))
	}
}
