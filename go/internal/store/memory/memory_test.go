package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/store"
	"github.com/mcdev12/draftroom/go/internal/store/memory"
)

func seedDraft(t *testing.T, st *memory.Store, rounds, capacity int) *models.Draft {
	t.Helper()
	d, err := st.CreateDraft(context.Background(), store.CreateDraftRequest{
		ID:       uuid.New(),
		Name:     "Store Draft",
		Kind:     models.DraftKindLeague,
		Settings: models.DraftSettings{Rounds: rounds, TeamCapacity: capacity},
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return d
}

func seedTeam(t *testing.T, st *memory.Store, draftID uuid.UUID, name string) *models.Team {
	t.Helper()
	team, err := st.CreateTeam(context.Background(), store.CreateTeamRequest{
		ID:      uuid.New(),
		DraftID: draftID,
		Name:    name,
		Kind:    models.TeamKindBot,
	})
	if err != nil {
		t.Fatalf("CreateTeam %q: %v", name, err)
	}
	return team
}

func seedPlayer(t *testing.T, st *memory.Store, name string) *models.Player {
	t.Helper()
	player, err := st.CreatePlayer(context.Background(), store.CreatePlayerRequest{
		ID:       uuid.New(),
		FullName: name,
		Position: "WR",
	})
	if err != nil {
		t.Fatalf("CreatePlayer %q: %v", name, err)
	}
	return player
}

func startWithOrder(t *testing.T, st *memory.Store, draftID uuid.UUID, order []uuid.UUID) {
	t.Helper()
	err := st.StartDraft(context.Background(), store.StartDraftRequest{
		DraftID:    draftID,
		DraftOrder: order,
		StartedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
}

func commitReq(draftID, teamID, playerID uuid.UUID, overall, expected, newRound int, newStatus models.DraftStatus) store.CommitPickRequest {
	return store.CommitPickRequest{
		Pick: models.DraftPick{
			ID:          uuid.New(),
			DraftID:     draftID,
			Round:       newRound,
			Pick:        overall,
			OverallPick: overall,
			TeamID:      teamID,
			PlayerID:    playerID,
			PickedAt:    time.Now().UTC(),
		},
		ExpectedPick: expected,
		NewRound:     newRound,
		NewStatus:    newStatus,
	}
}

func TestCommitPickGuard(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	p1 := seedPlayer(t, st, "A")
	p2 := seedPlayer(t, st, "B")
	startWithOrder(t, st, d.ID, []uuid.UUID{t1.ID, t2.ID})

	if err := st.CommitPick(ctx, commitReq(d.ID, t1.ID, p1.ID, 1, 0, 1, models.DraftStatusInProgress)); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	// Same guard again: the counter moved on, so the commit loses.
	err := st.CommitPick(ctx, commitReq(d.ID, t2.ID, p2.ID, 1, 0, 1, models.DraftStatusInProgress))
	if !errors.Is(err, store.ErrStateConflict) {
		t.Fatalf("stale commit: %v, want ErrStateConflict", err)
	}

	// Fresh guard but a used player.
	err = st.CommitPick(ctx, commitReq(d.ID, t2.ID, p1.ID, 2, 1, 1, models.DraftStatusInProgress))
	if !errors.Is(err, store.ErrPlayerTaken) {
		t.Fatalf("reused player: %v, want ErrPlayerTaken", err)
	}

	// Nothing above should have advanced the draft past pick 1.
	got, err := st.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got.CurrentPick != 1 {
		t.Errorf("CurrentPick = %d, want 1", got.CurrentPick)
	}
	picks, err := st.ListPicksByDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListPicksByDraft: %v", err)
	}
	if len(picks) != 1 {
		t.Errorf("picks = %d, want 1", len(picks))
	}
}

func TestCommitPickCompletion(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	p1 := seedPlayer(t, st, "A")
	p2 := seedPlayer(t, st, "B")
	startWithOrder(t, st, d.ID, []uuid.UUID{t1.ID, t2.ID})

	if err := st.CommitPick(ctx, commitReq(d.ID, t1.ID, p1.ID, 1, 0, 1, models.DraftStatusInProgress)); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	completedAt := time.Now().UTC()
	final := commitReq(d.ID, t2.ID, p2.ID, 2, 1, 2, models.DraftStatusCompleted)
	final.CompletedAt = &completedAt
	if err := st.CommitPick(ctx, final); err != nil {
		t.Fatalf("final commit: %v", err)
	}

	got, err := st.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got.Status != models.DraftStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}

	// A completed draft accepts no further commits.
	p3 := seedPlayer(t, st, "C")
	err = st.CommitPick(ctx, commitReq(d.ID, t1.ID, p3.ID, 3, 2, 2, models.DraftStatusInProgress))
	if !errors.Is(err, store.ErrStateConflict) {
		t.Fatalf("commit after completion: %v, want ErrStateConflict", err)
	}
}

func TestStartDraftConflict(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	order := []uuid.UUID{t1.ID, t2.ID}
	startWithOrder(t, st, d.ID, order)

	err := st.StartDraft(ctx, store.StartDraftRequest{
		DraftID:    d.ID,
		DraftOrder: order,
		StartedAt:  time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrStateConflict) {
		t.Fatalf("second start: %v, want ErrStateConflict", err)
	}

	err = st.StartDraft(ctx, store.StartDraftRequest{
		DraftID:    uuid.New(),
		DraftOrder: order,
		StartedAt:  time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("start of missing draft: %v, want ErrNotFound", err)
	}
}

func TestCreateTeamConstraints(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	seedTeam(t, st, d.ID, "One")

	_, err := st.CreateTeam(ctx, store.CreateTeamRequest{
		ID:      uuid.New(),
		DraftID: d.ID,
		Name:    "One",
		Kind:    models.TeamKindBot,
	})
	if !errors.Is(err, store.ErrDuplicateTeam) {
		t.Fatalf("duplicate name: %v, want ErrDuplicateTeam", err)
	}

	seedTeam(t, st, d.ID, "Two")
	_, err = st.CreateTeam(ctx, store.CreateTeamRequest{
		ID:      uuid.New(),
		DraftID: d.ID,
		Name:    "Three",
		Kind:    models.TeamKindBot,
	})
	if !errors.Is(err, store.ErrDraftFull) {
		t.Fatalf("over capacity: %v, want ErrDraftFull", err)
	}

	_, err = st.CreateTeam(ctx, store.CreateTeamRequest{
		ID:      uuid.New(),
		DraftID: uuid.New(),
		Name:    "Orphan",
		Kind:    models.TeamKindBot,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing draft: %v, want ErrNotFound", err)
	}
}

func TestLookupsReportNotFound(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()

	if _, err := st.GetDraft(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetDraft: %v, want ErrNotFound", err)
	}
	if _, err := st.GetTeam(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTeam: %v, want ErrNotFound", err)
	}
	if _, err := st.GetPlayer(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPlayer: %v, want ErrNotFound", err)
	}
	if _, err := st.GetTeamByName(ctx, uuid.New(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTeamByName: %v, want ErrNotFound", err)
	}
}

func TestCancelDraftTerminalGuard(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)

	if err := st.CancelDraft(ctx, d.ID, time.Now().UTC()); err != nil {
		t.Fatalf("CancelDraft: %v", err)
	}
	err := st.CancelDraft(ctx, d.ID, time.Now().UTC())
	if !errors.Is(err, store.ErrStateConflict) {
		t.Fatalf("second cancel: %v, want ErrStateConflict", err)
	}
}

func TestResetDraftDropsPicks(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 2, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	p1 := seedPlayer(t, st, "A")
	p2 := seedPlayer(t, st, "B")
	startWithOrder(t, st, d.ID, []uuid.UUID{t1.ID, t2.ID})

	if err := st.CommitPick(ctx, commitReq(d.ID, t1.ID, p1.ID, 1, 0, 1, models.DraftStatusInProgress)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := st.CommitPick(ctx, commitReq(d.ID, t2.ID, p2.ID, 2, 1, 2, models.DraftStatusInProgress)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	dropped, err := st.ResetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("ResetDraft: %v", err)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}

	got, err := st.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if got.Status != models.DraftStatusNotStarted {
		t.Errorf("status = %s, want NOT_STARTED", got.Status)
	}
	if got.DraftOrder != nil {
		t.Errorf("order = %v, want nil", got.DraftOrder)
	}
	if got.CurrentRound != 1 || got.CurrentPick != 0 {
		t.Errorf("counters = (%d, %d), want (1, 0)", got.CurrentRound, got.CurrentPick)
	}
	if got.StartedAt != nil || got.CompletedAt != nil {
		t.Error("timestamps not cleared")
	}

	picks, err := st.ListPicksByDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListPicksByDraft: %v", err)
	}
	if len(picks) != 0 {
		t.Errorf("picks = %d, want 0", len(picks))
	}
	available, err := st.ListAvailablePlayers(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListAvailablePlayers: %v", err)
	}
	if len(available) != 2 {
		t.Errorf("available = %d, want 2", len(available))
	}
}

func TestListAvailablePlayersExcludesPicked(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	taken := seedPlayer(t, st, "Taken")
	free := seedPlayer(t, st, "Free")
	startWithOrder(t, st, d.ID, []uuid.UUID{t1.ID, t2.ID})

	if err := st.CommitPick(ctx, commitReq(d.ID, t1.ID, taken.ID, 1, 0, 1, models.DraftStatusInProgress)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	available, err := st.ListAvailablePlayers(ctx, d.ID)
	if err != nil {
		t.Fatalf("ListAvailablePlayers: %v", err)
	}
	if len(available) != 1 || available[0].ID != free.ID {
		t.Fatalf("available = %v, want just %s", available, free.FullName)
	}

	picked, err := st.PlayerPicked(ctx, d.ID, taken.ID)
	if err != nil {
		t.Fatalf("PlayerPicked: %v", err)
	}
	if !picked {
		t.Error("PlayerPicked = false for a picked player")
	}

	// Availability is per draft: the same player is free elsewhere.
	other := seedDraft(t, st, 1, 2)
	available, err = st.ListAvailablePlayers(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListAvailablePlayers: %v", err)
	}
	if len(available) != 2 {
		t.Errorf("available in other draft = %d, want 2", len(available))
	}
}

func TestUpdateTeamNameDuplicate(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	seedTeam(t, st, d.ID, "Two")

	_, err := st.UpdateTeamName(ctx, t1.ID, "Two")
	if !errors.Is(err, store.ErrDuplicateTeam) {
		t.Fatalf("duplicate rename: %v, want ErrDuplicateTeam", err)
	}

	renamed, err := st.UpdateTeamName(ctx, t1.ID, "Uno")
	if err != nil {
		t.Fatalf("UpdateTeamName: %v", err)
	}
	if renamed.Name != "Uno" {
		t.Errorf("name = %q, want %q", renamed.Name, "Uno")
	}
}

// TestReturnedValuesAreCopies guards the map-backed store against callers
// reaching into shared state through returned pointers.
func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	d := seedDraft(t, st, 1, 2)
	t1 := seedTeam(t, st, d.ID, "One")
	t2 := seedTeam(t, st, d.ID, "Two")
	startWithOrder(t, st, d.ID, []uuid.UUID{t1.ID, t2.ID})

	first, err := st.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	first.Name = "Scribbled"
	first.DraftOrder[0] = uuid.New()

	second, err := st.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if second.Name != "Store Draft" {
		t.Errorf("name = %q; stored draft was mutated through a returned pointer", second.Name)
	}
	if second.DraftOrder[0] != t1.ID {
		t.Error("draft order was mutated through a returned slice")
	}

	team, err := st.GetTeam(ctx, t1.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	team.Name = "Scribbled"
	fresh, err := st.GetTeam(ctx, t1.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if fresh.Name != "One" {
		t.Errorf("team name = %q; stored team was mutated", fresh.Name)
	}
}

func TestListDraftsOrdering(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	for i := 0; i < 3; i++ {
		seedDraft(t, st, 1, 2)
		time.Sleep(time.Millisecond)
	}

	drafts, err := st.ListDrafts(ctx)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("drafts = %d, want 3", len(drafts))
	}
	for i := 1; i < len(drafts); i++ {
		if drafts[i].CreatedAt.Before(drafts[i-1].CreatedAt) {
			t.Fatalf("drafts out of creation order at index %d", i)
		}
	}
}

func TestCreateDraftDuplicateID(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	id := uuid.New()

	req := store.CreateDraftRequest{
		ID:       id,
		Name:     "First",
		Kind:     models.DraftKindLeague,
		Settings: models.DraftSettings{Rounds: 1, TeamCapacity: 2},
	}
	if _, err := st.CreateDraft(ctx, req); err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := st.CreateDraft(ctx, req); err == nil {
		t.Fatal("duplicate draft id accepted")
	}
}
