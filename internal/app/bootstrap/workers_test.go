package bootstrap

import (
	"context"
	"log/slog"
	"testing"
	"time"

	contractsv1 "daogov/contracts/gen/events/v1"
	daoengine "daogov/contexts/governance/dao-engine"
	"daogov/contexts/governance/dao-engine/application/commands"
	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/internal/platform/messaging"
	"daogov/internal/platform/metrics"
)

func TestWorkerLoopFinalizesAndRelays(t *testing.T) {
	module, err := daoengine.NewInMemoryModule(daoengine.InMemoryConfig{
		Owner:          "owner",
		CustodyAccount: "dao-custody",
		MinQuorum:      32,
		VotingPeriod:   time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	module.Store.SetNow(start)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, _, err := module.Commands.CreateProposal(ctx, commands.CreateProposalCommand{
		Principal:   "owner",
		Recipient:   "token",
		Description: "noop",
	}); err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	module.Store.Advance(2 * time.Hour)

	kafka, err := messaging.NewKafka(nil, slog.Default())
	if err != nil {
		t.Fatalf("new bus: %v", err)
	}
	observed := make(chan contractsv1.Envelope, 8)
	if err := kafka.Subscribe(ctx, "dao.proposal.*", "test", func(_ context.Context, event contractsv1.Envelope) error {
		observed <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	bus := &eventBus{kafka: kafka, publisher: messaging.Fanout{kafka}}
	relay := module.Relay
	relay.Publisher = bus
	expiry := module.Expiry
	loop := &workerLoop{
		relay:        &relay,
		expiry:       &expiry,
		bus:          bus,
		pollInterval: time.Second,
		metrics:      metrics.New(),
		logger:       slog.Default(),
	}
	loop.tick(ctx)

	view, err := module.Queries.GetProposal(ctx, 0)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if view.Status != entities.ProposalStatusExpired || view.Proposal.ClosedAt == nil {
		t.Fatalf("expected finalized expired proposal, got %+v", view)
	}

	want := []string{string(entities.EventProposalCreated), string(entities.EventProposalExpired)}
	for i, eventType := range want {
		select {
		case event := <-observed:
			if event.EventType != eventType || event.Sequence != uint64(i+1) {
				t.Fatalf("event %d: expected %s seq %d, got %s seq %d", i, eventType, i+1, event.EventType, event.Sequence)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d (%s) was not relayed", i, eventType)
		}
	}

	loop.tick(ctx)
	select {
	case event := <-observed:
		t.Fatalf("unexpected duplicate delivery %s", event.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerLoopRejectsZeroInterval(t *testing.T) {
	loop := &workerLoop{logger: slog.Default()}
	if err := loop.run(context.Background()); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9090": ":9090", ":7070": ":7070", " 81 ": ":81"}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
