package workers

import (
	"context"
	"errors"
	"log/slog"

	application "daogov/contexts/governance/dao-engine/application"
	"daogov/contexts/governance/dao-engine/application/commands"
	"daogov/contexts/governance/dao-engine/application/queries"
)

// SystemPrincipal is the caller recorded for transitions applied by workers.
const SystemPrincipal = "system:expiry-finalizer"

// ExpiryFinalizer closes proposals whose deadline passed without execution so
// the Expired state and its event are recorded without waiting for a caller.
type ExpiryFinalizer struct {
	Commands commands.GovernanceUseCase
	Queries  queries.GovernanceQueries
	Logger   *slog.Logger
}

func (f ExpiryFinalizer) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(f.Logger)
	ids := f.Queries.ExpiredOpenProposals(ctx)
	finalized := 0
	var errs []error
	for _, id := range ids {
		if _, err := f.Commands.FinalizeExpired(ctx, commands.FinalizeExpiredCommand{
			Principal:  SystemPrincipal,
			ProposalID: id,
		}); err != nil {
			logger.Error("dao proposal expiry failed",
				"event", "dao_proposal_expiry_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"proposal_id", id,
				"error", err.Error(),
			)
			errs = append(errs, err)
			continue
		}
		finalized++
	}
	if finalized > 0 {
		logger.Info("dao proposal expiry sweep completed",
			"event", "dao_proposal_expiry_completed",
			"module", application.ModuleName,
			"layer", "worker",
			"expired_count", finalized,
		)
	}
	return finalized, errors.Join(errs...)
}
