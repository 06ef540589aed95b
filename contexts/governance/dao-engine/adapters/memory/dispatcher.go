package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"daogov/contexts/governance/dao-engine/domain/entities"
	"daogov/contexts/governance/dao-engine/ports"
	"daogov/internal/platform/abi"
)

var (
	ErrUnknownTarget   = errors.New("dispatch target is not registered")
	ErrUnknownSelector = errors.New("dispatch target has no handler for selector")
)

// Handler executes one decoded instruction. args holds the ABI words that
// follow the selector.
type Handler func(ctx context.Context, args []byte) error

// Dispatcher routes proposal payloads to in-process handlers keyed by target
// and 4-byte selector. A call without payload to an unregistered target is a
// plain transfer of control and succeeds.
type Dispatcher struct {
	mu      sync.RWMutex
	targets map[string]map[abi.Selector]Handler
	calls   []DispatchedCall
}

type DispatchedCall struct {
	Target   string
	Selector string
	Payload  []byte
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{targets: make(map[string]map[abi.Selector]Handler)}
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

func (d *Dispatcher) Register(target string, signature string, handler Handler) {
	target = strings.TrimSpace(target)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.targets[target] == nil {
		d.targets[target] = make(map[abi.Selector]Handler)
	}
	d.targets[target][abi.SelectorOf(signature)] = handler
}

// Call does not hold the dispatcher lock while the handler runs so handlers
// may dispatch again.
func (d *Dispatcher) Call(ctx context.Context, target string, payload []byte) error {
	target = strings.TrimSpace(target)
	d.mu.RLock()
	handlers, known := d.targets[target]
	d.mu.RUnlock()

	if len(payload) == 0 {
		d.record(target, "", payload)
		if !known {
			return nil
		}
		handler, ok := handlers[abi.Selector{}]
		if !ok {
			return nil
		}
		return handler(ctx, nil)
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	selector, args, err := abi.SplitCall(payload)
	if err != nil {
		return err
	}
	d.mu.RLock()
	handler, ok := handlers[selector]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownSelector, selector, target)
	}
	if err := handler(ctx, args); err != nil {
		return err
	}
	d.record(target, selector.String(), payload)
	return nil
}

// Calls lists the instructions that completed, in dispatch order.
func (d *Dispatcher) Calls() []DispatchedCall {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]DispatchedCall(nil), d.calls...)
}

func (d *Dispatcher) record(target string, selector string, payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, DispatchedCall{
		Target:   target,
		Selector: selector,
		Payload:  append([]byte(nil), payload...),
	})
}

// RegisterToken exposes ledger at target. State-changing instructions act on
// behalf of sender, which must not be the custody account backing deposits.
func RegisterToken(d *Dispatcher, target string, sender string, ledger *AssetLedger) {
	read := func(ctx context.Context, _ []byte) error { return ctx.Err() }
	d.Register(target, "name()", read)
	d.Register(target, "symbol()", read)
	d.Register(target, "decimals()", read)
	d.Register(target, "totalSupply()", read)
	d.Register(target, "transfer(address,uint256)", func(_ context.Context, args []byte) error {
		to, amount, err := addressAndAmount(args)
		if err != nil {
			return err
		}
		return ledger.TransferAs(sender, to, amount)
	})
	d.Register(target, "approve(address,uint256)", func(_ context.Context, args []byte) error {
		spender, amount, err := addressAndAmount(args)
		if err != nil {
			return err
		}
		return ledger.Approve(sender, spender, amount)
	})
}

func addressAndAmount(args []byte) (string, entities.Amount, error) {
	to, err := abi.StringAt(args, 0)
	if err != nil {
		return "", 0, err
	}
	amount, err := abi.Uint64At(args, 1)
	if err != nil {
		return "", 0, err
	}
	return to, entities.Amount(amount), nil
}
