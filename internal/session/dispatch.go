package session

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Action names an input event the till understands. The UI layer maps
// whatever raised it (function key, button, touch) to one of these and
// hands it to Dispatch; the session knows nothing about rendering.
type Action string

const (
	ActionProcessSale   Action = "process-sale"
	ActionClearCart     Action = "clear-cart"
	ActionHoldSale      Action = "hold-sale"
	ActionIncrementLast Action = "increment-last"
	ActionDecrementLast Action = "decrement-last"
)

// Keymap is the default function-key layout of the till.
var Keymap = map[string]Action{
	"F4": ActionProcessSale,
	"F5": ActionClearCart,
	"F9": ActionHoldSale,
	"+":  ActionIncrementLast,
	"-":  ActionDecrementLast,
}

// ActionForKey resolves a key name against the default layout.
func ActionForKey(key string) (Action, bool) {
	a, ok := Keymap[key]
	return a, ok
}

func defaultDispatchTable(s *Session) map[Action]func(context.Context) error {
	return map[Action]func(context.Context) error{
		ActionProcessSale: func(ctx context.Context) error {
			_, err := s.Checkout(ctx)
			return err
		},
		ActionClearCart: func(ctx context.Context) error {
			s.ClearCart()
			return nil
		},
		ActionHoldSale: func(ctx context.Context) error {
			_, err := s.Hold(ctx)
			return err
		},
		ActionIncrementLast: func(ctx context.Context) error {
			return s.bumpLast(decimal.NewFromInt(1))
		},
		ActionDecrementLast: func(ctx context.Context) error {
			return s.bumpLast(decimal.NewFromInt(-1))
		},
	}
}

// Dispatch runs the operation bound to the action. Unknown actions are an
// error so a miswired keymap shows up immediately.
func (s *Session) Dispatch(ctx context.Context, action Action) error {
	h, ok := s.dispatch[action]
	if !ok {
		return fmt.Errorf("unknown action %q", action)
	}
	return h(ctx)
}

// bumpLast adjusts the most recently added line's quantity. An empty cart is
// a no-op, and a decrement never takes the last line below 1; operators
// remove lines explicitly, not by counting down.
func (s *Session) bumpLast(delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.cart.Len()
	if n == 0 {
		return nil
	}
	last := s.cart.Items()[n-1]
	next := last.Quantity.Add(delta)
	if delta.IsNegative() && next.LessThan(decimal.NewFromInt(1)) {
		return nil
	}
	return s.cart.SetQuantity(n-1, next)
}
