// Package types defines the trading actions accepted by the BULK venue and
// their canonical, signable byte encoding. An action plus a nonce maps to
// exactly one digest; the digest is what gets signed.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/bulknetwork/bulk-keychain-go/codec"
	"github.com/bulknetwork/bulk-keychain-go/crypto"
)

// ActionType identifies an action variant. Serves as the JSON discriminator
// and maps 1:1 to the canonical domain-separation tag.
type ActionType string

const (
	TypeOrder        ActionType = "order"
	TypeCancel       ActionType = "cancel"
	TypeCancelAll    ActionType = "cancel_all"
	TypeGroup        ActionType = "group"
	TypeFaucet       ActionType = "faucet"
	TypeUserSettings ActionType = "user_settings"
	TypeAgentWallet  ActionType = "agent_wallet"
)

// Action is a trading intent to be signed: order placement, cancellation,
// settings change, and so on.
//
// The union is sealed: every variant lives in this package so that the set
// of canonical encodings is closed and domain tags cannot collide.
type Action interface {
	// Type returns the variant discriminator.
	Type() ActionType

	// ValidateBasic performs stateless structural validation. It does not
	// judge business semantics (whether a price is marketable), only what
	// is required for safe canonical encoding.
	ValidateBasic() error

	// encode appends the variant's canonical payload, including its
	// domain tag, to the writer.
	encode(w *codec.Writer) error
}

// TimeInForce is the order lifetime policy.
type TimeInForce string

const (
	// TifGTC keeps the order resting until cancelled.
	TifGTC TimeInForce = "GTC"
	// TifIOC fills immediately and cancels the remainder.
	TifIOC TimeInForce = "IOC"
	// TifALO rejects the order unless it would rest (add liquidity only).
	TifALO TimeInForce = "ALO"
)

// wireCode returns the canonical one-byte discriminant.
func (t TimeInForce) wireCode() (uint8, error) {
	switch t {
	case TifGTC:
		return 0x00, nil
	case TifIOC:
		return 0x01, nil
	case TifALO:
		return 0x02, nil
	default:
		return 0, fmt.Errorf("%w: unknown time-in-force %q", ErrInvalidAction, t)
	}
}

// OrderTypeKind discriminates limit from trigger order types.
type OrderTypeKind string

const (
	OrderTypeLimit   OrderTypeKind = "limit"
	OrderTypeTrigger OrderTypeKind = "trigger"
)

// OrderType describes how an order executes: a resting limit order with a
// time-in-force, or a trigger order (market orders are trigger orders with
// IsMarket set and a zero trigger price).
type OrderType struct {
	Kind      OrderTypeKind `json:"type"`
	TIF       TimeInForce   `json:"tif,omitempty"`
	IsMarket  bool          `json:"is_market,omitempty"`
	TriggerPx float64       `json:"trigger_px,omitempty"`
}

// LimitType builds a limit order type with the given time-in-force.
func LimitType(tif TimeInForce) OrderType {
	return OrderType{Kind: OrderTypeLimit, TIF: tif}
}

// MarketType builds the order type for an immediate market order.
func MarketType() OrderType {
	return OrderType{Kind: OrderTypeTrigger, IsMarket: true}
}

// TriggerType builds a trigger order type with an explicit trigger price.
func TriggerType(isMarket bool, triggerPx float64) OrderType {
	return OrderType{Kind: OrderTypeTrigger, IsMarket: isMarket, TriggerPx: triggerPx}
}

// ValidateBasic checks the order type is structurally sound.
func (ot OrderType) ValidateBasic() error {
	switch ot.Kind {
	case OrderTypeLimit:
		if _, err := ot.TIF.wireCode(); err != nil {
			return err
		}
	case OrderTypeTrigger:
		if _, err := codec.ToFixed(ot.TriggerPx); err != nil {
			return fmt.Errorf("trigger price: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidAction, ot.Kind)
	}
	return nil
}

// Order places a single order on one symbol.
type Order struct {
	Symbol     string       `json:"symbol"`
	IsBuy      bool         `json:"is_buy"`
	Price      float64      `json:"price"`
	Size       float64      `json:"size"`
	ReduceOnly bool         `json:"reduce_only,omitempty"`
	OrderType  OrderType    `json:"order_type"`
	ClientID   *crypto.Hash `json:"client_id,omitempty"`
}

// NewLimitOrder builds a validated resting order.
func NewLimitOrder(symbol string, isBuy bool, price, size float64, tif TimeInForce) (*Order, error) {
	o := &Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Price:     price,
		Size:      size,
		OrderType: LimitType(tif),
	}
	if err := o.ValidateBasic(); err != nil {
		return nil, err
	}
	return o, nil
}

// NewMarketOrder builds a validated immediate market order.
// Market orders carry a zero limit price.
func NewMarketOrder(symbol string, isBuy bool, size float64) (*Order, error) {
	o := &Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Size:      size,
		OrderType: MarketType(),
	}
	if err := o.ValidateBasic(); err != nil {
		return nil, err
	}
	return o, nil
}

// Type returns TypeOrder.
func (o *Order) Type() ActionType { return TypeOrder }

// ValidateBasic performs stateless validation.
func (o *Order) ValidateBasic() error {
	if o == nil {
		return fmt.Errorf("%w: order is nil", ErrInvalidAction)
	}
	if o.Symbol == "" {
		return fmt.Errorf("%w: order symbol cannot be empty", ErrInvalidAction)
	}
	if _, err := codec.ToFixed(o.Price); err != nil {
		return fmt.Errorf("order price: %w", err)
	}
	if _, err := codec.ToFixed(o.Size); err != nil {
		return fmt.Errorf("order size: %w", err)
	}
	return o.OrderType.ValidateBasic()
}

// Cancel cancels one resting order by its venue-assigned ID.
type Cancel struct {
	Symbol  string      `json:"symbol"`
	OrderID crypto.Hash `json:"order_id"`
}

// NewCancel builds a validated cancel.
func NewCancel(symbol string, orderID crypto.Hash) (*Cancel, error) {
	c := &Cancel{Symbol: symbol, OrderID: orderID}
	if err := c.ValidateBasic(); err != nil {
		return nil, err
	}
	return c, nil
}

// Type returns TypeCancel.
func (c *Cancel) Type() ActionType { return TypeCancel }

// ValidateBasic performs stateless validation.
func (c *Cancel) ValidateBasic() error {
	if c == nil {
		return fmt.Errorf("%w: cancel is nil", ErrInvalidAction)
	}
	if c.Symbol == "" {
		return fmt.Errorf("%w: cancel symbol cannot be empty", ErrInvalidAction)
	}
	if c.OrderID.IsZero() {
		return fmt.Errorf("%w: cancel order ID cannot be zero", ErrInvalidAction)
	}
	return nil
}

// CancelAll cancels every resting order on the listed symbols.
// An empty symbol list cancels across all symbols.
//
// Symbol order is preserved exactly through encoding and JSON.
type CancelAll struct {
	Symbols []string `json:"symbols"`
}

// NewCancelAll builds a validated cancel-all.
func NewCancelAll(symbols ...string) (*CancelAll, error) {
	c := &CancelAll{Symbols: symbols}
	if err := c.ValidateBasic(); err != nil {
		return nil, err
	}
	return c, nil
}

// Type returns TypeCancelAll.
func (c *CancelAll) Type() ActionType { return TypeCancelAll }

// ValidateBasic performs stateless validation.
func (c *CancelAll) ValidateBasic() error {
	if c == nil {
		return fmt.Errorf("%w: cancel-all is nil", ErrInvalidAction)
	}
	for i, sym := range c.Symbols {
		if sym == "" {
			return fmt.Errorf("%w: cancel-all symbol %d is empty", ErrInvalidAction, i)
		}
	}
	return nil
}

// Group is an ordered sequence of orders signed under one nonce and one
// signature: the venue accepts all members together or none. Used for
// bracket orders (entry + stop loss + take profit).
//
// INVARIANT: member order is semantically meaningful and is preserved
// exactly - the encoder never reorders or deduplicates entries.
type Group struct {
	Orders []*Order `json:"orders"`
}

// NewGroup builds a validated group from the given orders, in order.
func NewGroup(orders []*Order) (*Group, error) {
	g := &Group{Orders: orders}
	if err := g.ValidateBasic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Type returns TypeGroup.
func (g *Group) Type() ActionType { return TypeGroup }

// ValidateBasic performs stateless validation.
func (g *Group) ValidateBasic() error {
	if g == nil {
		return fmt.Errorf("%w: group is nil", ErrInvalidAction)
	}
	if len(g.Orders) == 0 {
		return fmt.Errorf("%w: group cannot be empty", ErrInvalidAction)
	}
	for i, o := range g.Orders {
		if err := o.ValidateBasic(); err != nil {
			return fmt.Errorf("group member %d: %w", i, err)
		}
	}
	return nil
}

// Faucet requests testnet funds for the signing account. No fields.
type Faucet struct{}

// Type returns TypeFaucet.
func (f *Faucet) Type() ActionType { return TypeFaucet }

// ValidateBasic performs stateless validation.
func (f *Faucet) ValidateBasic() error {
	if f == nil {
		return fmt.Errorf("%w: faucet is nil", ErrInvalidAction)
	}
	return nil
}

// LeverageSetting sets the maximum leverage for one symbol.
type LeverageSetting struct {
	Symbol   string  `json:"symbol"`
	Leverage float64 `json:"leverage"`
}

// UserSettings updates per-symbol account settings.
// Pair order is preserved exactly.
type UserSettings struct {
	MaxLeverage []LeverageSetting `json:"max_leverage"`
}

// NewUserSettings builds a validated settings update.
func NewUserSettings(settings []LeverageSetting) (*UserSettings, error) {
	u := &UserSettings{MaxLeverage: settings}
	if err := u.ValidateBasic(); err != nil {
		return nil, err
	}
	return u, nil
}

// Type returns TypeUserSettings.
func (u *UserSettings) Type() ActionType { return TypeUserSettings }

// ValidateBasic performs stateless validation.
func (u *UserSettings) ValidateBasic() error {
	if u == nil {
		return fmt.Errorf("%w: user settings is nil", ErrInvalidAction)
	}
	if len(u.MaxLeverage) == 0 {
		return fmt.Errorf("%w: user settings cannot be empty", ErrInvalidAction)
	}
	for i, s := range u.MaxLeverage {
		if s.Symbol == "" {
			return fmt.Errorf("%w: leverage setting %d has empty symbol", ErrInvalidAction, i)
		}
		if _, err := codec.ToFixed(s.Leverage); err != nil {
			return fmt.Errorf("leverage setting %d: %w", i, err)
		}
	}
	return nil
}

// AgentWallet authorizes (or revokes) an agent key that may sign on behalf
// of the account.
type AgentWallet struct {
	Agent  crypto.Pubkey `json:"agent"`
	Delete bool          `json:"delete,omitempty"`
}

// NewAgentWallet builds a validated agent wallet authorization.
func NewAgentWallet(agent crypto.Pubkey, del bool) (*AgentWallet, error) {
	a := &AgentWallet{Agent: agent, Delete: del}
	if err := a.ValidateBasic(); err != nil {
		return nil, err
	}
	return a, nil
}

// Type returns TypeAgentWallet.
func (a *AgentWallet) Type() ActionType { return TypeAgentWallet }

// ValidateBasic performs stateless validation.
func (a *AgentWallet) ValidateBasic() error {
	if a == nil {
		return fmt.Errorf("%w: agent wallet is nil", ErrInvalidAction)
	}
	if a.Agent == (crypto.Pubkey{}) {
		return fmt.Errorf("%w: agent public key cannot be zero", ErrInvalidAction)
	}
	return nil
}

// MarshalAction serializes an action to JSON with a "type" discriminator,
// the form the venue's HTTP API accepts.
func MarshalAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: action is nil", ErrInvalidAction)
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	// Splice the discriminator in front of the variant's own fields.
	head, err := json.Marshal(struct {
		Type ActionType `json:"type"`
	}{a.Type()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if string(body) == "{}" {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// UnmarshalAction deserializes an action from its discriminated JSON form.
// Exact inverse of MarshalAction for every variant.
func UnmarshalAction(data []byte) (Action, error) {
	var probe struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	var a Action
	switch probe.Type {
	case TypeOrder:
		a = &Order{}
	case TypeCancel:
		a = &Cancel{}
	case TypeCancelAll:
		a = &CancelAll{}
	case TypeGroup:
		a = &Group{}
	case TypeFaucet:
		a = &Faucet{}
	case TypeUserSettings:
		a = &UserSettings{}
	case TypeAgentWallet:
		a = &AgentWallet{}
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, probe.Type)
	}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if err := a.ValidateBasic(); err != nil {
		return nil, err
	}
	return a, nil
}
