package types

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/bulknetwork/bulk-keychain-go/codec"
	"github.com/bulknetwork/bulk-keychain-go/crypto"
)

// Domain-separation tags. Every canonical payload begins with its variant's
// tag, so two variants with coincidentally identical remaining bytes can
// never hash to the same digest.
//
// These constants are part of the wire compatibility contract with the
// venue's verifier and MUST NOT change.
const (
	tagOrder        uint8 = 0x01
	tagCancel       uint8 = 0x02
	tagCancelAll    uint8 = 0x03
	tagGroup        uint8 = 0x04
	tagFaucet       uint8 = 0x05
	tagUserSettings uint8 = 0x06
	tagAgentWallet  uint8 = 0x07
)

// Order-type discriminants within an order payload.
const (
	wireOrderTypeLimit   uint8 = 0x00
	wireOrderTypeTrigger uint8 = 0x01
)

// EncodeAction returns the canonical byte payload of an action.
//
// INVARIANT: encoding is deterministic - field order is fixed per variant
// and never depends on input construction order. Encoding the same action
// twice yields identical bytes.
//
// The action is validated first; ErrInvalidAction or a codec.ErrRange
// chain is returned for inputs that cannot be safely encoded. All encoding
// failures also match ErrEncoding.
func EncodeAction(a Action) ([]byte, error) {
	w := codec.NewWriter(128)
	if err := EncodeActionTo(w, a); err != nil {
		return nil, err
	}
	return append([]byte(nil), w.Bytes()...), nil
}

// EncodeActionTo encodes an action into a caller-supplied writer, allowing
// batch paths to reuse one buffer across many payloads. The writer is NOT
// reset; the payload is appended from the current position.
func EncodeActionTo(w *codec.Writer, a Action) error {
	if a == nil {
		return fmt.Errorf("%w: action is nil", ErrInvalidAction)
	}
	if err := a.ValidateBasic(); err != nil {
		return err
	}
	if err := a.encode(w); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return nil
}

// Digest computes the cryptographic digest actually signed:
// SHA-256(payload || nonce) with the nonce appended as 8 little-endian
// bytes. Changing either the payload or the nonce changes the digest.
func Digest(payload []byte, nonce uint64) crypto.Hash {
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], nonce)

	h := sha256.New()
	h.Write(payload)
	h.Write(nonceBytes[:])

	var out crypto.Hash
	h.Sum(out[:0])
	return out
}

// DigestAction encodes an action and digests it with the given nonce.
// The digest doubles as the transaction ID (base58-encoded), matching the
// venue's server-side ID generation.
func DigestAction(a Action, nonce uint64) (crypto.Hash, error) {
	payload, err := EncodeAction(a)
	if err != nil {
		return crypto.Hash{}, err
	}
	return Digest(payload, nonce), nil
}

func (o *Order) encode(w *codec.Writer) error {
	price, err := codec.ToFixed(o.Price)
	if err != nil {
		return fmt.Errorf("order price: %w", err)
	}
	size, err := codec.ToFixed(o.Size)
	if err != nil {
		return fmt.Errorf("order size: %w", err)
	}

	w.WriteU8(tagOrder)
	w.WriteString(o.Symbol)
	w.WriteBool(o.IsBuy)
	w.WriteU64(price)
	w.WriteU64(size)
	w.WriteBool(o.ReduceOnly)

	switch o.OrderType.Kind {
	case OrderTypeLimit:
		tif, err := o.OrderType.TIF.wireCode()
		if err != nil {
			return err
		}
		w.WriteU8(wireOrderTypeLimit)
		w.WriteU8(tif)
	case OrderTypeTrigger:
		triggerPx, err := codec.ToFixed(o.OrderType.TriggerPx)
		if err != nil {
			return fmt.Errorf("trigger price: %w", err)
		}
		w.WriteU8(wireOrderTypeTrigger)
		w.WriteBool(o.OrderType.IsMarket)
		w.WriteU64(triggerPx)
	default:
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidAction, o.OrderType.Kind)
	}

	if o.ClientID != nil {
		w.WriteBool(true)
		w.WriteRaw(o.ClientID[:])
	} else {
		w.WriteBool(false)
	}
	return nil
}

func (c *Cancel) encode(w *codec.Writer) error {
	w.WriteU8(tagCancel)
	w.WriteString(c.Symbol)
	w.WriteRaw(c.OrderID[:])
	return nil
}

func (c *CancelAll) encode(w *codec.Writer) error {
	w.WriteU8(tagCancelAll)
	w.WriteU32(uint32(len(c.Symbols)))
	for _, sym := range c.Symbols {
		w.WriteString(sym)
	}
	return nil
}

// encode writes the group tag, the member count, then each member's full
// canonical payload in the caller-supplied order. Order is preserved
// exactly: bracket legs are position-sensitive.
func (g *Group) encode(w *codec.Writer) error {
	w.WriteU8(tagGroup)
	w.WriteU32(uint32(len(g.Orders)))
	for i, o := range g.Orders {
		if err := o.encode(w); err != nil {
			return fmt.Errorf("group member %d: %w", i, err)
		}
	}
	return nil
}

func (f *Faucet) encode(w *codec.Writer) error {
	w.WriteU8(tagFaucet)
	return nil
}

func (u *UserSettings) encode(w *codec.Writer) error {
	w.WriteU8(tagUserSettings)
	w.WriteU32(uint32(len(u.MaxLeverage)))
	for i, s := range u.MaxLeverage {
		leverage, err := codec.ToFixed(s.Leverage)
		if err != nil {
			return fmt.Errorf("leverage setting %d: %w", i, err)
		}
		w.WriteString(s.Symbol)
		w.WriteU64(leverage)
	}
	return nil
}

func (a *AgentWallet) encode(w *codec.Writer) error {
	w.WriteU8(tagAgentWallet)
	w.WriteRaw(a.Agent[:])
	w.WriteBool(a.Delete)
	return nil
}
