package types

import (
	"bytes"
	"fmt"

	tmmath "github.com/tendermint/ats/libs/math"
)

const (
	StatusPendingIssuerApproval = "PendingIssuerApproval"
	StatusReady                 = "Ready"

	classBasic       = "Basic"
	classConvertible = "Convertible"
)

// ReadyStatus records who converted a convertible ask and the base they
// escrowed.
type ReadyStatus struct {
	Approver      string `json:"approver"`
	ConvertedBase Coin   `json:"converted_base"`
}

// AskOrderStatus is the approval state of a convertible ask. A nil Ready
// means the ask is pending issuer approval.
type AskOrderStatus struct {
	Ready *ReadyStatus
}

func (s AskOrderStatus) String() string {
	if s.Ready != nil {
		return StatusReady
	}
	return StatusPendingIssuerApproval
}

func (s AskOrderStatus) MarshalJSON() ([]byte, error) {
	if s.Ready == nil {
		return json.Marshal(StatusPendingIssuerApproval)
	}
	return json.Marshal(map[string]*ReadyStatus{StatusReady: s.Ready})
}

// UnmarshalJSON accepts the bare "Ready" string written before approvals
// carried a payload; it decodes to a ReadyStatus with no approver.
func (s *AskOrderStatus) UnmarshalJSON(bz []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(bz), []byte(`"`)) {
		var name string
		if err := json.Unmarshal(bz, &name); err != nil {
			return err
		}
		switch name {
		case StatusPendingIssuerApproval:
			s.Ready = nil
		case StatusReady:
			s.Ready = &ReadyStatus{}
		default:
			return fmt.Errorf("unknown ask order status %q", name)
		}
		return nil
	}
	var tagged map[string]*ReadyStatus
	if err := json.Unmarshal(bz, &tagged); err != nil {
		return err
	}
	ready, ok := tagged[StatusReady]
	if !ok || ready == nil {
		return fmt.Errorf("unknown ask order status %s", bz)
	}
	s.Ready = ready
	return nil
}

// AskOrderClass is Basic when Convertible is nil.
type AskOrderClass struct {
	Convertible *AskOrderStatus
}

// BasicClass returns the class of asks offering the contract base denom.
func BasicClass() AskOrderClass { return AskOrderClass{} }

// PendingClass returns the class of a freshly created convertible ask.
func PendingClass() AskOrderClass {
	return AskOrderClass{Convertible: &AskOrderStatus{}}
}

// ReadyClass returns the class of an approved convertible ask.
func ReadyClass(approver string, convertedBase Coin) AskOrderClass {
	return AskOrderClass{Convertible: &AskOrderStatus{Ready: &ReadyStatus{
		Approver:      approver,
		ConvertedBase: convertedBase,
	}}}
}

func (c AskOrderClass) IsBasic() bool { return c.Convertible == nil }

func (c AskOrderClass) IsPending() bool {
	return c.Convertible != nil && c.Convertible.Ready == nil
}

// Ready returns the approval details, or nil when the ask is not an approved
// convertible.
func (c AskOrderClass) Ready() *ReadyStatus {
	if c.Convertible == nil {
		return nil
	}
	return c.Convertible.Ready
}

func (c AskOrderClass) MarshalJSON() ([]byte, error) {
	if c.Convertible == nil {
		return json.Marshal(classBasic)
	}
	return json.Marshal(map[string]map[string]*AskOrderStatus{
		classConvertible: {"status": c.Convertible},
	})
}

func (c *AskOrderClass) UnmarshalJSON(bz []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(bz), []byte(`"`)) {
		var name string
		if err := json.Unmarshal(bz, &name); err != nil {
			return err
		}
		if name != classBasic {
			return fmt.Errorf("unknown ask order class %q", name)
		}
		c.Convertible = nil
		return nil
	}
	var tagged map[string]struct {
		Status *AskOrderStatus `json:"status"`
	}
	if err := json.Unmarshal(bz, &tagged); err != nil {
		return err
	}
	conv, ok := tagged[classConvertible]
	if !ok || conv.Status == nil {
		return fmt.Errorf("unknown ask order class %s", bz)
	}
	c.Convertible = conv.Status
	return nil
}

// AskOrder is the escrow record of an outstanding ask. Size is the remaining
// base on offer.
type AskOrder struct {
	ID    string         `json:"id"`
	Owner string         `json:"owner"`
	Class AskOrderClass  `json:"class"`
	Base  string         `json:"base"`
	Quote string         `json:"quote"`
	Price string         `json:"price"`
	Size  tmmath.Uint128 `json:"size"`
}

// AskOrderLegacy is the ask shape stored before 0.15.0: prices were
// integers and the base carried its amount.
type AskOrderLegacy struct {
	ID    string         `json:"id"`
	Owner string         `json:"owner"`
	Class AskOrderClass  `json:"class"`
	Base  Coin           `json:"base"`
	Quote string         `json:"quote"`
	Price tmmath.Uint128 `json:"price"`
	Size  tmmath.Uint128 `json:"size"`
}

// Upgrade converts the record. A legacy ready convertible carried no
// approver, so approver is recorded along with a converted base of size
// baseDenom.
func (l AskOrderLegacy) Upgrade(baseDenom, approver string) AskOrder {
	class := l.Class
	if ready := class.Ready(); ready != nil {
		class = ReadyClass(approver, Coin{Denom: baseDenom, Amount: l.Size})
	}
	return AskOrder{
		ID:    l.ID,
		Owner: l.Owner,
		Class: class,
		Base:  l.Base.Denom,
		Quote: l.Quote,
		Price: l.Price.String(),
		Size:  l.Size,
	}
}
