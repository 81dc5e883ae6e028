package types

// Attribute is a single key/value log entry of a transition.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TransferKind selects how the host moves funds.
type TransferKind string

const (
	// TransferBankSend is a standard send from the contract account.
	TransferBankSend TransferKind = "bank_send"
	// TransferMarker is a restricted-marker transfer authorized by the
	// contract acting as administrator.
	TransferMarker TransferKind = "marker_transfer"
)

// Transfer is an outbound fund movement for the host to execute. From and
// Admin are only set for marker transfers.
type Transfer struct {
	Kind   TransferKind `json:"kind"`
	To     string       `json:"to"`
	From   string       `json:"from,omitempty"`
	Admin  string       `json:"admin,omitempty"`
	Amount Coin         `json:"amount"`
}

// NewTransfer picks the transfer kind for a denom. Restricted denoms move
// by marker transfer from `from` with admin as administrator; everything
// else is a bank send out of the contract.
func NewTransfer(restricted bool, amount Coin, to, from, admin string) Transfer {
	if restricted {
		return Transfer{Kind: TransferMarker, To: to, From: from, Admin: admin, Amount: amount}
	}
	return Transfer{Kind: TransferBankSend, To: to, Amount: amount}
}

// Response is the result of a successful transition.
type Response struct {
	Attributes []Attribute `json:"attributes"`
	Transfers  []Transfer  `json:"transfers"`
}

// NewResponse returns an empty Response.
func NewResponse() *Response {
	return &Response{Attributes: []Attribute{}, Transfers: []Transfer{}}
}

// AddAttribute appends an attribute and returns the response for chaining.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddTransfer appends a transfer. Zero amounts are dropped.
func (r *Response) AddTransfer(t Transfer) *Response {
	if t.Amount.Amount.IsZero() {
		return r
	}
	r.Transfers = append(r.Transfers, t)
	return r
}

// Attribute returns the first value recorded under key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Action returns the "action" attribute.
func (r *Response) Action() string {
	v, _ := r.Attribute("action")
	return v
}
