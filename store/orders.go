package store

import (
	"fmt"

	"github.com/tendermint/ats/types"
)

// GetAsk loads the ask with the given id.
func (s *Store) GetAsk(id string) (*types.AskOrder, error) {
	ask := new(types.AskOrder)
	if err := s.load(askKey(id), ask); err != nil {
		return nil, fmt.Errorf("ask %q: %w", id, err)
	}
	return ask, nil
}

// HasAsk reports whether an ask with the given id exists.
func (s *Store) HasAsk(id string) (bool, error) {
	return s.has(askKey(id))
}

// SetAsk writes ask under its id.
func (s *Store) SetAsk(ask *types.AskOrder) error {
	return s.save(askKey(ask.ID), ask)
}

// DeleteAsk removes the ask with the given id.
func (s *Store) DeleteAsk(id string) {
	s.delete(askKey(id))
}

// HasAsks reports whether any ask exists.
func (s *Store) HasAsks() (bool, error) {
	start, end := prefixRange(prefixAsk)
	return s.any(start, end)
}

// Asks returns every ask ordered by id.
func (s *Store) Asks() ([]*types.AskOrder, error) {
	var asks []*types.AskOrder
	start, end := prefixRange(prefixAsk)
	err := s.iterate(start, end, func(key, value []byte) error {
		id, err := decodeOrderKey(key, prefixAsk)
		if err != nil {
			return err
		}
		ask := new(types.AskOrder)
		if err := json.Unmarshal(value, ask); err != nil {
			return fmt.Errorf("ask %q: %w", id, err)
		}
		asks = append(asks, ask)
		return nil
	})
	return asks, err
}

// GetBid loads the bid with the given id.
func (s *Store) GetBid(id string) (*types.BidOrder, error) {
	bid := new(types.BidOrder)
	if err := s.load(bidKey(id), bid); err != nil {
		return nil, fmt.Errorf("bid %q: %w", id, err)
	}
	return bid, nil
}

// HasBid reports whether a bid with the given id exists.
func (s *Store) HasBid(id string) (bool, error) {
	return s.has(bidKey(id))
}

// SetBid writes bid under its id.
func (s *Store) SetBid(bid *types.BidOrder) error {
	return s.save(bidKey(bid.ID), bid)
}

// DeleteBid removes the bid with the given id.
func (s *Store) DeleteBid(id string) {
	s.delete(bidKey(id))
}

// HasBids reports whether any bid exists.
func (s *Store) HasBids() (bool, error) {
	start, end := prefixRange(prefixBid)
	return s.any(start, end)
}

// Bids returns every bid ordered by id.
func (s *Store) Bids() ([]*types.BidOrder, error) {
	var bids []*types.BidOrder
	start, end := prefixRange(prefixBid)
	err := s.iterate(start, end, func(key, value []byte) error {
		id, err := decodeOrderKey(key, prefixBid)
		if err != nil {
			return err
		}
		bid := new(types.BidOrder)
		if err := json.Unmarshal(value, bid); err != nil {
			return fmt.Errorf("bid %q: %w", id, err)
		}
		bids = append(bids, bid)
		return nil
	})
	return bids, err
}
