package store

import (
	"errors"
	"fmt"

	"github.com/tendermint/ats/types"
)

// GetContractInfo loads the contract info in its current shape.
func (s *Store) GetContractInfo() (*types.ContractInfo, error) {
	ci := new(types.ContractInfo)
	if err := s.load(keyContractInfo, ci); err != nil {
		return nil, fmt.Errorf("contract info: %w", err)
	}
	return ci, nil
}

// HasContractInfo reports whether any contract info shape is stored.
func (s *Store) HasContractInfo() (bool, error) {
	return s.has(keyContractInfo)
}

// LoadContractInfoAs decodes the stored contract info record into v, which
// may be any of the shapes previous versions wrote.
func (s *Store) LoadContractInfoAs(v interface{}) error {
	if err := s.load(keyContractInfo, v); err != nil {
		return fmt.Errorf("contract info: %w", err)
	}
	return nil
}

// SetContractInfo writes the contract info in its current shape.
func (s *Store) SetContractInfo(ci *types.ContractInfo) error {
	return s.save(keyContractInfo, ci)
}

// GetVersionInfo loads the version info.
func (s *Store) GetVersionInfo() (*types.VersionInfo, error) {
	vi := new(types.VersionInfo)
	if err := s.load(keyVersionInfo, vi); err != nil {
		return nil, fmt.Errorf("version info: %w", err)
	}
	return vi, nil
}

// GetVersionInfoIfAny loads the version info, returning nil when none is
// stored.
func (s *Store) GetVersionInfoIfAny() (*types.VersionInfo, error) {
	vi, err := s.GetVersionInfo()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return vi, err
}

// SetVersionInfo writes the version info.
func (s *Store) SetVersionInfo(vi *types.VersionInfo) error {
	return s.save(keyVersionInfo, vi)
}
