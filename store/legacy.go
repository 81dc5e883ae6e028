package store

// LegacyRecord is a raw order record found under a legacy namespace.
type LegacyRecord struct {
	ID    string
	Value []byte
}

// LegacyRecords returns every record stored under namespace ns by versions
// that kept orders in length-prefixed buckets.
func (s *Store) LegacyRecords(ns string) ([]LegacyRecord, error) {
	var records []LegacyRecord
	prefix := legacyNamespace(ns)
	start, end := legacyRange(ns)
	err := s.iterate(start, end, func(key, value []byte) error {
		records = append(records, LegacyRecord{ID: string(key[len(prefix):]), Value: value})
		return nil
	})
	return records, err
}

// SetLegacyRecord writes a raw record under namespace ns.
func (s *Store) SetLegacyRecord(ns, id string, value []byte) {
	s.set(legacyKey(ns, id), value)
}

// DeleteLegacyRecord removes a record from namespace ns.
func (s *Store) DeleteLegacyRecord(ns, id string) {
	s.delete(legacyKey(ns, id))
}

// SetRawContractInfo writes bz as the contract info record verbatim.
func (s *Store) SetRawContractInfo(bz []byte) {
	s.set(keyContractInfo, bz)
}

// RawContractInfo returns the stored contract info bytes, nil when absent.
func (s *Store) RawContractInfo() ([]byte, error) {
	return s.get(keyContractInfo)
}
