package types

import (
	jsoniter "github.com/json-iterator/go"
)

// json mirrors encoding/json so records written here decode anywhere.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON encodes v with the codec used for stored records and
// responses.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalJSON decodes bz into v with the codec used for stored records and
// messages.
func UnmarshalJSON(bz []byte, v interface{}) error {
	return json.Unmarshal(bz, v)
}
