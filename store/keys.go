package store

import (
	"fmt"

	"github.com/google/orderedcode"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//---------------------------------- KEY ENCODING -----------------------------------------

// key prefixes
const (
	prefixAsk = int64(1)
	prefixBid = int64(2)
)

// Singleton records keep the raw keys every contract version has used, so a
// store written by any version can be read.
var (
	keyContractInfo = []byte("contract_info")
	keyVersionInfo  = []byte("version_info")
)

// Legacy order namespaces. Records under them are length-prefixed by
// namespace and are rewritten by migration.
const (
	LegacyNamespaceAsk = "ask"
	LegacyNamespaceBid = "bid"
)

func askKey(id string) []byte {
	key, err := orderedcode.Append(nil, prefixAsk, id)
	if err != nil {
		panic(err)
	}
	return key
}

func bidKey(id string) []byte {
	key, err := orderedcode.Append(nil, prefixBid, id)
	if err != nil {
		panic(err)
	}
	return key
}

// prefixRange returns the key range holding every key under prefix.
func prefixRange(prefix int64) (start, end []byte) {
	start, err := orderedcode.Append(nil, prefix)
	if err != nil {
		panic(err)
	}
	end, err = orderedcode.Append(nil, prefix+1)
	if err != nil {
		panic(err)
	}
	return start, end
}

func decodeOrderKey(key []byte, want int64) (string, error) {
	var (
		prefix int64
		id     string
	)
	remaining, err := orderedcode.Parse(string(key), &prefix, &id)
	if err != nil {
		return "", err
	}
	if len(remaining) != 0 {
		return "", fmt.Errorf("expected complete key but got remainder: %s", remaining)
	}
	if prefix != want {
		return "", fmt.Errorf("incorrect prefix. Expected %v, got %v", want, prefix)
	}
	return id, nil
}

func legacyNamespace(ns string) []byte {
	return append([]byte{0, byte(len(ns))}, ns...)
}

func legacyKey(ns, id string) []byte {
	return append(legacyNamespace(ns), id...)
}

// legacyRange returns the key range of a legacy namespace.
func legacyRange(ns string) (start, end []byte) {
	start = legacyNamespace(ns)
	end = make([]byte, len(start))
	copy(end, start)
	end[len(end)-1]++
	return start, end
}
