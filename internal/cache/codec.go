package cache

import "encoding/json"

// Encode serializes an entity for caching. Every cache-aside call site shares
// this codec so entries written by one reader decode at another.
func Encode[T any](v T) ([]byte, error) {
	return json.Marshal(v)
}

// Decode is the inverse of Encode.
func Decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
