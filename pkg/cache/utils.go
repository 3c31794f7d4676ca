package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Key joins a namespace and parts: "metrics:2020-01-01".
func Key(namespace string, parts ...interface{}) string {
	key := namespace
	for _, p := range parts {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// RequestKey hashes the JSON form of a request under namespace.
// Map keys are sorted by encoding/json so equal requests give equal keys.
func RequestKey(namespace string, req interface{}) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return Key(namespace, HashKey(string(b))), nil
}

// Pattern matches every key in a namespace.
func Pattern(namespace string) string {
	return namespace + ":*"
}
