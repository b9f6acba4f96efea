package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values and scales them to a duration unit.
type TimeConfig interface {
	// GetMillisecond reads key as a count of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads key as a count of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads key as a count of minutes.
	GetMinute(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	TimeConfig

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint16(key string) uint16

	// GetArray reads key as a list of strings. Both a YAML sequence and a
	// comma separated string are accepted; blank entries are dropped.
	GetArray(key string) []string

	// GetMap reads key as a string map. Both a YAML mapping and the
	// "k1:v1,k2:v2" form are accepted.
	GetMap(key string) map[string]string
}
