package util

import (
	"github.com/sirupsen/logrus"
)

var Debug uint64 = 0

// SetDebug sets the verbosity of DPrintf. Messages at or below level are
// logged; level 0 messages are always logged.
func SetDebug(level uint64) {
	Debug = level
	if level > 0 {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level > Debug {
		return
	}
	if level == 0 {
		logrus.Infof(format, a...)
	} else {
		logrus.Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}
