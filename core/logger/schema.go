package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
	"fatal":   "FATAL",
}

// Closed vocabularies; unknown outcome values are dropped, unknown statuses
// are kept verbatim.
var (
	knownStatus  = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled")
	knownOutcome = set("ok", "fail", "cancelled", "rate_limited")
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

func normalizeEnum(value string, allowed map[string]struct{}) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	_, ok := allowed[value]
	return value, ok && value != ""
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"buyer_id",
	"tx_id",
	"product",
	"site",
	"tx_status",
	"stage",
	"url",
	"count",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"driver",
	"db",
	"host",
	"port",
	"path",
	"err",
	"err_code",
	"cause",
	"attempts",
}
